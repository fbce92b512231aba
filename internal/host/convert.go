package host

import (
	"fmt"

	"go-monaco-bridge/internal/monaco"
)

// diagnostic is one entry of vim.diagnostic.get. Lines and columns are
// 0-based.
type diagnostic struct {
	Lnum     int    `msgpack:"lnum"`
	Col      int    `msgpack:"col"`
	EndLnum  int    `msgpack:"end_lnum"`
	EndCol   int    `msgpack:"end_col"`
	Severity int    `msgpack:"severity"`
	Message  string `msgpack:"message"`
	Source   string `msgpack:"source"`
	Code     any    `msgpack:"code"`
}

// vim.diagnostic.severity: ERROR=1 WARN=2 INFO=3 HINT=4.
var severities = map[int]monaco.MarkerSeverity{
	1: monaco.SeverityError,
	2: monaco.SeverityWarning,
	3: monaco.SeverityInfo,
	4: monaco.SeverityHint,
}

func toMarkers(diags []diagnostic) []monaco.MarkerData {
	markers := make([]monaco.MarkerData, 0, len(diags))
	for _, d := range diags {
		sev, ok := severities[d.Severity]
		if !ok {
			sev = monaco.SeverityInfo
		}
		endLine, endCol := d.EndLnum, d.EndCol
		if endLine < d.Lnum || (endLine == d.Lnum && endCol <= d.Col) {
			endLine, endCol = d.Lnum, d.Col+1
		}
		m := monaco.MarkerData{
			Severity:        sev,
			Message:         d.Message,
			Source:          d.Source,
			StartLineNumber: d.Lnum + 1,
			StartColumn:     d.Col + 1,
			EndLineNumber:   endLine + 1,
			EndColumn:       endCol + 1,
		}
		switch code := d.Code.(type) {
		case nil:
		case string:
			m.Code = code
		default:
			m.Code = fmt.Sprint(code)
		}
		markers = append(markers, m)
	}
	return markers
}

// languages maps filetypes whose Monaco language id differs.
var languages = map[string]string{
	"":                "plaintext",
	"text":            "plaintext",
	"sh":              "shell",
	"bash":            "shell",
	"zsh":             "shell",
	"cs":              "csharp",
	"javascriptreact": "javascript",
	"typescriptreact": "typescript",
	"yml":             "yaml",
	"tex":             "latex",
}

func filetypeLanguage(filetype string) string {
	if lang, ok := languages[filetype]; ok {
		return lang
	}
	return filetype
}

// markLine builds the whole-line highlight added by GoMonacoMarkLine.
func markLine(line int, color string) monaco.DecorationRequest {
	return monaco.DecorationRequest{
		Range: monaco.LineRange(line),
		Options: monaco.DecorationOptions{
			IsWholeLine: true,
			Style:       &monaco.CSSStyle{BackgroundColor: color},
			GlyphStyle:  &monaco.CSSStyle{BackgroundColor: color, Extra: map[string]string{"border-radius": "50%"}},
			Stickiness:  monaco.NeverGrowsWhenTypingAtEdges,
		},
	}
}
