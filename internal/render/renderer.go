package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"

	"go-monaco-bridge/internal/monaco"
)

// DefaultMonacoBase is the CDN root the page loads Monaco from.
const DefaultMonacoBase = "https://cdn.jsdelivr.net/npm/monaco-editor@0.52.2/min"

// defaultHighlightStyle is the chroma style used for hover code blocks.
const defaultHighlightStyle = "github"

// Renderer builds the editor page and renders hover content.
type Renderer struct {
	md             goldmark.Markdown
	highlightStyle string
}

//go:embed page.html
var pageTemplate string

// ShellOptions parameterizes the editor page.
type ShellOptions struct {
	Title      string
	MonacoBase string
	SocketPath string
}

// NewRenderer returns a renderer whose code blocks use the named chroma
// style. An empty name selects the default.
func NewRenderer(highlightStyle string) *Renderer {
	if highlightStyle == "" {
		highlightStyle = defaultHighlightStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			alertcallouts.AlertCallouts,
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{md: md, highlightStyle: highlightStyle}
}

// HoverMarkdown renders markdown hover content to HTML. The result is an
// untrusted MarkdownString with HTML support, so the editor shows the
// highlighted code blocks but runs no command links.
func (r *Renderer) HoverMarkdown(source string) (monaco.MarkdownString, error) {
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return monaco.MarkdownString{}, fmt.Errorf("render hover: %w", err)
	}
	return monaco.MarkdownString{Value: buf.String(), SupportHTML: true}, nil
}

// HighlightCSS returns the stylesheet for the highlight classes emitted by
// HoverMarkdown.
func (r *Renderer) HighlightCSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(r.highlightStyle)); err != nil {
		return "", fmt.Errorf("highlight css: %w", err)
	}
	return buf.String(), nil
}

// RenderShell returns the editor page. The page connects back over
// opts.SocketPath and waits for the host to drive it.
func (r *Renderer) RenderShell(opts ShellOptions) (string, error) {
	if opts.MonacoBase == "" {
		opts.MonacoBase = DefaultMonacoBase
	}
	if opts.SocketPath == "" {
		opts.SocketPath = "/ws"
	}
	if opts.Title == "" {
		opts.Title = "Monaco"
	}

	css, err := r.HighlightCSS()
	if err != nil {
		return "", err
	}

	page := strings.NewReplacer(
		"{{TITLE}}", html.EscapeString(opts.Title),
		"{{MONACO_BASE}}", html.EscapeString(strings.TrimRight(opts.MonacoBase, "/")),
		"{{SOCKET_PATH}}", html.EscapeString(opts.SocketPath),
		"{{HIGHLIGHT_CSS}}", css,
	).Replace(pageTemplate)
	return page, nil
}
