// Package app wires the page renderer, the view server and the editor
// control into one session.
package app

import (
	"context"
	"fmt"
	"strings"

	"go-monaco-bridge/internal/config"
	"go-monaco-bridge/internal/editor"
	"go-monaco-bridge/internal/monaco"
	"go-monaco-bridge/internal/render"
	httpserver "go-monaco-bridge/internal/transport/http"
)

// Session is a coordinator between the editor control and HTTP delivery.
type Session struct {
	renderer *render.Renderer
	server   *httpserver.ViewServer
	editor   *editor.CodeEditor
}

// NewSession builds a session from cfg. Nothing listens until Start.
func NewSession(cfg *config.Config, onNewWindow func(uri string)) (*Session, error) {
	renderer := render.NewRenderer(cfg.Editor.HighlightStyle)
	shell, err := renderer.RenderShell(render.ShellOptions{
		Title:      "go-monaco-bridge",
		MonacoBase: cfg.Server.MonacoBase,
		SocketPath: "/ws",
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	server := httpserver.NewViewServer(cfg.Server.Addr, shell)
	ed := editor.New(server, editor.Options{
		Language:     cfg.Editor.Language,
		ReadOnly:     cfg.Editor.ReadOnly,
		GlyphMargin:  cfg.Editor.GlyphMargin,
		Theme:        editor.Theme(cfg.Editor.Theme),
		HighContrast: cfg.Editor.HighContrast,
		EditorOptions: monaco.EditorOptions{
			FontSize:        cfg.Editor.FontSize,
			AutomaticLayout: monaco.Bool(true),
		},
		OnNewWindow: onNewWindow,
	})

	s := &Session{renderer: renderer, server: server, editor: ed}
	// The page forgets providers on every load.
	ed.OnLoaded(func() {
		ed.RegisterHoverProvider(context.Background(), "*", s.diagnosticHover)
	})
	return s, nil
}

// URL returns the browser URL for the editor page.
func (s *Session) URL() string {
	return s.server.URL()
}

// Editor returns the editor control.
func (s *Session) Editor() *editor.CodeEditor {
	return s.editor
}

// Start serves the page and points any connected browser at it.
func (s *Session) Start() error {
	return s.editor.Navigate()
}

// Close tears the editor down and stops the server.
func (s *Session) Close() error {
	s.editor.Close()
	return s.server.Stop()
}

// PublishSource replaces the editor text and language.
func (s *Session) PublishSource(text, language string) {
	if language != "" {
		s.editor.SetCodeLanguage(language)
	}
	s.editor.SetText(text)
}

// PublishCursor centers line in the editor.
func (s *Session) PublishCursor(ctx context.Context, line int) {
	s.editor.RevealLineInCenterIfOutsideViewport(ctx, line)
}

// PublishDiagnostics replaces the editor's markers.
func (s *Session) PublishDiagnostics(markers []monaco.MarkerData) {
	s.editor.Markers().Reset(markers)
}

// diagnosticHover shows the markers under pos, rendered as markdown.
func (s *Session) diagnosticHover(_ context.Context, pos monaco.Position) (*monaco.Hover, error) {
	markers, _ := s.editor.Markers().Snapshot()

	var b strings.Builder
	var hit *monaco.Range
	for _, m := range markers {
		if !covers(m, pos) {
			continue
		}
		if hit == nil {
			r := monaco.NewRange(m.StartLineNumber, m.StartColumn, m.EndLineNumber, m.EndColumn)
			hit = &r
		}
		if b.Len() > 0 {
			b.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&b, "**%s**", severityLabel(m.Severity))
		if m.Source != "" {
			fmt.Fprintf(&b, " `%s`", m.Source)
		}
		b.WriteString("\n\n")
		b.WriteString(m.Message)
	}
	if hit == nil {
		return nil, nil
	}

	content, err := s.renderer.HoverMarkdown(b.String())
	if err != nil {
		return nil, err
	}
	return &monaco.Hover{Contents: []monaco.MarkdownString{content}, Range: hit}, nil
}

func covers(m monaco.MarkerData, pos monaco.Position) bool {
	if pos.LineNumber < m.StartLineNumber || pos.LineNumber > m.EndLineNumber {
		return false
	}
	if pos.LineNumber == m.StartLineNumber && pos.Column < m.StartColumn {
		return false
	}
	if pos.LineNumber == m.EndLineNumber && pos.Column > m.EndColumn {
		return false
	}
	return true
}

func severityLabel(s monaco.MarkerSeverity) string {
	switch s {
	case monaco.SeverityError:
		return "Error"
	case monaco.SeverityWarning:
		return "Warning"
	case monaco.SeverityInfo:
		return "Info"
	default:
		return "Hint"
	}
}
