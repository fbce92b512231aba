// Package host adapts the editor session to Neovim: buffer text, cursor and
// diagnostics flow into the editor, and edits made in the page flow back.
package host

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"
	"github.com/tliron/commonlog"

	"go-monaco-bridge/internal/app"
	"go-monaco-bridge/internal/config"
	"go-monaco-bridge/internal/editor"
)

var log = commonlog.GetLogger("monaco.host")

// Commands is a state container for Neovim command handlers.
// It tracks the mirrored buffer and delegates editor functionality
// to the Session.
type Commands struct {
	cfg *config.Config

	mu      sync.Mutex
	session *app.Session
	nv      *nvim.Nvim
	buffer  nvim.Buffer
	active  bool

	lastCursorLine int
}

// NewCommands returns handlers that build sessions from cfg.
func NewCommands(cfg *config.Config) *Commands {
	return &Commands{cfg: cfg}
}

// Register registers Neovim command/function handlers.
func Register(p *plugin.Plugin, cfg *config.Config) error {
	commands := NewCommands(cfg)

	p.Handle("poll", func() (string, error) {
		return "ok", nil
	})

	p.HandleCommand(&plugin.CommandOptions{
		Name: "GoMonacoStart",
	}, commands.GoMonacoStart)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "GoMonacoStop",
	}, commands.GoMonacoStop)

	p.HandleCommand(&plugin.CommandOptions{
		Name:  "GoMonacoMarkLine",
		NArgs: "?",
	}, commands.GoMonacoMarkLine)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "GoMonacoClearMarks",
	}, commands.GoMonacoClearMarks)

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "GoMonacoInternalUpdate",
	}, commands.GoMonacoUpdate)

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "GoMonacoInternalCursor",
	}, commands.GoMonacoCursor)

	p.HandleFunction(&plugin.FunctionOptions{
		Name: "GoMonacoInternalDiagnostics",
	}, commands.GoMonacoDiagnostics)

	return nil
}

func (c *Commands) GoMonacoStart(v *nvim.Nvim) error {
	buf, err := v.CurrentBuffer()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.session == nil {
		session, err := app.NewSession(c.cfg, func(uri string) {
			_ = v.Command(fmt.Sprintf(`echom "[go-monaco] link: %s"`, uri))
		})
		if err != nil {
			c.mu.Unlock()
			return err
		}
		session.Editor().OnPropertyChanged(c.viewEdited)
		c.session = session
	}
	c.nv = v
	c.buffer = buf
	c.active = true
	c.lastCursorLine = 0
	session := c.session
	c.mu.Unlock()

	if err := c.publishBuffer(v); err != nil {
		return err
	}
	if err := c.publishDiagnostics(v); err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	return v.Command(fmt.Sprintf(`echom "[go-monaco] editor: %s"`, session.URL()))
}

func (c *Commands) GoMonacoStop(v *nvim.Nvim) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.active = false
	c.nv = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := session.Close(); err != nil {
		return err
	}
	return v.Command(`echom "[go-monaco] stopped"`)
}

// GoMonacoMarkLine highlights the cursor line in the editor. The optional
// argument is a CSS color.
func (c *Commands) GoMonacoMarkLine(v *nvim.Nvim, args []string) error {
	session, ok := c.current()
	if !ok {
		return nil
	}

	var line int
	if err := v.Eval(`line(".")`, &line); err != nil {
		return err
	}

	color := "rgba(255, 213, 0, 0.25)"
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		color = strings.TrimSpace(args[0])
	}
	session.Editor().Decorations().Append(markLine(line, color))
	return nil
}

func (c *Commands) GoMonacoClearMarks(v *nvim.Nvim) error {
	if session, ok := c.current(); ok {
		session.Editor().Decorations().Clear()
	}
	return nil
}

func (c *Commands) GoMonacoUpdate(v *nvim.Nvim) error {
	if _, ok := c.current(); !ok {
		return nil
	}
	return c.publishBuffer(v)
}

func (c *Commands) GoMonacoCursor(v *nvim.Nvim) error {
	session, ok := c.current()
	if !ok {
		return nil
	}

	var line int
	if err := v.Eval(`line(".")`, &line); err != nil {
		return err
	}

	c.mu.Lock()
	if line == c.lastCursorLine {
		c.mu.Unlock()
		return nil
	}
	c.lastCursorLine = line
	c.mu.Unlock()

	session.PublishCursor(context.Background(), line)
	return nil
}

func (c *Commands) GoMonacoDiagnostics(v *nvim.Nvim) error {
	if _, ok := c.current(); !ok {
		return nil
	}
	return c.publishDiagnostics(v)
}

func (c *Commands) current() (*app.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.session == nil {
		return nil, false
	}
	return c.session, true
}

func (c *Commands) publishBuffer(v *nvim.Nvim) error {
	session, ok := c.current()
	if !ok {
		return nil
	}

	c.mu.Lock()
	buf := c.buffer
	c.mu.Unlock()

	lines, err := v.BufferLines(buf, 0, -1, true)
	if err != nil {
		return err
	}

	var filetype string
	if err := v.BufferOption(buf, "filetype", &filetype); err != nil {
		return err
	}

	session.PublishSource(string(bytes.Join(lines, []byte("\n"))), filetypeLanguage(filetype))
	return nil
}

func (c *Commands) publishDiagnostics(v *nvim.Nvim) error {
	session, ok := c.current()
	if !ok {
		return nil
	}

	c.mu.Lock()
	buf := c.buffer
	c.mu.Unlock()

	var diags []diagnostic
	if err := v.ExecLua(`return vim.diagnostic.get(...)`, &diags, buf); err != nil {
		return err
	}
	session.PublishDiagnostics(toMarkers(diags))
	return nil
}

// viewEdited writes text typed in the page back into the buffer.
func (c *Commands) viewEdited(change editor.PropertyChange) {
	if !change.FromView || change.Name != editor.PropText {
		return
	}

	c.mu.Lock()
	v, buf, active := c.nv, c.buffer, c.active
	c.mu.Unlock()
	if !active || v == nil {
		return
	}

	text, _ := change.Value.(string)
	lines := bytes.Split([]byte(text), []byte("\n"))
	if err := v.SetBufferLines(buf, 0, -1, true, lines); err != nil {
		log.Errorf("write buffer: %s", err)
	}
}
