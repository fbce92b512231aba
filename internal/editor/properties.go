package editor

import (
	"context"

	"go-monaco-bridge/internal/bridge"
	"go-monaco-bridge/internal/monaco"
)

// Property names, shared by the accessor table and PropertyChange.
const (
	PropText           = "Text"
	PropCodeLanguage   = "CodeLanguage"
	PropReadOnly       = "ReadOnly"
	PropHasGlyphMargin = "HasGlyphMargin"
	PropOptions        = "Options"
	PropTheme          = "Theme"
	PropSelectedText   = "SelectedText"
	PropSelectedRange  = "SelectedRange"
)

// Theme selects the editor color theme.
type Theme string

const (
	ThemeDefault Theme = "Default"
	ThemeLight   Theme = "Light"
	ThemeDark    Theme = "Dark"
)

// PropertyChange reports a property that changed on the host, either from
// a host setter or from the view.
type PropertyChange struct {
	Name  string
	Value any
	// FromView is set when the view wrote the value.
	FromView bool
}

// OnPropertyChanged registers fn for every property change. The returned
// function removes it.
func (e *CodeEditor) OnPropertyChanged(fn func(PropertyChange)) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *CodeEditor) registerProperties() {
	e.accessor.RegisterProperty(PropText, bridge.ValueProperty(e.Text, viewSetter(e, e.setText)))
	e.accessor.RegisterProperty(PropCodeLanguage, bridge.ValueProperty(e.CodeLanguage, viewSetter(e, e.setCodeLanguage)))
	e.accessor.RegisterProperty(PropReadOnly, bridge.ValueProperty(e.ReadOnly, viewSetter(e, e.setReadOnly)))
	e.accessor.RegisterProperty(PropHasGlyphMargin, bridge.ValueProperty(e.HasGlyphMargin, viewSetter(e, e.setHasGlyphMargin)))
	e.accessor.RegisterProperty(PropOptions, bridge.ValueProperty(e.EditorOptions, viewSetter(e, e.setEditorOptions)))
	e.accessor.RegisterProperty(PropSelectedText, bridge.ValueProperty(e.SelectedText, viewSetter(e, e.setSelectedText)))
	e.accessor.RegisterProperty(PropSelectedRange, bridge.ValueProperty(e.SelectedRange, viewSetter(e, e.setSelectedRange)))

	e.accessor.AddTypeScope(bridge.TypeScope{
		"Position":      bridge.DecoderFor[monaco.Position](),
		"Range":         bridge.DecoderFor[monaco.Range](),
		"Selection":     bridge.DecoderFor[monaco.Selection](),
		"EditorOptions": bridge.DecoderFor[monaco.EditorOptions](),
	})
}

// viewSetter adapts set for the accessor. Accessor writes run on the
// dispatcher bracketed by SetSettingValue, so the flag only ever marks the
// write in progress. Host setters pass fromView=false directly.
func viewSetter[T any](e *CodeEditor, set func(v T, fromView bool)) func(T) {
	return func(v T) { set(v, e.settingValue.Load()) }
}

// Text returns the editor content.
func (e *CodeEditor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText replaces the editor content.
func (e *CodeEditor) SetText(text string) {
	e.setText(text, false)
}

func (e *CodeEditor) setText(text string, fromView bool) {
	e.mu.Lock()
	if e.text == text {
		e.mu.Unlock()
		return
	}
	e.text = text
	e.mu.Unlock()
	e.changed(PropText, text, fromView)
}

// CodeLanguage returns the model language id.
func (e *CodeEditor) CodeLanguage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// SetCodeLanguage changes the model language.
func (e *CodeEditor) SetCodeLanguage(language string) {
	e.setCodeLanguage(language, false)
}

func (e *CodeEditor) setCodeLanguage(language string, fromView bool) {
	e.mu.Lock()
	if e.language == language {
		e.mu.Unlock()
		return
	}
	e.language = language
	e.options.Language = language
	e.mu.Unlock()
	e.changed(PropCodeLanguage, language, fromView)
}

// ReadOnly reports whether the view rejects edits.
func (e *CodeEditor) ReadOnly() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readOnly
}

// SetReadOnly toggles edits in the view.
func (e *CodeEditor) SetReadOnly(readOnly bool) {
	e.setReadOnly(readOnly, false)
}

func (e *CodeEditor) setReadOnly(readOnly bool, fromView bool) {
	e.mu.Lock()
	if e.readOnly == readOnly {
		e.mu.Unlock()
		return
	}
	e.readOnly = readOnly
	e.options.ReadOnly = monaco.Bool(readOnly)
	e.mu.Unlock()
	e.changed(PropReadOnly, readOnly, fromView)
}

// HasGlyphMargin reports whether the glyph margin is shown.
func (e *CodeEditor) HasGlyphMargin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.glyphMargin
}

// SetHasGlyphMargin toggles the glyph margin.
func (e *CodeEditor) SetHasGlyphMargin(glyphMargin bool) {
	e.setHasGlyphMargin(glyphMargin, false)
}

func (e *CodeEditor) setHasGlyphMargin(glyphMargin bool, fromView bool) {
	e.mu.Lock()
	if e.glyphMargin == glyphMargin {
		e.mu.Unlock()
		return
	}
	e.glyphMargin = glyphMargin
	e.options.GlyphMargin = monaco.Bool(glyphMargin)
	e.mu.Unlock()
	e.changed(PropHasGlyphMargin, glyphMargin, fromView)
}

// EditorOptions returns the construction options, including the language,
// read-only and glyph margin settings.
func (e *CodeEditor) EditorOptions() monaco.EditorOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.options
}

// SetEditorOptions replaces the options. Language, ReadOnly and GlyphMargin
// in o also update the matching properties.
func (e *CodeEditor) SetEditorOptions(o monaco.EditorOptions) {
	e.setEditorOptions(o, false)
}

func (e *CodeEditor) setEditorOptions(o monaco.EditorOptions, fromView bool) {
	e.mu.Lock()
	if o.Language == "" {
		o.Language = e.language
	}
	if o.ReadOnly == nil {
		o.ReadOnly = monaco.Bool(e.readOnly)
	}
	if o.GlyphMargin == nil {
		o.GlyphMargin = monaco.Bool(e.glyphMargin)
	}
	languageChanged := o.Language != e.language
	readOnlyChanged := *o.ReadOnly != e.readOnly
	glyphMarginChanged := *o.GlyphMargin != e.glyphMargin
	e.language = o.Language
	e.readOnly = *o.ReadOnly
	e.glyphMargin = *o.GlyphMargin
	e.options = o
	e.mu.Unlock()

	e.changed(PropOptions, o, fromView)
	// The options push already carries these to the view.
	if languageChanged {
		e.notify(PropertyChange{Name: PropCodeLanguage, Value: o.Language, FromView: fromView})
		if !fromView {
			e.pushProperty(PropCodeLanguage)
		}
	}
	if readOnlyChanged {
		e.notify(PropertyChange{Name: PropReadOnly, Value: *o.ReadOnly, FromView: fromView})
	}
	if glyphMarginChanged {
		e.notify(PropertyChange{Name: PropHasGlyphMargin, Value: *o.GlyphMargin, FromView: fromView})
	}
}

// Theme returns the color theme and whether high contrast is on.
func (e *CodeEditor) Theme() (Theme, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme, e.highContrast
}

// SetTheme changes the color theme.
func (e *CodeEditor) SetTheme(theme Theme, highContrast bool) {
	e.mu.Lock()
	if e.theme == theme && e.highContrast == highContrast {
		e.mu.Unlock()
		return
	}
	e.theme, e.highContrast = theme, highContrast
	e.mu.Unlock()
	e.changed(PropTheme, theme, false)
}

// SelectedText returns the text of the view's selection.
func (e *CodeEditor) SelectedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedText
}

func (e *CodeEditor) setSelectedText(s string, fromView bool) {
	e.mu.Lock()
	if e.selectedText == s {
		e.mu.Unlock()
		return
	}
	e.selectedText = s
	e.mu.Unlock()
	e.changed(PropSelectedText, s, fromView)
}

// SelectedRange returns the view's selection.
func (e *CodeEditor) SelectedRange() monaco.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedRange
}

func (e *CodeEditor) setSelectedRange(s monaco.Selection, fromView bool) {
	e.mu.Lock()
	if e.selectedRange == s {
		e.mu.Unlock()
		return
	}
	e.selectedRange = s
	e.mu.Unlock()
	e.changed(PropSelectedRange, s, fromView)
}

// changed notifies listeners and forwards the change to the view unless
// the view wrote it.
func (e *CodeEditor) changed(name string, value any, fromView bool) {
	e.notify(PropertyChange{Name: name, Value: value, FromView: fromView})
	if !fromView {
		e.pushProperty(name)
	}
}

func (e *CodeEditor) notify(change PropertyChange) {
	e.mu.Lock()
	listeners := make([]func(PropertyChange), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(change)
	}
}

// pushProperty queues the view update for a host side change. The queued
// op reads the value when it runs, so the last op sent carries the latest
// value whatever order concurrent setters enqueued in. Before the page is
// loaded the update is dropped and the initial push covers it.
func (e *CodeEditor) pushProperty(name string) {
	var op func(ctx context.Context)
	switch name {
	case PropText:
		op = func(ctx context.Context) { e.channel.Invoke(ctx, "updateContent", e.Text()) }
	case PropCodeLanguage:
		op = func(ctx context.Context) { e.channel.Invoke(ctx, "updateLanguage", e.CodeLanguage()) }
	case PropReadOnly:
		op = func(ctx context.Context) {
			e.channel.Invoke(ctx, "updateOptions", monaco.EditorOptions{ReadOnly: monaco.Bool(e.ReadOnly())})
		}
	case PropHasGlyphMargin:
		op = func(ctx context.Context) {
			e.channel.Invoke(ctx, "updateOptions", monaco.EditorOptions{GlyphMargin: monaco.Bool(e.HasGlyphMargin())})
		}
	case PropOptions:
		op = func(ctx context.Context) { e.channel.Invoke(ctx, "updateOptions", e.EditorOptions()) }
	case PropTheme:
		op = func(ctx context.Context) {
			theme, highContrast := e.Theme()
			e.channel.Invoke(ctx, "changeTheme", string(theme), highContrast)
		}
	default:
		return
	}

	if !e.state.Ready() {
		log.Debugf("dropping %s update: bridge is %s", name, e.state.Phase())
		return
	}
	e.propertyQueue.Enqueue(func(ctx context.Context) error {
		op(ctx)
		return nil
	})
}
