package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go-monaco-bridge/internal/bridge"
	"go-monaco-bridge/internal/monaco"
)

func (e *CodeEditor) runf(ctx context.Context, format string, args ...any) {
	e.channel.Run(ctx, fmt.Sprintf(format, args...))
}

// jsLiteral renders v as a script literal. JSON is valid script syntax.
func (e *CodeEditor) jsLiteral(v any) (string, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		e.report(fmt.Errorf("encode script argument: %w", err))
		return "", false
	}
	return string(raw), true
}

// RevealLine scrolls line into view.
func (e *CodeEditor) RevealLine(ctx context.Context, line int) {
	e.runf(ctx, "editor.revealLine(%d)", line)
}

// RevealLineInCenter scrolls line to the vertical center.
func (e *CodeEditor) RevealLineInCenter(ctx context.Context, line int) {
	e.runf(ctx, "editor.revealLineInCenter(%d)", line)
}

// RevealLineInCenterIfOutsideViewport centers line unless it is visible.
func (e *CodeEditor) RevealLineInCenterIfOutsideViewport(ctx context.Context, line int) {
	e.runf(ctx, "editor.revealLineInCenterIfOutsideViewport(%d)", line)
}

// RevealLines scrolls the lines start to end into view.
func (e *CodeEditor) RevealLines(ctx context.Context, start, end int) {
	e.runf(ctx, "editor.revealLines(%d, %d)", start, end)
}

// RevealLinesInCenter centers the lines start to end.
func (e *CodeEditor) RevealLinesInCenter(ctx context.Context, start, end int) {
	e.runf(ctx, "editor.revealLinesInCenter(%d, %d)", start, end)
}

// RevealLinesInCenterIfOutsideViewport centers the lines start to end
// unless they are visible.
func (e *CodeEditor) RevealLinesInCenterIfOutsideViewport(ctx context.Context, start, end int) {
	e.runf(ctx, "editor.revealLinesInCenterIfOutsideViewport(%d, %d)", start, end)
}

// RevealPosition scrolls pos into view.
func (e *CodeEditor) RevealPosition(ctx context.Context, pos monaco.Position, verticalInCenter, horizontal bool) {
	if lit, ok := e.jsLiteral(pos); ok {
		e.runf(ctx, "editor.revealPosition(%s, %t, %t)", lit, verticalInCenter, horizontal)
	}
}

// RevealPositionInCenter scrolls pos to the center.
func (e *CodeEditor) RevealPositionInCenter(ctx context.Context, pos monaco.Position) {
	if lit, ok := e.jsLiteral(pos); ok {
		e.runf(ctx, "editor.revealPositionInCenter(%s)", lit)
	}
}

func (e *CodeEditor) RevealPositionInCenterIfOutsideViewport(ctx context.Context, pos monaco.Position) {
	if lit, ok := e.jsLiteral(pos); ok {
		e.runf(ctx, "editor.revealPositionInCenterIfOutsideViewport(%s)", lit)
	}
}

// RevealRange scrolls r into view.
func (e *CodeEditor) RevealRange(ctx context.Context, r monaco.Range) {
	if lit, ok := e.jsLiteral(r); ok {
		e.runf(ctx, "editor.revealRange(%s)", lit)
	}
}

// RevealRangeAtTop scrolls r to the top of the viewport.
func (e *CodeEditor) RevealRangeAtTop(ctx context.Context, r monaco.Range) {
	if lit, ok := e.jsLiteral(r); ok {
		e.runf(ctx, "editor.revealRangeAtTop(%s)", lit)
	}
}

// RevealRangeInCenter scrolls r to the center.
func (e *CodeEditor) RevealRangeInCenter(ctx context.Context, r monaco.Range) {
	if lit, ok := e.jsLiteral(r); ok {
		e.runf(ctx, "editor.revealRangeInCenter(%s)", lit)
	}
}

func (e *CodeEditor) RevealRangeInCenterIfOutsideViewport(ctx context.Context, r monaco.Range) {
	if lit, ok := e.jsLiteral(r); ok {
		e.runf(ctx, "editor.revealRangeInCenterIfOutsideViewport(%s)", lit)
	}
}

// GetPosition returns the cursor position, or the zero Position when the
// view is unavailable.
func (e *CodeEditor) GetPosition(ctx context.Context) monaco.Position {
	return bridge.InvokeAs[monaco.Position](ctx, e.channel, "getPosition")
}

// SetPosition moves the cursor.
func (e *CodeEditor) SetPosition(ctx context.Context, pos monaco.Position) {
	e.channel.Invoke(ctx, "setPosition", pos)
}

// GetModelMarkers returns every marker on the model, from all owners.
func (e *CodeEditor) GetModelMarkers(ctx context.Context) []monaco.Marker {
	return bridge.InvokeAs[[]monaco.Marker](ctx, e.channel, "getModelMarkers")
}

// SetModelMarkers replaces the markers of owner. Markers() manages the
// MarkerOwner set; other owners are left to the caller.
func (e *CodeEditor) SetModelMarkers(ctx context.Context, owner string, markers []monaco.MarkerData) {
	if markers == nil {
		markers = []monaco.MarkerData{}
	}
	e.channel.Invoke(ctx, "setModelMarkers", owner, markers)
}

// ContextKey is a boolean context key created in the view, usable in
// action preconditions and command contexts.
type ContextKey struct {
	e            *CodeEditor
	key          string
	defaultValue bool

	value atomic.Bool
}

// CreateContextKey creates key in the view with defaultValue.
func (e *CodeEditor) CreateContextKey(ctx context.Context, key string, defaultValue bool) *ContextKey {
	ck := &ContextKey{e: e, key: key, defaultValue: defaultValue}
	ck.value.Store(defaultValue)
	e.channel.Invoke(ctx, "createContext", monaco.ContextKeyValue{Key: key, DefaultValue: defaultValue})
	return ck
}

// Key returns the context key name.
func (k *ContextKey) Key() string { return k.key }

// Get returns the last value set from the host.
func (k *ContextKey) Get() bool { return k.value.Load() }

// Set updates the key in the view.
func (k *ContextKey) Set(ctx context.Context, value bool) {
	k.value.Store(value)
	k.e.channel.Invoke(ctx, "updateContext", k.key, value)
}

// Reset restores the default value.
func (k *ContextKey) Reset(ctx context.Context) {
	k.Set(ctx, k.defaultValue)
}

// Trigger runs an editor command by id, as if source had issued it.
func (e *CodeEditor) Trigger(ctx context.Context, source, handlerID string) {
	e.runf(ctx, "editor.trigger('%s', '%s', null)", bridge.Sanitize(source), bridge.Sanitize(handlerID))
}

// LineCount returns the number of lines in the view's model, or 0 when the
// view is unavailable.
func (e *CodeEditor) LineCount(ctx context.Context) int {
	return bridge.RunAs[int](ctx, e.channel, "model.getLineCount()")
}

// ScrollTop returns the vertical scroll offset in pixels.
func (e *CodeEditor) ScrollTop(ctx context.Context) float64 {
	return bridge.RunAs[float64](ctx, e.channel, "editor.getScrollTop()")
}

// InvokeHandler calls a page handler with arguments that are already JSON
// text and returns its raw result.
func (e *CodeEditor) InvokeHandler(ctx context.Context, method string, jsonArgs ...string) string {
	return e.channel.InvokeRaw(ctx, method, jsonArgs...)
}
