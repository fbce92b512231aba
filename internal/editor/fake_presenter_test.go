package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go-monaco-bridge/internal/bridge"
)

type invocation struct {
	method string
	args   []json.RawMessage
}

type fakePresenter struct {
	mu        sync.Mutex
	calls     []invocation
	scripts   []string
	results   map[string]string
	failing   map[string]bool
	target    bridge.CallTarget
	events    bridge.ViewEvents
	navigated []string
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{results: map[string]string{}, failing: map[string]bool{}}
}

func (f *fakePresenter) InvokeScript(_ context.Context, method string, args []json.RawMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invocation{method: method, args: args})
	if f.failing[method] {
		return "", errors.New(method + " failed")
	}
	return f.results[method], nil
}

func (f *fakePresenter) RunScript(_ context.Context, script string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, script)
	return "", nil
}

func (f *fakePresenter) Navigate(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, uri)
	return nil
}

func (f *fakePresenter) AddWebAllowedObject(name string, target bridge.CallTarget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == ParentObjectName {
		f.target = target
	}
}

func (f *fakePresenter) SetViewEvents(events bridge.ViewEvents) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
}

func (f *fakePresenter) viewEvents() bridge.ViewEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

func (f *fakePresenter) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method
	}
	return out
}

func (f *fakePresenter) callsTo(method string) []invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []invocation
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePresenter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.scripts = nil
}

// settle waits until the dispatcher and every queue have drained.
func settle(t *testing.T, e *CodeEditor) {
	t.Helper()
	if err := e.d.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	for _, q := range []*bridge.ScriptQueue{e.propertyQueue, e.decorationQueue, e.markerQueue} {
		if err := <-q.Enqueue(func(context.Context) error { return nil }); err != nil {
			t.Fatal(err)
		}
	}
}

// load simulates the page creating the editor.
func load(t *testing.T, e *CodeEditor, view *fakePresenter) {
	t.Helper()
	if !view.target.CallAction("Loaded") {
		t.Fatal("Loaded action not registered")
	}
	settle(t, e)
	if !e.Ready() {
		t.Fatalf("phase = %s after Loaded", e.Phase())
	}
}

func newTestEditor(t *testing.T, opts Options) (*CodeEditor, *fakePresenter) {
	t.Helper()
	view := newFakePresenter()
	e := New(view, opts)
	t.Cleanup(e.Close)
	return e, view
}

func argString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("argument %s is not a string: %v", raw, err)
	}
	return s
}
