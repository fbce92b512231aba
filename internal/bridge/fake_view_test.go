package bridge

import (
	"context"
	"encoding/json"
	"sync"
)

type viewCall struct {
	method string
	args   []string
}

// fakeView records every invocation and answers from a fixed table.
type fakeView struct {
	mu      sync.Mutex
	calls   []viewCall
	results map[string]string
	err     error
	panics  bool
}

func newFakeView() *fakeView {
	return &fakeView{results: map[string]string{}}
}

func (v *fakeView) InvokeScript(ctx context.Context, method string, args []json.RawMessage) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.panics {
		panic("view exploded")
	}
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = string(a)
	}
	v.calls = append(v.calls, viewCall{method: method, args: strs})
	if v.err != nil {
		return "", v.err
	}
	return v.results[method], nil
}

func (v *fakeView) RunScript(ctx context.Context, script string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, viewCall{method: "run", args: []string{script}})
	if v.err != nil {
		return "", v.err
	}
	return v.results[script], nil
}

func (v *fakeView) Calls() []viewCall {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]viewCall(nil), v.calls...)
}

func (v *fakeView) Methods() []string {
	var out []string
	for _, c := range v.Calls() {
		out = append(out, c.method)
	}
	return out
}

func readyChannel(view ScriptView) (*Channel, *State) {
	state := NewState()
	_ = state.MarkReady()
	c := NewChannel(state)
	c.Attach(view)
	return c, state
}
