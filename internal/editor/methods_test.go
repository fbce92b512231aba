package editor

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"go-monaco-bridge/internal/monaco"
)

func TestRevealScripts(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	ctx := context.Background()

	e.RevealLine(ctx, 10)
	e.RevealLinesInCenter(ctx, 2, 4)
	e.RevealPosition(ctx, monaco.Position{LineNumber: 3, Column: 7}, true, false)
	e.RevealRangeInCenter(ctx, monaco.NewRange(1, 1, 2, 5))
	e.RevealLinesInCenterIfOutsideViewport(ctx, 8, 9)
	e.RevealPositionInCenterIfOutsideViewport(ctx, monaco.Position{LineNumber: 5, Column: 1})
	e.RevealRangeInCenterIfOutsideViewport(ctx, monaco.NewRange(3, 1, 3, 4))

	want := []string{
		"editor.revealLine(10)",
		"editor.revealLinesInCenter(2, 4)",
		`editor.revealPosition({"lineNumber":3,"column":7}, true, false)`,
		`editor.revealRangeInCenter({"startLineNumber":1,"startColumn":1,"endLineNumber":2,"endColumn":5})`,
		"editor.revealLinesInCenterIfOutsideViewport(8, 9)",
		`editor.revealPositionInCenterIfOutsideViewport({"lineNumber":5,"column":1})`,
		`editor.revealRangeInCenterIfOutsideViewport({"startLineNumber":3,"startColumn":1,"endLineNumber":3,"endColumn":4})`,
	}
	if !slices.Equal(view.scripts, want) {
		t.Fatalf("scripts = %q", view.scripts)
	}
}

func TestGetPosition(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	ctx := context.Background()
	view.results["getPosition"] = `{"lineNumber":4,"column":2}`

	if got := e.GetPosition(ctx); got != (monaco.Position{}) {
		t.Fatalf("GetPosition before Loaded = %+v", got)
	}

	load(t, e, view)
	if got := e.GetPosition(ctx); got != (monaco.Position{LineNumber: 4, Column: 2}) {
		t.Fatalf("GetPosition = %+v", got)
	}
}

func TestGetModelMarkers(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	view.results["getModelMarkers"] = `[{"owner":"lint","severity":4,"message":"unused","startLineNumber":1,"startColumn":1,"endLineNumber":1,"endColumn":3}]`

	got := e.GetModelMarkers(context.Background())
	if len(got) != 1 || got[0].Owner != "lint" || got[0].Severity != monaco.SeverityWarning {
		t.Fatalf("markers = %+v", got)
	}
}

func TestAddCommandRoutesArguments(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	view.results["addCommand"] = "cmd-1"

	got := make(chan []any, 1)
	id := e.AddCommand(context.Background(), monaco.Chord(monaco.KeyModCtrlCmd, monaco.KeyEnter), func(args []any) { got <- args }, "editorTextFocus")
	if id != "cmd-1" {
		t.Fatalf("id = %q", id)
	}

	call := view.callsTo("addCommand")[0]
	name := argString(t, call.args[1])
	if name != "Command1" || string(call.args[0]) != "2051" || argString(t, call.args[2]) != "editorTextFocus" {
		t.Fatalf("addCommand args = %s", call.args)
	}

	if !view.target.CallActionWithParameters(name, []string{"1", `"x"`}) {
		t.Fatal("command not registered")
	}
	args := <-got
	if len(args) != 2 || args[0] != float64(1) || args[1] != "x" {
		t.Fatalf("args = %v", args)
	}
}

func TestAddActionRunsOnHost(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)

	ran := make(chan struct{}, 1)
	e.AddAction(context.Background(), monaco.ActionDescriptor{
		ID:    "format",
		Label: "Format",
		Run:   func() { ran <- struct{}{} },
	})

	var sent map[string]any
	if err := json.Unmarshal(view.callsTo("addAction")[0].args[0], &sent); err != nil {
		t.Fatal(err)
	}
	if sent["id"] != "format" || sent["label"] != "Format" {
		t.Fatalf("addAction(%v)", sent)
	}

	if !view.target.CallAction("Actionformat") {
		t.Fatal("action not registered")
	}
	<-ran
}

func TestContextKey(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	ctx := context.Background()

	k := e.CreateContextKey(ctx, "inDiff", false)
	k.Set(ctx, true)
	if !k.Get() {
		t.Fatal("Get after Set(true) = false")
	}
	k.Reset(ctx)

	if string(view.callsTo("createContext")[0].args[0]) != `{"key":"inDiff","defaultValue":false}` {
		t.Fatalf("createContext(%s)", view.callsTo("createContext")[0].args[0])
	}
	updates := view.callsTo("updateContext")
	if len(updates) != 2 || string(updates[0].args[1]) != "true" || string(updates[1].args[1]) != "false" {
		t.Fatalf("updateContext calls = %+v", updates)
	}
}

func TestHoverProvider(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	ctx := context.Background()

	e.RegisterHoverProvider(ctx, "go", func(_ context.Context, pos monaco.Position) (*monaco.Hover, error) {
		if pos.LineNumber != 2 {
			return nil, nil
		}
		r := monaco.LineRange(2)
		return &monaco.Hover{Contents: []monaco.MarkdownString{{Value: "**x**"}}, Range: &r}, nil
	})
	if argString(t, view.callsTo("registerHoverProvider")[0].args[0]) != "go" {
		t.Fatal("provider not registered in the view")
	}

	raw, ok := view.target.CallEvent(ctx, "HoverProvidergo", []string{`{"lineNumber":2,"column":1}`})
	if !ok {
		t.Fatal("hover event not found")
	}
	var h monaco.Hover
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatal(err)
	}
	if len(h.Contents) != 1 || h.Contents[0].Value != "**x**" || h.Range == nil {
		t.Fatalf("hover = %+v", h)
	}

	raw, ok = view.target.CallEvent(ctx, "HoverProvidergo", []string{`{"lineNumber":9,"column":1}`})
	if !ok || raw != "" {
		t.Fatalf("empty hover = %q, %v", raw, ok)
	}

	if _, ok := view.target.CallEvent(ctx, "HoverProvidergo", []string{"not json"}); ok {
		t.Fatal("malformed position reported success")
	}
}

func TestTriggerEscapesArguments(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)

	e.Trigger(context.Background(), "host's", "editor.action.formatDocument")
	want := `editor.trigger('host\'s', 'editor.action.formatDocument', null)`
	if len(view.scripts) != 1 || view.scripts[0] != want {
		t.Fatalf("scripts = %q", view.scripts)
	}
}

func TestInvokeHandlerPassesRawArguments(t *testing.T) {
	e, view := newTestEditor(t, Options{})
	load(t, e, view)
	view.reset()
	view.results["updateOptions"] = "done"

	if got := e.InvokeHandler(context.Background(), "updateOptions", `{"fontSize":20}`); got != "done" {
		t.Fatalf("result = %q", got)
	}
	if string(view.callsTo("updateOptions")[0].args[0]) != `{"fontSize":20}` {
		t.Fatalf("args = %s", view.callsTo("updateOptions")[0].args)
	}
}
