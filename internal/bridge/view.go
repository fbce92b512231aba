package bridge

import (
	"context"
	"encoding/json"
)

// ScriptView executes invocations inside the editor's script environment.
type ScriptView interface {
	// InvokeScript calls a named handler in the view with pre-serialized
	// positional arguments and returns its string result.
	InvokeScript(ctx context.Context, method string, args []json.RawMessage) (string, error)
	// RunScript evaluates a script fragment and returns its string result.
	RunScript(ctx context.Context, script string) (string, error)
}

// ViewEvents are the navigation signals a presenter raises. Nil handlers are
// skipped.
type ViewEvents struct {
	NavigationStarting  func(uri string)
	DOMContentLoaded    func()
	NavigationCompleted func(ok bool)
	NewWindowRequested  func(uri string)
}

// Presenter is the view hosting capability the editor control consumes.
type Presenter interface {
	ScriptView

	// Navigate loads uri into the view.
	Navigate(uri string) error
	// AddWebAllowedObject exposes target to the view under name.
	AddWebAllowedObject(name string, target CallTarget)
	// SetViewEvents replaces the navigation handlers. The zero value detaches.
	SetViewEvents(events ViewEvents)
}

// CallTarget receives calls made by the view. Accessor implements it.
type CallTarget interface {
	CallAction(name string) bool
	CallActionWithParameters(name string, args []string) bool
	CallEvent(ctx context.Context, name string, args []string) (string, bool)
	GetValue(ctx context.Context, name string) any
	GetJSONValue(ctx context.Context, name string) string
	GetChildValue(ctx context.Context, name, child string) any
	SetValue(ctx context.Context, name string, value any)
	SetValueTyped(ctx context.Context, name, value, typeName string)
}
