package contracts

import "encoding/json"

const (
	// MessageTypeInvoke calls a named handler in the view.
	MessageTypeInvoke = "invoke"
	// MessageTypeRun evaluates a script fragment in the view.
	MessageTypeRun = "run"
	// MessageTypeNavigate asks the view to load a new document.
	MessageTypeNavigate = "navigate"
	// MessageTypeCallResult answers a call made by the view.
	MessageTypeCallResult = "call_result"

	// MessageTypeResult answers an invoke or run.
	MessageTypeResult = "result"
	// MessageTypeCall is a call from the view into a host object.
	MessageTypeCall = "call"
	// MessageTypeDOMContentLoaded reports that the page script is running.
	MessageTypeDOMContentLoaded = "dom_content_loaded"
	// MessageTypeNavigationCompleted reports that the page finished loading.
	MessageTypeNavigationCompleted = "navigation_completed"
	// MessageTypeNewWindow reports a window.open from the page.
	MessageTypeNewWindow = "new_window"
)

// Call operations carried by CallMessage.Op.
const (
	OpCallAction               = "callAction"
	OpCallActionWithParameters = "callActionWithParameters"
	OpCallEvent                = "callEvent"
	OpGetValue                 = "getValue"
	OpGetJSONValue             = "getJsonValue"
	OpGetChildValue            = "getChildValue"
	OpSetValue                 = "setValue"
	OpSetValueTyped            = "setValueTyped"
)

// IncomingMessage is the minimal envelope used to route view messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// InvokeMessage calls Method with JSON encoded positional arguments.
type InvokeMessage struct {
	Type   string            `json:"type"`
	ID     string            `json:"id"`
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
}

// RunMessage evaluates Script in the view.
type RunMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Script string `json:"script"`
}

// NavigateMessage points the view at URI.
type NavigateMessage struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// ResultMessage carries the string result of an invoke or run. A non-empty
// Error means the view handler threw.
type ResultMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

// CallMessage is a call from the view into the object published as Target.
// Value is the raw property value for setValue and JSON text for
// setValueTyped.
type CallMessage struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Target   string          `json:"target"`
	Op       string          `json:"op"`
	Name     string          `json:"name"`
	Args     []string        `json:"args,omitempty"`
	Child    string          `json:"child,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	TypeName string          `json:"typeName,omitempty"`
}

// CallResultMessage answers a CallMessage.
type CallResultMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Found bool   `json:"found"`
	Value any    `json:"value"`
}

// NavigationCompletedMessage reports the outcome of a page load.
type NavigationCompletedMessage struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}

// NewWindowMessage reports a request to open URI.
type NewWindowMessage struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}
