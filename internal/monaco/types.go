// Package monaco holds the editor data model exchanged with the Monaco view.
//
// JSON field names follow the Monaco API so values can be handed to the
// editor as-is. Empty fields are omitted on the wire.
package monaco

// Position is a 1-based line/column location in the model.
type Position struct {
	LineNumber int `json:"lineNumber"`
	Column     int `json:"column"`
}

// Range spans two positions, both 1-based.
type Range struct {
	StartLineNumber int `json:"startLineNumber"`
	StartColumn     int `json:"startColumn"`
	EndLineNumber   int `json:"endLineNumber"`
	EndColumn       int `json:"endColumn"`
}

// NewRange builds a Range from its four coordinates.
func NewRange(startLine, startColumn, endLine, endColumn int) Range {
	return Range{
		StartLineNumber: startLine,
		StartColumn:     startColumn,
		EndLineNumber:   endLine,
		EndColumn:       endColumn,
	}
}

// LineRange covers the whole of a single line.
func LineRange(line int) Range {
	return NewRange(line, 1, line, 1)
}

// IsEmpty reports whether the range starts where it ends.
func (r Range) IsEmpty() bool {
	return r.StartLineNumber == r.EndLineNumber && r.StartColumn == r.EndColumn
}

// Selection is a range with a direction.
type Selection struct {
	SelectionStartLineNumber int `json:"selectionStartLineNumber"`
	SelectionStartColumn     int `json:"selectionStartColumn"`
	PositionLineNumber       int `json:"positionLineNumber"`
	PositionColumn           int `json:"positionColumn"`
}

// MarkdownString is hover or message content rendered by the editor.
type MarkdownString struct {
	Value       string `json:"value"`
	IsTrusted   bool   `json:"isTrusted,omitempty"`
	SupportHTML bool   `json:"supportHtml,omitempty"`
}

// TrackedRangeStickiness controls how a decoration grows when text is typed
// at its edges.
type TrackedRangeStickiness int

const (
	AlwaysGrowsWhenTypingAtEdges TrackedRangeStickiness = iota
	NeverGrowsWhenTypingAtEdges
	GrowsOnlyWhenTypingBefore
	GrowsOnlyWhenTypingAfter
)

// MarkerSeverity mirrors monaco.MarkerSeverity.
type MarkerSeverity int

const (
	SeverityHint    MarkerSeverity = 1
	SeverityInfo    MarkerSeverity = 2
	SeverityWarning MarkerSeverity = 4
	SeverityError   MarkerSeverity = 8
)

// MarkerData is a diagnostic shown in the editor.
type MarkerData struct {
	Code            string         `json:"code,omitempty"`
	Severity        MarkerSeverity `json:"severity"`
	Message         string         `json:"message"`
	Source          string         `json:"source,omitempty"`
	StartLineNumber int            `json:"startLineNumber"`
	StartColumn     int            `json:"startColumn"`
	EndLineNumber   int            `json:"endLineNumber"`
	EndColumn       int            `json:"endColumn"`
}

// Marker is a marker read back from the editor.
type Marker struct {
	MarkerData
	Owner    string `json:"owner"`
	Resource string `json:"resource,omitempty"`
}

// Hover is the result of a hover provider.
type Hover struct {
	Contents []MarkdownString `json:"contents"`
	Range    *Range           `json:"range,omitempty"`
}

// TextEdit replaces Range with Text.
type TextEdit struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// WorkspaceTextEdit is a text edit against the editor's model. The view
// fills in the model resource.
type WorkspaceTextEdit struct {
	TextEdit TextEdit `json:"textEdit"`
}

// WorkspaceEdit groups the edits a code action applies.
type WorkspaceEdit struct {
	Edits []WorkspaceTextEdit `json:"edits"`
}

// Command is a command a code lens or code action runs in the view.
type Command struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Tooltip   string `json:"tooltip,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
}

// CodeActionContext is what the view knows about a code action request:
// the markers in the requested range and an optional kind filter.
type CodeActionContext struct {
	Markers []MarkerData `json:"markers"`
	Only    string       `json:"only,omitempty"`
}

// CodeAction is a fix or refactoring offered for a range.
type CodeAction struct {
	Title       string         `json:"title"`
	Kind        string         `json:"kind,omitempty"`
	Diagnostics []MarkerData   `json:"diagnostics,omitempty"`
	Edit        *WorkspaceEdit `json:"edit,omitempty"`
	Command     *Command       `json:"command,omitempty"`
	IsPreferred bool           `json:"isPreferred,omitempty"`
}

// CodeActionList is the result of a code action provider.
type CodeActionList struct {
	Actions []CodeAction `json:"actions"`
}

// CodeLens is a command shown above a range. ID lets the host resolve the
// command lazily.
type CodeLens struct {
	Range   Range    `json:"range"`
	ID      string   `json:"id,omitempty"`
	Command *Command `json:"command,omitempty"`
}

// CodeLensList is the result of a code lens provider.
type CodeLensList struct {
	Lenses []CodeLens `json:"lenses"`
}

// ActionDescriptor describes an editor action. Run is invoked on the host
// when the action is triggered in the view.
type ActionDescriptor struct {
	ID                 string  `json:"id"`
	Label              string  `json:"label"`
	Keybindings        []int   `json:"keybindings,omitempty"`
	Precondition       string  `json:"precondition,omitempty"`
	KeybindingContext  string  `json:"keybindingContext,omitempty"`
	ContextMenuGroupID string  `json:"contextMenuGroupId,omitempty"`
	ContextMenuOrder   float64 `json:"contextMenuOrder,omitempty"`
	Run                func()  `json:"-"`
}

// ContextKeyValue is the payload used to create a context key in the view.
type ContextKeyValue struct {
	Key          string `json:"key"`
	DefaultValue bool   `json:"defaultValue"`
}

// EditorOptions is the subset of IEditorConstructionOptions the host drives.
// Pointer fields distinguish "unset" from false/zero.
type EditorOptions struct {
	Language             string          `json:"language,omitempty"`
	ReadOnly             *bool           `json:"readOnly,omitempty"`
	GlyphMargin          *bool           `json:"glyphMargin,omitempty"`
	LineNumbers          string          `json:"lineNumbers,omitempty"`
	FontSize             int             `json:"fontSize,omitempty"`
	FontFamily           string          `json:"fontFamily,omitempty"`
	TabSize              int             `json:"tabSize,omitempty"`
	WordWrap             string          `json:"wordWrap,omitempty"`
	Minimap              *MinimapOptions `json:"minimap,omitempty"`
	RenderWhitespace     string          `json:"renderWhitespace,omitempty"`
	AutomaticLayout      *bool           `json:"automaticLayout,omitempty"`
	ScrollBeyondLastLine *bool           `json:"scrollBeyondLastLine,omitempty"`
}

// MinimapOptions toggles the minimap.
type MinimapOptions struct {
	Enabled bool `json:"enabled"`
}

// Bool returns a pointer to b, for the optional option fields.
func Bool(b bool) *bool { return &b }
