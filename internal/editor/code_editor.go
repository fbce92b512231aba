// Package editor implements the Monaco code editor control: host side state
// mirrored into the view through the bridge.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"go-monaco-bridge/internal/bridge"
	"go-monaco-bridge/internal/collection"
	"go-monaco-bridge/internal/dispatch"
	"go-monaco-bridge/internal/monaco"
)

var log = commonlog.GetLogger("monaco.editor")

// MarkerOwner is the owner used for markers pushed from Markers().
const MarkerOwner = "CodeEditor"

// ParentObjectName is the name the accessor is published under in the view.
const ParentObjectName = "Parent"

// Options configures a CodeEditor.
type Options struct {
	Text          string
	Language      string
	ReadOnly      bool
	GlyphMargin   bool
	Theme         Theme
	HighContrast  bool
	EditorOptions monaco.EditorOptions

	// PageURI is loaded by Navigate. Defaults to "/".
	PageURI string
	// OnNewWindow receives links the page tried to open.
	OnNewWindow func(uri string)
	// Dispatcher runs view callbacks. A private one is created when nil and
	// stopped by Close.
	Dispatcher *dispatch.Dispatcher
}

// CodeEditor is the host side of one Monaco editor instance.
type CodeEditor struct {
	view     bridge.Presenter
	d        *dispatch.Dispatcher
	ownsD    bool
	state    *bridge.State
	channel  *bridge.Channel
	accessor *bridge.Accessor
	broker   *bridge.StyleBroker

	decorations      *collection.List[monaco.DecorationRequest]
	markers          *collection.List[monaco.MarkerData]
	decorationQueue  *bridge.ScriptQueue
	markerQueue      *bridge.ScriptQueue
	propertyQueue    *bridge.ScriptQueue
	decorationBridge *bridge.CollectionBridge[monaco.DecorationRequest]
	markerBridge     *bridge.CollectionBridge[monaco.MarkerData]

	pageURI     string
	onNewWindow func(uri string)

	settingValue atomic.Bool
	commandIndex atomic.Int64

	mu            sync.Mutex
	text          string
	language      string
	readOnly      bool
	glyphMargin   bool
	options       monaco.EditorOptions
	theme         Theme
	highContrast  bool
	selectedText  string
	selectedRange monaco.Selection
	wired         bool
	closed        bool
	listeners     map[int]func(PropertyChange)
	loaded        map[int]func()
	nextID        int
	onError       func(error)
}

// New creates an editor presented by view and publishes its accessor to
// the view. Nothing reaches the view until the page reports Loaded.
func New(view bridge.Presenter, opts Options) *CodeEditor {
	d := opts.Dispatcher
	ownsD := d == nil
	if ownsD {
		d = dispatch.New()
	}
	if opts.PageURI == "" {
		opts.PageURI = "/"
	}
	if opts.Theme == "" {
		opts.Theme = ThemeDefault
	}

	state := bridge.NewState()
	e := &CodeEditor{
		view:            view,
		d:               d,
		ownsD:           ownsD,
		state:           state,
		channel:         bridge.NewChannel(state),
		broker:          bridge.NewStyleBroker(),
		decorations:     collection.New[monaco.DecorationRequest](),
		markers:         collection.New[monaco.MarkerData](),
		decorationQueue: bridge.NewScriptQueue("decorations"),
		markerQueue:     bridge.NewScriptQueue("markers"),
		propertyQueue:   bridge.NewScriptQueue("properties"),
		pageURI:         opts.PageURI,
		onNewWindow:     opts.OnNewWindow,
		text:            opts.Text,
		theme:           opts.Theme,
		highContrast:    opts.HighContrast,
		listeners:       make(map[int]func(PropertyChange)),
		loaded:          make(map[int]func()),
	}
	e.options = syncPassThrough(opts.EditorOptions, opts.Language, opts.ReadOnly, opts.GlyphMargin)
	e.language = e.options.Language
	e.readOnly = *e.options.ReadOnly
	e.glyphMargin = *e.options.GlyphMargin

	e.decorationBridge = bridge.NewCollectionBridge(e.decorations, e.decorationQueue, e.applyDecorations)
	e.markerBridge = bridge.NewCollectionBridge(e.markers, e.markerQueue, e.applyMarkers)

	e.accessor = bridge.NewAccessor(bridge.WeakParent(e), d)
	e.registerProperties()
	e.accessor.RegisterAction("Loaded", e.onLoaded)

	e.channel.OnInternalError(e.report)
	e.accessor.OnInternalError(e.report)
	e.channel.Attach(view)

	view.AddWebAllowedObject(ParentObjectName, e.accessor)
	view.SetViewEvents(bridge.ViewEvents{
		NavigationStarting:  e.onNavigationStarting,
		DOMContentLoaded:    e.onDOMContentLoaded,
		NavigationCompleted: e.onNavigationCompleted,
		NewWindowRequested:  e.onNewWindowRequested,
	})
	return e
}

func syncPassThrough(o monaco.EditorOptions, language string, readOnly, glyphMargin bool) monaco.EditorOptions {
	if language != "" || o.Language == "" {
		o.Language = language
	}
	if o.Language == "" {
		o.Language = "plaintext"
	}
	if readOnly || o.ReadOnly == nil {
		o.ReadOnly = monaco.Bool(readOnly)
	}
	if glyphMargin || o.GlyphMargin == nil {
		o.GlyphMargin = monaco.Bool(glyphMargin)
	}
	return o
}

// Navigate loads the editor page into the view.
func (e *CodeEditor) Navigate() error {
	if err := e.view.Navigate(e.pageURI); err != nil {
		return fmt.Errorf("navigate %s: %w", e.pageURI, err)
	}
	return nil
}

// Phase returns the bridge lifecycle phase.
func (e *CodeEditor) Phase() bridge.Phase {
	return e.state.Phase()
}

// Ready reports whether the view is loaded and accepting operations.
func (e *CodeEditor) Ready() bool {
	return e.state.Ready()
}

// Decorations is the live decoration list. Every edit sends the full list
// to the view.
func (e *CodeEditor) Decorations() *collection.List[monaco.DecorationRequest] {
	return e.decorations
}

// Markers is the live marker list, shown under MarkerOwner.
func (e *CodeEditor) Markers() *collection.List[monaco.MarkerData] {
	return e.markers
}

// OnInternalError sets the handler for bridge faults. Faults are never
// returned to callers.
func (e *CodeEditor) OnInternalError(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = fn
}

// OnLoaded registers fn to run each time the view finishes loading. The
// returned function removes it.
func (e *CodeEditor) OnLoaded(fn func()) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.loaded[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.loaded, id)
	}
}

// SetSettingValue brackets a write from the view. Only property writes made
// through the accessor inside the bracket are treated as the view's own.
func (e *CodeEditor) SetSettingValue(setting bool) {
	e.settingValue.Store(setting)
}

// Close tears the bridge down and releases the view. The editor cannot be
// reused.
func (e *CodeEditor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.state.TearDown()
	e.unwire()
	e.view.SetViewEvents(bridge.ViewEvents{})
	e.accessor.Dispose()
	e.broker.Dispose()
	e.decorationQueue.Close()
	e.markerQueue.Close()
	e.propertyQueue.Close()
	if e.ownsD {
		e.d.Stop()
	}
}

func (e *CodeEditor) onNavigationStarting(uri string) {
	log.Debugf("navigation starting: %s", uri)
	if e.state.Phase() == bridge.TornDown {
		return
	}
	e.state.Reload()
	e.unwire()
}

func (e *CodeEditor) onDOMContentLoaded() {
	log.Debugf("DOM content loaded")
}

func (e *CodeEditor) onNavigationCompleted(ok bool) {
	if !ok {
		log.Warningf("editor page failed to load")
		return
	}
	log.Debugf("navigation completed")
}

func (e *CodeEditor) onNewWindowRequested(uri string) {
	if e.onNewWindow != nil {
		e.onNewWindow(uri)
		return
	}
	log.Infof("ignoring new window request for %s", uri)
}

// onLoaded runs on the dispatcher when the page has created the editor.
func (e *CodeEditor) onLoaded() {
	if e.state.Phase() == bridge.TornDown {
		log.Debugf("ignoring Loaded after teardown")
		return
	}

	e.wire()
	if err := e.state.MarkReady(); err != nil {
		e.report(err)
		return
	}
	e.pushInitialState()

	e.mu.Lock()
	handlers := make([]func(), 0, len(e.loaded))
	for _, fn := range e.loaded {
		handlers = append(handlers, fn)
	}
	e.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (e *CodeEditor) wire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.wired {
		return
	}
	e.decorationBridge.Attach()
	e.markerBridge.Attach()
	e.wired = true
	log.Debugf("wired")
}

func (e *CodeEditor) unwire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.wired {
		return
	}
	e.decorationBridge.Detach()
	e.markerBridge.Detach()
	e.wired = false
	log.Debugf("unwired")
}

// pushInitialState sends everything a freshly loaded page is missing. The
// page keeps nothing across loads, so the full stylesheet goes before the
// decorations that use it. State is read when the queued op runs, so a host
// setter racing the load cannot be overwritten by an older snapshot.
func (e *CodeEditor) pushInitialState() {
	e.propertyQueue.Enqueue(func(ctx context.Context) error {
		e.mu.Lock()
		options := e.options
		text := e.text
		theme, highContrast := e.theme, e.highContrast
		e.mu.Unlock()

		e.channel.Invoke(ctx, "updateOptions", options)
		e.channel.Invoke(ctx, "updateLanguage", options.Language)
		e.channel.Invoke(ctx, "updateContent", text)
		e.channel.Invoke(ctx, "changeTheme", string(theme), highContrast)
		return nil
	})

	e.decorationQueue.Enqueue(func(ctx context.Context) error {
		if styles := e.broker.Styles(); styles != "" {
			e.channel.Invoke(ctx, "updateStyle", styles)
		}
		return nil
	})
	e.decorationBridge.Sync()
	e.markerBridge.Sync()
}

// applyDecorations installs any new style rules and then the decorations,
// in that order, as one queued operation.
func (e *CodeEditor) applyDecorations(ctx context.Context, snapshot []monaco.DecorationRequest) error {
	if !e.state.Ready() {
		log.Debugf("dropping decorations: bridge is %s", e.state.Phase())
		return nil
	}
	if e.broker.AssociateStyles(snapshot) {
		e.channel.Invoke(ctx, "updateStyle", e.broker.Styles())
	}
	e.channel.Invoke(ctx, "updateDecorations", monaco.ResolveAll(snapshot))
	return nil
}

func (e *CodeEditor) applyMarkers(ctx context.Context, snapshot []monaco.MarkerData) error {
	if snapshot == nil {
		snapshot = []monaco.MarkerData{}
	}
	e.channel.Invoke(ctx, "setModelMarkers", MarkerOwner, snapshot)
	return nil
}

func (e *CodeEditor) report(err error) {
	e.mu.Lock()
	fn := e.onError
	e.mu.Unlock()

	log.Debugf("internal error: %s", err)
	if fn != nil {
		fn(err)
	}
}

// RunScript evaluates a script fragment in the view. The editor is in scope
// as editor, its model as model.
func (e *CodeEditor) RunScript(ctx context.Context, script string) string {
	return e.channel.Run(ctx, script)
}

// AddAction adds an action to the editor. action.Run executes on the host
// when the action is triggered.
func (e *CodeEditor) AddAction(ctx context.Context, action monaco.ActionDescriptor) {
	run := action.Run
	e.accessor.RegisterAction("Action"+action.ID, func() {
		if run != nil {
			run()
		}
	})
	e.channel.Invoke(ctx, "addAction", action)
}

// CommandHandler receives the decoded arguments of a command invocation.
type CommandHandler func(args []any)

// AddCommand binds keybinding to handler, optionally only while the context
// expression when holds. It returns the view's command id.
func (e *CodeEditor) AddCommand(ctx context.Context, keybinding int, handler CommandHandler, when string) string {
	name := fmt.Sprintf("Command%d", e.commandIndex.Add(1))
	e.accessor.RegisterActionWithParameters(name, func(params []string) {
		args := make([]any, 0, len(params))
		for _, p := range params {
			var v any
			if err := json.Unmarshal([]byte(p), &v); err != nil {
				e.report(fmt.Errorf("command %s: decode argument: %w", name, err))
				v = p
			}
			args = append(args, v)
		}
		if handler != nil {
			handler(args)
		}
	})
	return e.channel.Invoke(ctx, "addCommand", keybinding, name, when)
}

// Focus gives the editor keyboard focus.
func (e *CodeEditor) Focus(ctx context.Context) {
	e.channel.Invoke(ctx, "focus")
}
