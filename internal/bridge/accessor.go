package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"weak"

	"github.com/tidwall/gjson"

	"go-monaco-bridge/internal/dispatch"
)

// Acceptor is the host object whose properties the view reads and writes.
type Acceptor interface {
	// SetSettingValue brackets a write that originates from the view, so the
	// host does not echo it back.
	SetSettingValue(setting bool)
}

// ParentHandle resolves the accessor's parent, reporting false once the
// parent is gone.
type ParentHandle func() (Acceptor, bool)

// WeakParent returns a handle that does not keep p alive.
func WeakParent[T any, P interface {
	*T
	Acceptor
}](p P) ParentHandle {
	w := weak.Make((*T)(p))
	return func() (Acceptor, bool) {
		t := w.Value()
		if t == nil {
			return nil, false
		}
		return P(t), true
	}
}

// EventHandler answers a view event with a string result.
type EventHandler func(ctx context.Context, args []string) (string, error)

// Accessor is the name-keyed surface the view calls into: a dispatch table
// of actions and events plus an explicit property table. Every handler runs
// on the host dispatcher.
type Accessor struct {
	parent ParentHandle
	d      *dispatch.Dispatcher

	mu            sync.RWMutex
	actions       map[string]func()
	actionsParams map[string]func([]string)
	events        map[string]EventHandler
	props         map[string]Property
	scopes        []TypeScope
	onError       func(error)
}

// NewAccessor creates an accessor for parent that runs handlers on d.
func NewAccessor(parent ParentHandle, d *dispatch.Dispatcher) *Accessor {
	return &Accessor{
		parent:        parent,
		d:             d,
		actions:       make(map[string]func()),
		actionsParams: make(map[string]func([]string)),
		events:        make(map[string]EventHandler),
		props:         make(map[string]Property),
	}
}

// OnInternalError sets the handler for faults raised by handlers and setters.
func (a *Accessor) OnInternalError(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = fn
}

// RegisterAction registers a parameterless action under name.
func (a *Accessor) RegisterAction(name string, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions[name] = fn
}

// RegisterActionWithParameters registers an action receiving JSON strings.
func (a *Accessor) RegisterActionWithParameters(name string, fn func(args []string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actionsParams[name] = fn
}

// RegisterEvent registers an event whose result the view awaits.
func (a *Accessor) RegisterEvent(name string, fn EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events[name] = fn
}

// RegisterProperty exposes a property of the parent under name.
func (a *Accessor) RegisterProperty(name string, p Property) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.props[name] = p
}

// AddTypeScope adds a scope searched by SetValueTyped after the built-in one.
func (a *Accessor) AddTypeScope(scope TypeScope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scopes = append(a.scopes, scope)
}

// CallAction posts the named action to the dispatcher. It reports whether
// the action is registered.
func (a *Accessor) CallAction(name string) bool {
	a.mu.RLock()
	fn, ok := a.actions[name]
	a.mu.RUnlock()
	if !ok {
		log.Debugf("action %q not registered", name)
		return false
	}
	if fn != nil {
		a.d.Post(func() { a.runAction(name, fn) })
	}
	return true
}

// CallActionWithParameters posts the named action with args.
func (a *Accessor) CallActionWithParameters(name string, args []string) bool {
	a.mu.RLock()
	fn, ok := a.actionsParams[name]
	a.mu.RUnlock()
	if !ok {
		log.Debugf("action %q not registered", name)
		return false
	}
	if fn != nil {
		args = append([]string(nil), args...)
		a.d.Post(func() { a.runAction(name, func() { fn(args) }) })
	}
	return true
}

// runAction runs a posted action, reporting a panic as an internal error.
func (a *Accessor) runAction(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.report(fmt.Errorf("action %s: panic: %v", name, r))
		}
	}()
	fn()
}

// CallEvent runs the named event on the dispatcher and waits for its result.
// It reports false when no such event is registered or the handler failed.
func (a *Accessor) CallEvent(ctx context.Context, name string, args []string) (string, bool) {
	a.mu.RLock()
	fn, ok := a.events[name]
	a.mu.RUnlock()
	if !ok || fn == nil {
		log.Debugf("event %q not registered", name)
		return "", false
	}

	var result string
	err := a.d.Do(ctx, func() error {
		var err error
		result, err = fn(ctx, args)
		return err
	})
	if err != nil {
		a.report(fmt.Errorf("event %s: %w", name, err))
		return "", false
	}
	return result, true
}

// GetValue returns the named property, or nil when it is unknown or the
// parent is gone.
func (a *Accessor) GetValue(ctx context.Context, name string) any {
	prop, ok := a.property(name)
	if !ok || prop.Get == nil {
		return nil
	}

	var result any
	err := a.d.Do(ctx, func() error {
		if _, alive := a.parent(); !alive {
			return nil
		}
		result = prop.Get()
		return nil
	})
	if err != nil {
		a.report(fmt.Errorf("get %s: %w", name, err))
		return nil
	}
	return result
}

// GetJSONValue returns the named property as JSON, or "{}" when it is
// unavailable.
func (a *Accessor) GetJSONValue(ctx context.Context, name string) string {
	v := a.GetValue(ctx, name)
	if v == nil {
		return "{}"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		a.report(fmt.Errorf("get %s: %w", name, err))
		return "{}"
	}
	return string(raw)
}

// GetChildValue returns a member of the named property, addressed by its
// JSON field name. Dotted paths reach nested members.
func (a *Accessor) GetChildValue(ctx context.Context, name, child string) any {
	v := a.GetValue(ctx, name)
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		a.report(fmt.Errorf("get %s.%s: %w", name, child, err))
		return nil
	}
	r := gjson.GetBytes(raw, child)
	if !r.Exists() {
		return nil
	}
	return r.Value()
}

// SetValue writes the named property. String values are de-sanitized first.
func (a *Accessor) SetValue(ctx context.Context, name string, value any) {
	if s, ok := value.(string); ok {
		value = Desanitize(s)
	}
	a.set(ctx, name, func() (any, bool) { return value, true })
}

// SetValueTyped decodes value as the named type and writes it. Unknown
// type names leave the property untouched.
func (a *Accessor) SetValueTyped(ctx context.Context, name, value, typeName string) {
	a.set(ctx, name, func() (any, bool) {
		decode := a.lookupType(typeName)
		if decode == nil {
			log.Debugf("type %q not found for %s", typeName, name)
			return nil, false
		}
		v, err := decode([]byte(value))
		if err != nil {
			a.report(fmt.Errorf("set %s: %w", name, err))
			return nil, false
		}
		return v, true
	})
}

func (a *Accessor) set(ctx context.Context, name string, produce func() (any, bool)) {
	prop, ok := a.property(name)
	if !ok || prop.Set == nil {
		log.Debugf("property %q not writable", name)
		return
	}

	err := a.d.Do(ctx, func() error {
		parent, alive := a.parent()
		if !alive {
			return nil
		}
		v, ok := produce()
		if !ok {
			return nil
		}

		parent.SetSettingValue(true)
		defer parent.SetSettingValue(false)
		return prop.Set(v)
	})
	if err != nil {
		a.report(fmt.Errorf("set %s: %w", name, err))
	}
}

func (a *Accessor) property(name string) (Property, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.props[name]
	return p, ok
}

func (a *Accessor) lookupType(name string) TypeDecoder {
	if d, ok := builtinTypes[name]; ok {
		return d
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, scope := range a.scopes {
		if d, ok := scope[name]; ok {
			return d
		}
	}
	return nil
}

func (a *Accessor) report(err error) {
	a.mu.RLock()
	fn := a.onError
	a.mu.RUnlock()

	log.Debugf("accessor: %s", err)
	if fn != nil {
		fn(err)
	}
}

// Dispose clears every registration. The accessor may be populated again
// for a new load cycle.
func (a *Accessor) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.actions)
	clear(a.actionsParams)
	clear(a.events)
}
