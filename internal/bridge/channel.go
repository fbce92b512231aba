package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Channel is the remote invocation channel. It never returns errors to its
// callers: operations issued before the bridge is Ready are dropped, and
// faults are reported once through the internal error handler while the
// caller receives an empty result.
type Channel struct {
	state *State

	mu      sync.RWMutex
	view    ScriptView
	onError func(error)
}

// NewChannel creates a channel gated by state.
func NewChannel(state *State) *Channel {
	return &Channel{state: state}
}

// Attach sets the view invocations are sent to.
func (c *Channel) Attach(view ScriptView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
}

// OnInternalError sets the handler that receives marshaling and execution
// faults. It replaces any previous handler.
func (c *Channel) OnInternalError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Invoke calls method in the view with args serialized as JSON.
func (c *Channel) Invoke(ctx context.Context, method string, args ...any) string {
	result, _ := c.invoke(ctx, method, args)
	return result
}

// InvokeRaw calls method with arguments that are already JSON text.
func (c *Channel) InvokeRaw(ctx context.Context, method string, args ...string) string {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw[i] = json.RawMessage(a)
	}
	result, _ := c.send(ctx, method, func(view ScriptView) (string, error) {
		return view.InvokeScript(ctx, method, raw)
	})
	return result
}

// Run evaluates a script fragment in the view.
func (c *Channel) Run(ctx context.Context, script string) string {
	result, _ := c.run(ctx, script)
	return result
}

// InvokeAs calls method and decodes the JSON result into T. An empty
// result or any fault yields the zero value.
func InvokeAs[T any](ctx context.Context, c *Channel, method string, args ...any) T {
	result, ok := c.invoke(ctx, method, args)
	return decodeResult[T](c, method, result, ok)
}

// RunAs evaluates script and decodes the JSON result into T.
func RunAs[T any](ctx context.Context, c *Channel, script string) T {
	result, ok := c.run(ctx, script)
	return decodeResult[T](c, "run", result, ok)
}

func (c *Channel) invoke(ctx context.Context, method string, args []any) (string, bool) {
	return c.send(ctx, method, func(view ScriptView) (string, error) {
		raw, err := marshalArgs(args)
		if err != nil {
			return "", fmt.Errorf("marshal arguments for %s: %w", method, err)
		}
		return view.InvokeScript(ctx, method, raw)
	})
}

func (c *Channel) run(ctx context.Context, script string) (string, bool) {
	return c.send(ctx, "run", func(view ScriptView) (string, error) {
		return view.RunScript(ctx, script)
	})
}

// send applies the not-ready and fault policies around one round trip.
func (c *Channel) send(ctx context.Context, what string, call func(ScriptView) (string, error)) (result string, ok bool) {
	c.mu.RLock()
	view := c.view
	c.mu.RUnlock()

	if !c.state.Ready() || view == nil {
		log.Debugf("dropping %s: bridge is %s", what, c.state.Phase())
		return "", false
	}

	defer func() {
		if r := recover(); r != nil {
			c.report(fmt.Errorf("%s: panic: %v", what, r))
			result, ok = "", false
		}
	}()

	result, err := call(view)
	if err != nil {
		c.report(fmt.Errorf("%s: %w", what, err))
		return "", false
	}
	return result, true
}

func (c *Channel) report(err error) {
	c.mu.RLock()
	fn := c.onError
	c.mu.RUnlock()

	log.Debugf("internal exception: %s", err)
	if fn != nil {
		fn(err)
	}
}

func marshalArgs(args []any) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		raw[i] = b
	}
	return raw, nil
}

func decodeResult[T any](c *Channel, what, result string, ok bool) T {
	var v T
	if !ok || result == "" {
		return v
	}
	if err := json.Unmarshal([]byte(result), &v); err != nil {
		c.report(fmt.Errorf("%s: decode result: %w", what, err))
		var zero T
		return zero
	}
	return v
}
