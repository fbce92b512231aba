// Package dispatch provides the host's serial execution context.
//
// Every callback that arrives from the editor view is marshaled onto a
// Dispatcher before it touches host state, the same way UI frameworks funnel
// work onto their UI thread.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("monaco.dispatch")

// ErrStopped is returned by Do when the dispatcher no longer runs work.
var ErrStopped = errors.New("dispatch: dispatcher stopped")

// Dispatcher serializes all posted work through a single goroutine.
// The queue is unbounded so that work running on the dispatcher may post
// more work without blocking itself.
type Dispatcher struct {
	mu      sync.Mutex
	pending []func()
	stopped bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// New creates a Dispatcher and starts the processing goroutine.
func New() *Dispatcher {
	d := &Dispatcher{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

// loop drains posted work in FIFO order until Stop is called.
func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case <-d.wake:
		case <-d.quit:
			return
		}

		for {
			fn, ok := d.next()
			if !ok {
				break
			}
			run(fn)
		}
	}
}

func (d *Dispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return nil, false
	}
	fn := d.pending[0]
	d.pending[0] = nil
	d.pending = d.pending[1:]
	return fn, true
}

// run executes fn and keeps the loop alive if it panics. Callers that care
// about panics go through Do, which converts them to errors.
func run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warningf("posted work panicked: %v", r)
		}
	}()
	fn()
}

// Post enqueues fn without waiting for it. It reports false when the
// dispatcher has been stopped.
func (d *Dispatcher) Post(fn func()) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.pending = append(d.pending, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Do submits fn for execution on the dispatcher goroutine and blocks until it
// completes or ctx ends. Panics inside fn are returned as errors.
//
// Do must not be called from work already running on the dispatcher.
func (d *Dispatcher) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	posted := d.Post(func() {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("dispatch: panic: %v", r)
				}
			}()
			err = fn()
		}()
		result <- err
	})
	if !posted {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		// The loop may have run our work right before quitting.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}

// Stop shuts down the dispatcher. Work that has not started is discarded.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.pending = nil
	d.mu.Unlock()

	close(d.quit)
	<-d.done
}
