package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQueueClosed completes operations enqueued after Close.
var ErrQueueClosed = errors.New("bridge: script queue closed")

type queuedOp struct {
	op   func(context.Context) error
	done chan error
}

// ScriptQueue runs asynchronous operations one at a time in submission
// order. Decoration updates go through it so that the style install and the
// decoration apply of one snapshot reach the view before the next snapshot
// starts.
type ScriptQueue struct {
	name string

	mu      sync.Mutex
	pending []queuedOp
	running bool
	closed  bool
}

// NewScriptQueue returns an empty queue. name is only used in logs.
func NewScriptQueue(name string) *ScriptQueue {
	return &ScriptQueue{name: name}
}

// Enqueue schedules op. The returned channel receives op's error (nil on
// success) and is then closed.
func (q *ScriptQueue) Enqueue(op func(context.Context) error) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		done <- ErrQueueClosed
		close(done)
		return done
	}
	q.pending = append(q.pending, queuedOp{op: op, done: done})
	start := !q.running
	q.running = true
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return done
}

// Len returns the number of operations waiting to start.
func (q *ScriptQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further operations. Queued operations still run.
func (q *ScriptQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

func (q *ScriptQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending[0] = queuedOp{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		err := q.execute(next.op)
		if err != nil {
			log.Debugf("%s queue: operation failed: %s", q.name, err)
		}
		next.done <- err
		close(next.done)
	}
}

func (q *ScriptQueue) execute(op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s queue: panic: %v", q.name, r)
		}
	}()
	return op(context.Background())
}
