package bridge

import (
	"context"
	"sync"

	"go-monaco-bridge/internal/collection"
)

// CollectionBridge mirrors a host list into the view. Each edit enqueues one
// update carrying the full snapshot at enqueue time; there is no diffing.
type CollectionBridge[T any] struct {
	list  *collection.List[T]
	queue *ScriptQueue
	apply func(ctx context.Context, snapshot []T) error

	mu          sync.Mutex
	last        uint64
	sent        bool
	unsubscribe func()
}

// NewCollectionBridge connects list to apply through queue. Call Attach to
// start listening.
func NewCollectionBridge[T any](list *collection.List[T], queue *ScriptQueue, apply func(ctx context.Context, snapshot []T) error) *CollectionBridge[T] {
	return &CollectionBridge[T]{list: list, queue: queue, apply: apply}
}

// Attach subscribes to the list. Attaching twice is a no-op.
func (b *CollectionBridge[T]) Attach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unsubscribe != nil {
		return
	}
	b.unsubscribe = b.list.Subscribe(b.changed)
}

// Detach stops listening. Updates already queued still run.
func (b *CollectionBridge[T]) Detach() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.sent = false
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Sync enqueues the current snapshot regardless of version.
func (b *CollectionBridge[T]) Sync() <-chan error {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot, version := b.list.Snapshot()
	b.last, b.sent = version, true
	return b.enqueue(snapshot)
}

func (b *CollectionBridge[T]) changed(collection.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Snapshot under mu so concurrent editors enqueue in version order.
	snapshot, version := b.list.Snapshot()
	if b.sent && version <= b.last {
		return
	}
	b.last, b.sent = version, true
	b.enqueue(snapshot)
}

func (b *CollectionBridge[T]) enqueue(snapshot []T) <-chan error {
	return b.queue.Enqueue(func(ctx context.Context) error {
		return b.apply(ctx, snapshot)
	})
}
