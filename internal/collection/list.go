// Package collection provides an ordered list that reports structural edits.
//
// Every edit bumps a version counter. Subscribers are told what changed and
// at which version, and read the full current state with Snapshot.
package collection

import (
	"fmt"
	"sync"
)

// ChangeKind names a structural edit.
type ChangeKind int

const (
	Inserted ChangeKind = iota
	Removed
	Replaced
	Cleared
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	case Cleared:
		return "cleared"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes one edit. Index is -1 for Cleared and Reset.
type Change struct {
	Kind    ChangeKind
	Index   int
	Version uint64
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// List is a goroutine-safe ordered collection.
type List[T any] struct {
	mu      sync.Mutex
	items   []T
	version uint64

	subMu  sync.Mutex
	subs   []subscriber
	nextID uint64
}

// New returns a list holding a copy of items.
func New[T any](items ...T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Version returns the number of edits applied so far.
func (l *List[T]) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// Snapshot returns a copy of the items and the version they belong to.
func (l *List[T]) Snapshot() ([]T, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...), l.version
}

// At returns the item at i.
func (l *List[T]) At(i int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, false
	}
	return l.items[i], true
}

// Append adds v at the end.
func (l *List[T]) Append(v T) {
	l.mu.Lock()
	l.items = append(l.items, v)
	c := l.bump(Inserted, len(l.items)-1)
	l.mu.Unlock()
	l.notify(c)
}

// Insert places v at index i, shifting later items.
func (l *List[T]) Insert(i int, v T) error {
	l.mu.Lock()
	if i < 0 || i > len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return fmt.Errorf("collection: insert index %d out of range [0,%d]", i, n)
	}
	var zero T
	l.items = append(l.items, zero)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	c := l.bump(Inserted, i)
	l.mu.Unlock()
	l.notify(c)
	return nil
}

// RemoveAt deletes the item at index i.
func (l *List[T]) RemoveAt(i int) error {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return fmt.Errorf("collection: remove index %d out of range [0,%d)", i, n)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	c := l.bump(Removed, i)
	l.mu.Unlock()
	l.notify(c)
	return nil
}

// Set replaces the item at index i.
func (l *List[T]) Set(i int, v T) error {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return fmt.Errorf("collection: set index %d out of range [0,%d)", i, n)
	}
	l.items[i] = v
	c := l.bump(Replaced, i)
	l.mu.Unlock()
	l.notify(c)
	return nil
}

// Clear removes every item.
func (l *List[T]) Clear() {
	l.mu.Lock()
	l.items = nil
	c := l.bump(Cleared, -1)
	l.mu.Unlock()
	l.notify(c)
}

// Reset replaces the whole content with a copy of items in one edit.
func (l *List[T]) Reset(items []T) {
	l.mu.Lock()
	l.items = append([]T(nil), items...)
	c := l.bump(Reset, -1)
	l.mu.Unlock()
	l.notify(c)
}

// bump must be called with mu held.
func (l *List[T]) bump(kind ChangeKind, index int) Change {
	l.version++
	return Change{Kind: kind, Index: index, Version: l.version}
}

// Subscribe registers fn for every later edit. fn runs on the goroutine that
// made the edit, after the list lock is released.
func (l *List[T]) Subscribe(fn func(Change)) (unsubscribe func()) {
	l.subMu.Lock()
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber{id: id, fn: fn})
	l.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.subMu.Lock()
			defer l.subMu.Unlock()
			for i, s := range l.subs {
				if s.id == id {
					l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (l *List[T]) notify(c Change) {
	l.subMu.Lock()
	subs := append([]subscriber(nil), l.subs...)
	l.subMu.Unlock()

	for _, s := range subs {
		s.fn(c)
	}
}
