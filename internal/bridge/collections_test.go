package bridge

import (
	"context"
	"sync"
	"testing"

	"go-monaco-bridge/internal/collection"
	"go-monaco-bridge/internal/monaco"
)

type recorder[T any] struct {
	mu        sync.Mutex
	snapshots [][]T
}

func (r *recorder[T]) apply(_ context.Context, snapshot []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *recorder[T]) all() [][]T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]T(nil), r.snapshots...)
}

// flush waits for everything queued so far.
func flush(t *testing.T, q *ScriptQueue) {
	t.Helper()
	if err := <-q.Enqueue(func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
}

func TestResetToEmptyQueuesOneEmptySnapshot(t *testing.T) {
	d1 := styled(1, monaco.CSSStyle{BackgroundColor: "yellow"})
	d2 := styled(2, monaco.CSSStyle{BackgroundColor: "red"})
	list := collection.New(d1, d2)

	broker := NewStyleBroker()
	broker.AssociateStyles([]monaco.DecorationRequest{d1, d2})
	before := broker.Styles()

	q := NewScriptQueue("decorations")
	var rec recorder[monaco.DecorationRequest]
	var newRules bool
	b := NewCollectionBridge(list, q, func(ctx context.Context, snapshot []monaco.DecorationRequest) error {
		newRules = broker.AssociateStyles(snapshot) || newRules
		return rec.apply(ctx, snapshot)
	})
	b.Attach()
	defer b.Detach()

	list.Reset(nil)
	flush(t, q)

	got := rec.all()
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("snapshots = %v, want one empty snapshot", got)
	}
	if newRules {
		t.Fatal("empty snapshot added style rules")
	}
	if broker.Styles() != before {
		t.Fatal("Styles changed after reset to empty")
	}
}

func TestEachEditCarriesFullSnapshot(t *testing.T) {
	list := collection.New[int]()
	q := NewScriptQueue("markers")
	var rec recorder[int]
	b := NewCollectionBridge(list, q, rec.apply)
	b.Attach()
	defer b.Detach()

	list.Append(1)
	list.Append(2)
	_ = list.RemoveAt(0)
	flush(t, q)

	got := rec.all()
	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	last := got[len(got)-1]
	if len(last) != 1 || last[0] != 2 {
		t.Fatalf("last snapshot = %v, want [2]", last)
	}
}

func TestConcurrentEditsConverge(t *testing.T) {
	list := collection.New[int]()
	q := NewScriptQueue("decorations")
	var rec recorder[int]
	b := NewCollectionBridge(list, q, rec.apply)
	b.Attach()
	defer b.Detach()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				list.Append(g*100 + i)
			}
		}(g)
	}
	wg.Wait()
	flush(t, q)

	got := rec.all()
	final, _ := list.Snapshot()
	last := got[len(got)-1]
	if len(last) != len(final) {
		t.Fatalf("last applied snapshot has %d items, list has %d", len(last), len(final))
	}
	for i := 1; i < len(got); i++ {
		if len(got[i]) <= len(got[i-1]) {
			t.Fatalf("snapshot %d (%d items) is not newer than snapshot %d (%d items)", i, len(got[i]), i-1, len(got[i-1]))
		}
	}
}

func TestDetachedBridgeIgnoresEdits(t *testing.T) {
	list := collection.New[int]()
	q := NewScriptQueue("markers")
	var rec recorder[int]
	b := NewCollectionBridge(list, q, rec.apply)

	list.Append(1)
	b.Attach()
	b.Attach()
	list.Append(2)
	b.Detach()
	list.Append(3)
	flush(t, q)

	if got := rec.all(); len(got) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(got))
	}

	<-b.Sync()
	got := rec.all()
	if len(got) != 2 || len(got[1]) != 3 {
		t.Fatalf("Sync snapshot = %v", got[len(got)-1])
	}
}
