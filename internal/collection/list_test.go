package collection

import (
	"reflect"
	"testing"
)

func TestEditsBumpVersion(t *testing.T) {
	l := New(1, 2)
	var changes []Change
	unsubscribe := l.Subscribe(func(c Change) { changes = append(changes, c) })
	defer unsubscribe()

	l.Append(3)
	if err := l.Insert(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.Set(1, 10); err != nil {
		t.Fatal(err)
	}
	if err := l.RemoveAt(3); err != nil {
		t.Fatal(err)
	}

	items, version := l.Snapshot()
	if !reflect.DeepEqual(items, []int{0, 10, 2}) {
		t.Fatalf("items = %v", items)
	}
	if version != 4 {
		t.Fatalf("version = %d, want 4", version)
	}

	want := []Change{
		{Kind: Inserted, Index: 2, Version: 1},
		{Kind: Inserted, Index: 0, Version: 2},
		{Kind: Replaced, Index: 1, Version: 3},
		{Kind: Removed, Index: 3, Version: 4},
	}
	if !reflect.DeepEqual(changes, want) {
		t.Fatalf("changes = %+v\nwant %+v", changes, want)
	}
}

func TestOutOfRangeEditsDoNotBump(t *testing.T) {
	l := New("a")
	calls := 0
	l.Subscribe(func(Change) { calls++ })

	if err := l.Insert(5, "x"); err == nil {
		t.Error("Insert out of range returned nil")
	}
	if err := l.RemoveAt(1); err == nil {
		t.Error("RemoveAt out of range returned nil")
	}
	if err := l.Set(-1, "x"); err == nil {
		t.Error("Set out of range returned nil")
	}
	if calls != 0 || l.Version() != 0 {
		t.Fatalf("calls = %d version = %d, want 0/0", calls, l.Version())
	}
}

func TestClearAndReset(t *testing.T) {
	l := New("a", "b")
	var kinds []ChangeKind
	l.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	l.Reset([]string{"x"})
	l.Clear()

	if l.Len() != 0 {
		t.Fatalf("Len = %d after Clear", l.Len())
	}
	if !reflect.DeepEqual(kinds, []ChangeKind{Reset, Cleared}) {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New(1, 2, 3)
	items, _ := l.Snapshot()
	items[0] = 99
	if v, _ := l.At(0); v != 1 {
		t.Fatalf("At(0) = %d after mutating snapshot", v)
	}
}

func TestUnsubscribe(t *testing.T) {
	l := New[int]()
	calls := 0
	unsubscribe := l.Subscribe(func(Change) { calls++ })
	l.Append(1)
	unsubscribe()
	unsubscribe()
	l.Append(2)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
