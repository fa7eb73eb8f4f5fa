package collection

import (
	"reflect"
	"testing"
)

func record[K comparable](o Observable[K]) *[]Event[K] {
	var events []Event[K]
	o.Subscribe(func(e Event[K]) { events = append(events, e) })
	return &events
}

func TestMapEvents(t *testing.T) {
	m := NewMap[string, int]()
	events := record[string](m)

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 5)
	if !m.Delete("b") {
		t.Error("Delete(b) = false, want true")
	}
	if m.Delete("missing") {
		t.Error("Delete(missing) = true, want false")
	}

	want := []Event[string]{
		{Kind: Add, Key: "a", New: 1},
		{Kind: Add, Key: "b", New: 2},
		{Kind: Replace, Key: "a", Old: 1, New: 5},
		{Kind: Remove, Key: "b", Old: 2},
	}
	if !reflect.DeepEqual(*events, want) {
		t.Errorf("events = %+v, want %+v", *events, want)
	}
	if v, ok := m.Get("a"); !ok || v != 5 {
		t.Errorf("Get(a) = %v,%v, want 5,true", v, ok)
	}
}

func TestMapKeysKeepInsertionOrder(t *testing.T) {
	m := NewMap[string, int]()
	for _, k := range []string{"z", "a", "m"} {
		m.Set(k, 0)
	}
	m.Set("a", 1)
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("Keys() = %v, want [z a m]", got)
	}
	if _, ok := m.Lookup("q"); ok {
		t.Error("Lookup(q) found a value")
	}
}

func TestMapReset(t *testing.T) {
	m := NewMap[int, string]()
	m.Set(9, "old")
	events := record[int](m)
	m.Reset(Entry[int, string]{1, "x"}, Entry[int, string]{2, "y"}, Entry[int, string]{1, "z"})
	if len(*events) != 1 || (*events)[0].Kind != Reset {
		t.Fatalf("events = %+v, want one reset", *events)
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Keys() = %v, want [1 2]", got)
	}
	if v, _ := m.Get(1); v != "z" {
		t.Errorf("Get(1) = %q, want z", v)
	}
}

func TestUnsubscribe(t *testing.T) {
	m := NewMap[string, int]()
	calls := 0
	stop := m.Subscribe(func(Event[string]) { calls++ })
	other := 0
	m.Subscribe(func(Event[string]) { other++ })
	m.Set("a", 1)
	stop()
	stop()
	m.Set("b", 1)
	if calls != 1 || other != 2 {
		t.Errorf("calls = %d/%d, want 1/2", calls, other)
	}
}

func TestListEvents(t *testing.T) {
	l := NewList("a", "b")
	events := record[int](l)

	l.Append("c")
	l.Insert(0, "z")
	l.Set(1, "A")
	l.Move(0, 3)
	if got := l.RemoveAt(1); got != "b" {
		t.Errorf("RemoveAt(1) = %q, want b", got)
	}

	if got := l.Items(); !reflect.DeepEqual(got, []string{"A", "c", "z"}) {
		t.Errorf("Items() = %v, want [A c z]", got)
	}
	want := []Event[int]{
		{Kind: Add, Key: 2, New: "c"},
		{Kind: Add, Key: 0, New: "z"},
		{Kind: Replace, Key: 1, Old: "a", New: "A"},
		{Kind: Move, Key: 0, To: 3, New: "z"},
		{Kind: Remove, Key: 1, Old: "b"},
	}
	if !reflect.DeepEqual(*events, want) {
		t.Errorf("events = %+v, want %+v", *events, want)
	}
}

func TestListMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     []int
	}{
		{0, 3, []int{1, 2, 3, 0}},
		{3, 0, []int{3, 0, 1, 2}},
		{1, 2, []int{0, 2, 1, 3}},
		{2, 2, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		l := NewList(0, 1, 2, 3)
		l.Move(tt.from, tt.to)
		if got := l.Items(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Move(%d,%d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestListOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RemoveAt on empty list did not panic")
		}
	}()
	NewList[int]().RemoveAt(0)
}

func TestKindString(t *testing.T) {
	if got := Replace.String(); got != "replace" {
		t.Errorf("Replace.String() = %q", got)
	}
	if got := Kind(42).String(); got != "kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
