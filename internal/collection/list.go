package collection

import "fmt"

// List is an observable ordered sequence.
type List[V any] struct {
	items []V
	subs  subscribers[int]
}

// NewList returns a list holding items.
func NewList[V any](items ...V) *List[V] {
	return &List[V]{items: append([]V(nil), items...)}
}

func (l *List[V]) Len() int   { return len(l.items) }
func (l *List[V]) At(i int) V { return l.items[i] }
func (l *List[V]) Items() []V { return append([]V(nil), l.items...) }

// Keys returns the indices 0..Len()-1.
func (l *List[V]) Keys() []int {
	keys := make([]int, len(l.items))
	for i := range keys {
		keys[i] = i
	}
	return keys
}

func (l *List[V]) Lookup(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// Append adds v at the end.
func (l *List[V]) Append(v V) { l.Insert(len(l.items), v) }

// Insert places v at index i, shifting later items.
func (l *List[V]) Insert(i int, v V) {
	l.check(i, len(l.items))
	l.items = append(l.items, v)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	l.subs.emit(Event[int]{Kind: Add, Key: i, New: v})
}

// RemoveAt deletes and returns the item at i.
func (l *List[V]) RemoveAt(i int) V {
	l.check(i, len(l.items)-1)
	old := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.subs.emit(Event[int]{Kind: Remove, Key: i, Old: old})
	return old
}

// Set replaces the item at i.
func (l *List[V]) Set(i int, v V) {
	l.check(i, len(l.items)-1)
	old := l.items[i]
	l.items[i] = v
	l.subs.emit(Event[int]{Kind: Replace, Key: i, Old: old, New: v})
}

// Move relocates the item at from so that it ends up at index to.
func (l *List[V]) Move(from, to int) {
	l.check(from, len(l.items)-1)
	l.check(to, len(l.items)-1)
	if from == to {
		return
	}
	v := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items, v)
	copy(l.items[to+1:], l.items[to:])
	l.items[to] = v
	l.subs.emit(Event[int]{Kind: Move, Key: from, To: to, New: v})
}

// Reset replaces the whole content and emits a single Reset.
func (l *List[V]) Reset(items ...V) {
	l.items = append(l.items[:0], items...)
	l.subs.emit(Event[int]{Kind: Reset})
}

func (l *List[V]) Subscribe(fn func(Event[int])) func() { return l.subs.add(fn) }

func (l *List[V]) check(i, hi int) {
	if i < 0 || i > hi {
		panic(fmt.Sprintf("collection: index %d out of range [0,%d]", i, hi))
	}
}
