// Package collection provides observable keyed maps and lists. Every mutation
// is reported to subscribers as an Event so that views can follow the data
// incrementally instead of rebuilding.
package collection

import "fmt"

// Kind is the type of change an Event describes.
type Kind int

const (
	Add Kind = iota
	Remove
	Replace
	Move
	Reset
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Move:
		return "move"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event describes one change. For lists Key is the index and To is the
// destination index of a Move; for maps To is unused.
type Event[K comparable] struct {
	Kind Kind
	Key  K
	To   K
	Old  any
	New  any
}

// Observable is the read side of a collection as seen by a binder.
type Observable[K comparable] interface {
	// Keys returns the keys in iteration order.
	Keys() []K
	Lookup(k K) (any, bool)
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(Event[K])) (unsubscribe func())
}

type subscribers[K comparable] struct {
	next int
	fns  []subscriber[K]
}

type subscriber[K comparable] struct {
	id int
	fn func(Event[K])
}

func (s *subscribers[K]) add(fn func(Event[K])) func() {
	id := s.next
	s.next++
	s.fns = append(s.fns, subscriber[K]{id: id, fn: fn})
	return func() {
		for i, sub := range s.fns {
			if sub.id == id {
				s.fns = append(s.fns[:i:i], s.fns[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers[K]) emit(e Event[K]) {
	for _, sub := range s.fns {
		sub.fn(e)
	}
}
