package collection

// Entry is a key/value pair used to load a Map.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an insertion-ordered observable map.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
	subs   subscribers[K]
}

// NewMap returns an empty map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

func (m *Map[K, V]) Len() int { return len(m.keys) }

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K { return append([]K(nil), m.keys...) }

func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Lookup is Get with the value boxed.
func (m *Map[K, V]) Lookup(k K) (any, bool) {
	v, ok := m.values[k]
	if !ok {
		return nil, false
	}
	return v, true
}

// Set stores v under k, emitting Replace for an existing key and Add otherwise.
func (m *Map[K, V]) Set(k K, v V) {
	old, ok := m.values[k]
	m.values[k] = v
	if ok {
		m.subs.emit(Event[K]{Kind: Replace, Key: k, Old: old, New: v})
		return
	}
	m.keys = append(m.keys, k)
	m.subs.emit(Event[K]{Kind: Add, Key: k, New: v})
}

// Delete removes k and reports whether it was present.
func (m *Map[K, V]) Delete(k K) bool {
	old, ok := m.values[k]
	if !ok {
		return false
	}
	delete(m.values, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	m.subs.emit(Event[K]{Kind: Remove, Key: k, Old: old})
	return true
}

// Reset replaces the whole content and emits a single Reset.
func (m *Map[K, V]) Reset(entries ...Entry[K, V]) {
	m.keys = m.keys[:0]
	m.values = make(map[K]V, len(entries))
	for _, e := range entries {
		if _, dup := m.values[e.Key]; !dup {
			m.keys = append(m.keys, e.Key)
		}
		m.values[e.Key] = e.Value
	}
	m.subs.emit(Event[K]{Kind: Reset})
}

func (m *Map[K, V]) Subscribe(fn func(Event[K])) func() { return m.subs.add(fn) }
