// Package cache provides a thread-safe memo for results computed once per key.
package cache

import (
	"sync"
)

// Memo stores the result of a computation per key. Concurrent callers asking
// for the same key wait for the first computation instead of repeating it.
type Memo[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	hits    int
}

type entry[V any] struct {
	once  sync.Once
	value V
}

// New creates an empty Memo.
func New[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{entries: make(map[K]*entry[V])}
}

// Do returns the value for key, calling compute when the key is new. hit
// reports whether the value came from an earlier call.
func (m *Memo[K, V]) Do(key K, compute func() V) (value V, hit bool) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		e = &entry[V]{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.once.Do(func() { e.value = compute() })
	return e.value, ok
}

// Len returns the number of keys seen.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Hits returns how many Do calls were answered from the memo.
func (m *Memo[K, V]) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
