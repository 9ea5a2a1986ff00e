// Package buffer provides a bounded ring for transcript display. The durable
// history lives on disk; this only caps what the UI keeps in memory.
package buffer

import "sync"

const defaultCapacity = 500

// Ring is a thread-safe fixed-capacity ring. Once full, each append evicts
// the oldest item.
type Ring[T any] struct {
	mu       sync.RWMutex
	data     []T
	capacity int
	size     int
	head     int
}

// New creates a ring with the given capacity. Non-positive capacities fall
// back to the default.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Ring[T]{
		data:     make([]T, capacity),
		capacity: capacity,
	}
}

// Append adds an item, evicting the oldest when full.
func (r *Ring[T]) Append(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[r.head] = item
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Items returns the buffered items oldest first.
func (r *Ring[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]T, 0, r.size)
	start := (r.head - r.size + r.capacity) % r.capacity
	for i := 0; i < r.size; i++ {
		items = append(items, r.data[(start+i)%r.capacity])
	}
	return items
}

// Len returns the number of buffered items.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Clear drops all items.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.size = 0
	r.head = 0
}
