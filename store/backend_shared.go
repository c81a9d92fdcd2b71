package store

import (
	"sync"
)

// SharedBackend is an arena guarded by a reader/writer lock.
// Readers run concurrently; WithMut and Alloc are exclusive.
type SharedBackend[I Index, T any] struct {
	arena *Arena[I, T]
	mu    sync.RWMutex
}

// NewSharedBackend creates an empty concurrent backend.
func NewSharedBackend[I Index, T any]() *SharedBackend[I, T] {
	return &SharedBackend[I, T]{arena: NewArena[I, T]()}
}

// Alloc stores entity and returns its index.
func (b *SharedBackend[I, T]) Alloc(entity T) I {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arena.Alloc(entity)
}

// Get returns a copy of the entity at idx.
func (b *SharedBackend[I, T]) Get(idx I) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.arena.Get(idx)
}

// WithMut runs fn with the entity at idx while holding the write lock.
func (b *SharedBackend[I, T]) WithMut(idx I, fn func(*T)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.arena.GetMut(idx)
	if !ok {
		return false
	}
	fn(e)
	return true
}

// Len returns the number of stored entities.
func (b *SharedBackend[I, T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.arena.Len()
}

// Each iterates over all entities under the read lock.
func (b *SharedBackend[I, T]) Each(fn func(I, T) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.arena.Each(fn)
}
