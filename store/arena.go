package store

import (
	"math"
)

// Arena is an append-only container of one entity type addressed by index.
// Indices are dense, start at 0 and are never reused.
type Arena[I Index, T any] struct {
	entities []T
}

// NewArena creates an empty arena.
func NewArena[I Index, T any]() *Arena[I, T] {
	return &Arena[I, T]{}
}

// Alloc stores entity and returns its index.
func (a *Arena[I, T]) Alloc(entity T) I {
	n := len(a.entities)
	if uint64(n) > math.MaxUint32 {
		panic("store: arena index space exhausted")
	}
	a.entities = append(a.entities, entity)
	return I(n)
}

// Get returns a copy of the entity at idx.
func (a *Arena[I, T]) Get(idx I) (T, bool) {
	if uint64(idx) >= uint64(len(a.entities)) {
		var zero T
		return zero, false
	}
	return cloneEntity(a.entities[idx]), true
}

// GetMut returns a pointer to the entity at idx.
// The pointer is invalidated by the next Alloc.
func (a *Arena[I, T]) GetMut(idx I) (*T, bool) {
	if uint64(idx) >= uint64(len(a.entities)) {
		return nil, false
	}
	return &a.entities[idx], true
}

// Len returns the number of stored entities.
func (a *Arena[I, T]) Len() int {
	return len(a.entities)
}

// Each calls fn for every entity in index order until fn returns false.
func (a *Arena[I, T]) Each(fn func(I, T) bool) {
	for i := range a.entities {
		if !fn(I(i), a.entities[i]) {
			return
		}
	}
}

// Cloner is implemented by entities whose copies must not share state.
type Cloner[T any] interface {
	Clone() T
}

func cloneEntity[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
