package store

import (
	"github.com/wippyai/wasm-store/errors"
)

// borrow flag values: 0 free, n > 0 shared readers, exclusive when -1.
const exclusive = -1

// LocalBackend is an arena for use from a single goroutine.
// Any number of handles may alias it; it enforces that a mutable access never
// overlaps another access, panicking on conflict instead of blocking.
type LocalBackend[I Index, T any] struct {
	arena  *Arena[I, T]
	entity string
	borrow int
}

// NewLocalBackend creates an empty single-owner backend.
func NewLocalBackend[I Index, T any](entity string) *LocalBackend[I, T] {
	return &LocalBackend[I, T]{
		arena:  NewArena[I, T](),
		entity: entity,
	}
}

func (b *LocalBackend[I, T]) held() string {
	if b.borrow == exclusive {
		return "mutably"
	}
	return "immutably"
}

func (b *LocalBackend[I, T]) borrowShared() {
	if b.borrow == exclusive {
		raise(errors.BorrowConflict(b.entity, "immutably", b.held()))
	}
	b.borrow++
}

func (b *LocalBackend[I, T]) borrowExclusive() {
	if b.borrow != 0 {
		raise(errors.BorrowConflict(b.entity, "mutably", b.held()))
	}
	b.borrow = exclusive
}

// Alloc stores entity and returns its index.
func (b *LocalBackend[I, T]) Alloc(entity T) I {
	b.borrowExclusive()
	defer func() { b.borrow = 0 }()
	return b.arena.Alloc(entity)
}

// Get returns a copy of the entity at idx.
func (b *LocalBackend[I, T]) Get(idx I) (T, bool) {
	b.borrowShared()
	defer func() { b.borrow-- }()
	return b.arena.Get(idx)
}

// WithMut runs fn with the entity at idx.
// The flag is restored even if fn panics.
func (b *LocalBackend[I, T]) WithMut(idx I, fn func(*T)) bool {
	b.borrowExclusive()
	defer func() { b.borrow = 0 }()

	e, ok := b.arena.GetMut(idx)
	if !ok {
		return false
	}
	fn(e)
	return true
}

// Len returns the number of stored entities.
func (b *LocalBackend[I, T]) Len() int {
	return b.arena.Len()
}

// Each iterates over all entities under a shared borrow.
func (b *LocalBackend[I, T]) Each(fn func(I, T) bool) {
	b.borrowShared()
	defer func() { b.borrow-- }()
	b.arena.Each(fn)
}
