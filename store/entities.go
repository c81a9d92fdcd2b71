package store

import (
	"github.com/wippyai/wasm-store/errors"
)

// noCopy may be embedded into structs which must not be copied after first use.
// See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Entities is the user-facing handle onto a Resolver.
// It belongs to the goroutine that created it and panics when used from any other,
// even over a ModeShared backend.
type Entities[I Index, T any] struct {
	_        noCopy
	resolver *Resolver[I, T]
	owner    uint64
}

// NewEntities binds r to the calling goroutine.
func NewEntities[I Index, T any](r *Resolver[I, T]) *Entities[I, T] {
	return &Entities[I, T]{
		resolver: r,
		owner:    goroutineID(),
	}
}

func (e *Entities[I, T]) checkGoroutine() {
	if g := goroutineID(); g != e.owner {
		raise(errors.WrongGoroutine(e.resolver.entity, e.owner, g))
	}
}

// Clone returns another handle onto the same arena, bound to the same goroutine.
func (e *Entities[I, T]) Clone() *Entities[I, T] {
	e.checkGoroutine()
	return &Entities[I, T]{
		resolver: e.resolver,
		owner:    e.owner,
	}
}

// StoreID returns the owning store.
func (e *Entities[I, T]) StoreID() StoreID {
	return e.resolver.StoreID()
}

// Alloc stores entity and returns its fresh index.
func (e *Entities[I, T]) Alloc(entity T) I {
	e.checkGoroutine()
	return e.resolver.Alloc(entity)
}

// Wrap mints the handle for an index of this store.
func (e *Entities[I, T]) Wrap(idx I) Stored[I] {
	return e.resolver.Wrap(idx)
}

// Resolve returns a copy of the entity h names.
func (e *Entities[I, T]) Resolve(h Stored[I]) T {
	e.checkGoroutine()
	return e.resolver.Resolve(h)
}

// Update runs fn with mutable access to the entity h names.
func (e *Entities[I, T]) Update(h Stored[I], fn func(*T)) {
	e.checkGoroutine()
	e.resolver.Update(h, fn)
}

// UpdateWith is ResolveMutWith through an outer handle.
func UpdateWith[I Index, T, R any](e *Entities[I, T], h Stored[I], fn func(*T) R) R {
	e.checkGoroutine()
	return ResolveMutWith(e.resolver, h, fn)
}

// Len returns the number of stored entities.
func (e *Entities[I, T]) Len() int {
	e.checkGoroutine()
	return e.resolver.Len()
}

// Each calls fn for every stored entity until fn returns false.
func (e *Entities[I, T]) Each(fn func(Stored[I], T) bool) {
	e.checkGoroutine()
	e.resolver.Each(fn)
}
