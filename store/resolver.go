package store

import (
	"github.com/wippyai/wasm-store/errors"
)

// Resolver is an arena bound to the store that owns it.
// Every handle is checked against that store before the arena is indexed.
type Resolver[I Index, T any] struct {
	backend  Backend[I, T]
	observer Observer
	entity   string
	store    StoreID
}

// NewResolver binds backend to store. observer may be nil.
func NewResolver[I Index, T any](store StoreID, entity string, backend Backend[I, T], observer Observer) *Resolver[I, T] {
	return &Resolver[I, T]{
		backend:  backend,
		observer: observer,
		entity:   entity,
		store:    store,
	}
}

// StoreID returns the owning store.
func (r *Resolver[I, T]) StoreID() StoreID {
	return r.store
}

// Alloc stores entity and returns its fresh index.
func (r *Resolver[I, T]) Alloc(entity T) I {
	idx := r.backend.Alloc(entity)
	r.notify(EventAllocated, idx)
	return idx
}

// Wrap mints the handle for an index of this store.
func (r *Resolver[I, T]) Wrap(idx I) Stored[I] {
	return NewStored(r.store, idx)
}

func (r *Resolver[I, T]) unwrapStored(h Stored[I]) I {
	idx, ok := h.EntityIndex(r.store)
	if !ok {
		raise(errors.OwnerMismatch(r.entity, h, uint64(r.store)))
	}
	return idx
}

// Resolve returns a copy of the entity h names.
// It panics if h belongs to another store or names no entity.
func (r *Resolver[I, T]) Resolve(h Stored[I]) T {
	idx := r.unwrapStored(h)
	e, ok := r.backend.Get(idx)
	if !ok {
		raise(errors.EntityNotFound(r.entity, uint32(idx)))
	}
	r.notify(EventResolved, idx)
	return e
}

// Update runs fn with mutable access to the entity h names.
// The pointer must not be retained after fn returns.
func (r *Resolver[I, T]) Update(h Stored[I], fn func(*T)) {
	idx := r.unwrapStored(h)
	if !r.backend.WithMut(idx, fn) {
		raise(errors.EntityNotFound(r.entity, uint32(idx)))
	}
	r.notify(EventMutated, idx)
}

// ResolveMutWith runs fn with mutable access to the entity h names and
// returns fn's result. Changes made by fn persist.
func ResolveMutWith[I Index, T, R any](r *Resolver[I, T], h Stored[I], fn func(*T) R) R {
	var out R
	r.Update(h, func(e *T) {
		out = fn(e)
	})
	return out
}

// Len returns the number of stored entities.
func (r *Resolver[I, T]) Len() int {
	return r.backend.Len()
}

// Each calls fn with the handle and entity of every stored entity.
func (r *Resolver[I, T]) Each(fn func(Stored[I], T) bool) {
	r.backend.Each(func(idx I, e T) bool {
		return fn(r.Wrap(idx), e)
	})
}

func (r *Resolver[I, T]) notify(t EventType, idx I) {
	if r.observer == nil {
		return
	}
	r.observer.OnStoreEvent(Event{
		Type:   t,
		Entity: r.entity,
		Store:  r.store,
		Index:  uint32(idx),
	})
}
