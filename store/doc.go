// Package store provides store-scoped entity arenas and the handles that name
// their entries.
//
// Every entity lives in exactly one Store. A handle (Stored) pairs the entity's
// arena index with the StoreID of the store that minted it, and every
// resolution checks that pairing before indexing:
//
//	s := store.New(nil)
//	g := s.AllocGlobal(store.NewGlobal(api.ValueTypeI32, true, 42))
//
//	v := s.Globals().Resolve(g)                // copy of the entity
//	s.Globals().Update(g, func(e *store.GlobalEntity) {
//	    e.Bits++
//	})
//	old := store.UpdateWith(s.Globals(), g, func(e *store.GlobalEntity) uint64 {
//	    return e.Bits
//	})
//
// # Failure Policy
//
// Presenting a handle to a store that did not mint it, resolving an index with
// no entity, overlapping accesses on a single-owner arena, and using an outer
// handle from a foreign goroutine are programming errors. They panic with an
// *errors.Error value after logging it; they are never returned as errors.
//
// # Back-ends
//
// ModeLocal keeps the arena behind a runtime borrow flag: one goroutine, any
// number of handles, and at most one mutable access at a time. A conflicting
// access panics instead of blocking. ModeShared guards the arena with a
// sync.RWMutex so a Resolver can be shared between goroutines. Scoped mutation
// callbacks must not re-enter the same arena: ModeLocal panics on it and
// ModeShared would deadlock.
//
// # Goroutine Affinity
//
// Entities, the outer handle returned by Store.Globals and Store.Memories, is
// bound to the goroutine that created it regardless of back-end. An execution
// engine may keep raw slices obtained through an earlier resolution without
// re-validating them, and letting the handle move to another goroutine would
// race with those. Each call asserts the current goroutine and panics on mismatch.
// Entities must not be copied by value.
//
// The assertion reads the goroutine id from a runtime.Stack header, which
// costs on the order of a microsecond per call, Resolve included. Hot loops
// that resolve many handles should go through a single Each or UpdateWith.
package store
