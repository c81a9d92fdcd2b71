package store

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/wippyai/wasm-store/errors"
)

// StoreID identifies a Store. IDs are process-unique; 0 is never issued.
type StoreID uint64

var lastStoreID atomic.Uint64

// NewStoreID returns a fresh StoreID.
func NewStoreID() StoreID {
	return StoreID(lastStoreID.Add(1))
}

func (id StoreID) String() string {
	return "StoreID(" + strconv.FormatUint(uint64(id), 10) + ")"
}

// Index is the constraint for arena index types.
type Index interface {
	~uint32
}

// Stored is a handle to an entity: its arena index plus the store that minted it.
// It is a plain value and may be copied freely.
type Stored[I Index] struct {
	index I
	store StoreID
}

// NewStored pairs index with store.
func NewStored[I Index](store StoreID, index I) Stored[I] {
	return Stored[I]{index: index, store: store}
}

// EntityIndex returns the index if the handle belongs to store.
func (s Stored[I]) EntityIndex(store StoreID) (I, bool) {
	if s.store != store {
		return 0, false
	}
	return s.index, true
}

// StoreID returns the store that minted the handle.
func (s Stored[I]) StoreID() StoreID {
	return s.store
}

func (s Stored[I]) String() string {
	return fmt.Sprintf("Stored { index: %d, store: %d }", uint32(s.index), uint64(s.store))
}

var (
	// ErrOwnerMismatch matches the panic value for a handle from another store.
	ErrOwnerMismatch = &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindOwnerMismatch}
	// ErrEntityNotFound matches the panic value for an index with no entity.
	ErrEntityNotFound = &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindNotFound}
	// ErrBorrowConflict matches the panic value for overlapping single-owner accesses.
	ErrBorrowConflict = &errors.Error{Phase: errors.PhaseBorrow, Kind: errors.KindBorrowConflict}
	// ErrWrongGoroutine matches the panic value for an outer handle used off its goroutine.
	ErrWrongGoroutine = &errors.Error{Phase: errors.PhaseBorrow, Kind: errors.KindAffinity}
	// ErrLimit matches memory growth past its maximum.
	ErrLimit = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindLimit}
	// ErrImmutable matches writes to immutable globals.
	ErrImmutable = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindImmutable}
)

// EventType identifies a store event.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventResolved
	EventMutated
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventResolved:
		return "resolved"
	case EventMutated:
		return "mutated"
	default:
		return "unknown"
	}
}

// Event describes one arena access.
type Event struct {
	Entity string
	Store  StoreID
	Index  uint32
	Type   EventType
}

// Observer receives store events. Implementations must not call back into the store.
type Observer interface {
	OnStoreEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnStoreEvent implements Observer.
func (f ObserverFunc) OnStoreEvent(e Event) {
	f(e)
}
