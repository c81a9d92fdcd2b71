package memory

import (
	"sync/atomic"

	"github.com/wippyai/wasm-store/errors"
)

// PageSize is the size of a WebAssembly page in bytes.
const PageSize = 65536

// PagesToBytes converts a page count to a byte length.
func PagesToBytes(pages uint32) uint64 {
	return uint64(pages) * PageSize
}

// BytesToPages converts a byte length to a whole page count, rounding down.
func BytesToPages(n uint64) uint32 {
	return uint32(n / PageSize)
}

var (
	// ErrInvalidLength matches errors for rejected allocation lengths.
	ErrInvalidLength = &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindInvalidInput}
	// ErrAllocation matches errors reported by the platform allocator.
	ErrAllocation = &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindAllocation}
	// ErrUnsupported is matched on platforms without anonymous mappings.
	ErrUnsupported = &errors.Error{Phase: errors.PhaseAlloc, Kind: errors.KindUnsupported}
	// ErrOutOfBounds matches View accesses outside the buffer.
	ErrOutOfBounds = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}
)

// Observer receives notifications about mapping lifecycle events.
type Observer interface {
	OnMap(size int)
	OnUnmap(size int)
	OnMapFailed(size int, err error)
}

type nopObserver struct{}

func (nopObserver) OnMap(int)              {}
func (nopObserver) OnUnmap(int)            {}
func (nopObserver) OnMapFailed(int, error) {}

// Stats is a snapshot of process-wide mapping counters.
//
//   - MappedBytes: bytes currently mapped by live buffers
//   - LiveMappings: mappings currently held
//   - Maps, Unmaps, Failures: cumulative counts
type Stats struct {
	MappedBytes  int64
	LiveMappings int64
	Maps         uint64
	Unmaps       uint64
	Failures     uint64
}

type atomicStats struct {
	MappedBytes  atomic.Int64
	LiveMappings atomic.Int64
	Maps         atomic.Uint64
	Unmaps       atomic.Uint64
	Failures     atomic.Uint64
}

var stats atomicStats

// ReadStats returns the current process-wide mapping counters.
func ReadStats() Stats {
	return Stats{
		MappedBytes:  stats.MappedBytes.Load(),
		LiveMappings: stats.LiveMappings.Load(),
		Maps:         stats.Maps.Load(),
		Unmaps:       stats.Unmaps.Load(),
		Failures:     stats.Failures.Load(),
	}
}
