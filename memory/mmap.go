package memory

import (
	stderrors "errors"
	"math"

	"github.com/wippyai/wasm-store/errors"
)

// mmap is one anonymous read-write mapping of a fixed length.
// It is never resized in place, never copied, and is the sole owner of its
// pages: release unmaps them and is the only place that does.
type mmap struct {
	data  []byte
	unmap func([]byte) error
}

// newMmap maps length bytes of zeroed, read-write anonymous memory.
//
// Returns an error if:
//   - length is negative (it does not fit the platform's signed size)
//   - length is 0
//   - the platform refuses the mapping (almost certainly out of memory)
func newMmap(length int) (*mmap, error) {
	if length < 0 {
		return nil, errors.InvalidLength(errors.PhaseAlloc, length, "length must not exceed the maximum signed size")
	}
	if length == 0 {
		return nil, errors.InvalidLength(errors.PhaseAlloc, length, "length must be greater than 0")
	}

	data, unmap, err := osMapAnon(length)
	if err != nil {
		stats.Failures.Add(1)
		var ue *errors.Error
		if stderrors.As(err, &ue) {
			return nil, ue
		}
		return nil, errors.AllocationFailed(errors.PhaseAlloc, length, err)
	}

	stats.Maps.Add(1)
	stats.LiveMappings.Add(1)
	stats.MappedBytes.Add(int64(length))

	return &mmap{data: data, unmap: unmap}, nil
}

// checkLength converts a wazero-sized length to int, rejecting values
// beyond the signed range.
func checkLength(n uint64) (int, error) {
	if n > math.MaxInt {
		return 0, errors.InvalidLength(errors.PhaseAlloc, n, "length must not exceed the maximum signed size")
	}
	return int(n), nil
}

func (m *mmap) bytes() []byte {
	return m.data
}

func (m *mmap) len() int {
	return len(m.data)
}

// release unmaps the pages. Calling it again is a no-op.
func (m *mmap) release() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil

	stats.Unmaps.Add(1)
	stats.LiveMappings.Add(-1)
	stats.MappedBytes.Add(-int64(len(data)))

	return m.unmap(data)
}
