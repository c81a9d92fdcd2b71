package memory

import (
	"sync"

	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"
)

// Allocator hands wazero linear memories backed by ByteBufs.
// Pass it to instantiation with experimental.WithMemoryAllocator.
type Allocator struct {
	opts     []Option
	memories []*LinearMemory
	mu       sync.Mutex
}

var _ experimental.MemoryAllocator = (*Allocator)(nil)

// NewAllocator creates an allocator whose buffers use opts.
func NewAllocator(opts ...Option) *Allocator {
	return &Allocator{opts: opts}
}

// Allocate implements experimental.MemoryAllocator.
// Nothing is mapped until wazero sizes the memory with Reallocate.
func (a *Allocator) Allocate(capacity, max uint64) experimental.LinearMemory {
	// New(0) holds no mapping and cannot fail.
	buf, _ := New(0, a.opts...)
	m := &LinearMemory{buf: buf, max: max}

	a.mu.Lock()
	a.memories = append(a.memories, m)
	a.mu.Unlock()

	Logger().Debug("linear memory allocated",
		zap.Uint64("cap", capacity),
		zap.Uint64("max", max))
	return m
}

// Memories returns the memories handed out so far, in allocation order.
func (a *Allocator) Memories() []*LinearMemory {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*LinearMemory, len(a.memories))
	copy(out, a.memories)
	return out
}

// Free releases every memory handed out by the allocator.
func (a *Allocator) Free() {
	for _, m := range a.Memories() {
		m.Free()
	}
}

// LinearMemory is a wazero linear memory living in a ByteBuf.
// Growth moves the memory to a new mapping, so slices obtained before a
// Reallocate must not be used after it.
type LinearMemory struct {
	buf *ByteBuf
	max uint64
}

var _ experimental.LinearMemory = (*LinearMemory)(nil)

// Reallocate implements experimental.LinearMemory.
// It returns nil when size exceeds the declared maximum or mapping fails.
func (m *LinearMemory) Reallocate(size uint64) []byte {
	if size > m.max {
		return nil
	}
	n, err := checkLength(size)
	if err != nil {
		return nil
	}
	if n != m.buf.Len() {
		if err := m.buf.Realloc(n); err != nil {
			Logger().Warn("linear memory reallocate failed",
				zap.Uint64("size", size),
				zap.Error(err))
			return nil
		}
	}
	return m.buf.Bytes()
}

// Free implements experimental.LinearMemory.
func (m *LinearMemory) Free() {
	if err := m.buf.Close(); err != nil {
		Logger().Warn("linear memory free failed", zap.Error(err))
	}
}

// Buf returns the backing buffer.
func (m *LinearMemory) Buf() *ByteBuf {
	return m.buf
}

// Max returns the declared maximum size in bytes.
func (m *LinearMemory) Max() uint64 {
	return m.max
}
