package memory

import (
	"go.uber.org/zap"
)

// ByteBuf is a byte buffer backed by anonymous virtual memory.
// It owns at most one mapping at any instant; Len is that mapping's length,
// or 0 when there is none.
type ByteBuf struct {
	mmap     *mmap
	observer Observer
}

// Option configures a ByteBuf.
type Option func(*ByteBuf)

// WithObserver reports map and unmap events of the buffer to o.
func WithObserver(o Observer) Option {
	return func(b *ByteBuf) {
		if o != nil {
			b.observer = o
		}
	}
}

// New creates a buffer of length zeroed bytes.
// A zero length yields an empty buffer that holds no mapping.
func New(length int, opts ...Option) (*ByteBuf, error) {
	b := &ByteBuf{observer: nopObserver{}}
	for _, opt := range opts {
		opt(b)
	}

	if length == 0 {
		return b, nil
	}

	m, err := b.alloc(length)
	if err != nil {
		return nil, err
	}
	b.mmap = m
	return b, nil
}

// Realloc resizes the buffer to newLen bytes.
//
// The first min(Len(), newLen) bytes are preserved and any growth is zero-filled.
// The new mapping is requested before the old one is released, since the data has
// to survive until it is copied. On failure the buffer is left unchanged.
// A newLen of 0 releases the mapping and leaves the buffer empty.
func (b *ByteBuf) Realloc(newLen int) error {
	if newLen == 0 {
		b.free()
		return nil
	}

	next, err := b.alloc(newLen)
	if err != nil {
		return err
	}

	if cur := b.mmap; cur != nil {
		n := copy(next.bytes(), cur.bytes())
		Logger().Debug("realloc",
			zap.Int("old_bytes", cur.len()),
			zap.Int("new_bytes", newLen),
			zap.Int("copied", n))
		b.free()
	}

	b.mmap = next
	return nil
}

// Erase re-initializes the buffer to Len() zero bytes.
//
// The old mapping is released before the new one is requested, so peak usage
// never reaches twice the buffer length. If the new request fails the buffer
// is left empty. Erasing an empty buffer is a no-op.
func (b *ByteBuf) Erase() error {
	length := b.Len()
	if length == 0 {
		return nil
	}

	b.free()

	m, err := b.alloc(length)
	if err != nil {
		return err
	}
	b.mmap = m

	Logger().Debug("erase", zap.Int("bytes", length))
	return nil
}

// Len returns the buffer length in bytes.
func (b *ByteBuf) Len() int {
	if b.mmap == nil {
		return 0
	}
	return b.mmap.len()
}

// Bytes returns a read-write view of exactly Len() bytes.
// The view is invalidated by the next Realloc, Erase or Close.
func (b *ByteBuf) Bytes() []byte {
	if b.mmap == nil {
		return []byte{}
	}
	return b.mmap.bytes()
}

// Close releases the mapping. The buffer stays usable as an empty buffer.
func (b *ByteBuf) Close() error {
	if b.mmap == nil {
		return nil
	}
	m := b.mmap
	b.mmap = nil
	size := m.len()
	// release drops the mapping from the stats even when munmap fails.
	err := m.release()
	b.observer.OnUnmap(size)
	return err
}

func (b *ByteBuf) alloc(length int) (*mmap, error) {
	m, err := newMmap(length)
	if err != nil {
		b.observer.OnMapFailed(length, err)
		Logger().Debug("map failed", zap.Int("bytes", length), zap.Error(err))
		return nil, err
	}
	b.observer.OnMap(length)
	Logger().Debug("map", zap.Int("bytes", length))
	return m, nil
}

// free drops the current mapping. Unmap failures leave nothing to recover, so
// they are logged rather than returned.
func (b *ByteBuf) free() {
	if b.mmap == nil {
		return
	}
	size := b.mmap.len()
	if err := b.Close(); err != nil {
		Logger().Warn("unmap failed", zap.Int("bytes", size), zap.Error(err))
		return
	}
	Logger().Debug("unmap", zap.Int("bytes", size))
}
