package store

import (
	"github.com/wippyai/wasm-store/memory"
)

// MemoryIdx indexes the memories arena.
type MemoryIdx uint32

// Memory is a handle to a stored linear memory.
type Memory = Stored[MemoryIdx]

// Memories is the outer handle onto a store's memories.
type Memories = Entities[MemoryIdx, MemoryEntity]

// MaxPages is the page limit applied when a memory declares none.
const MaxPages = 65536

// MemoryEntity is a linear memory. Copies share Buf.
type MemoryEntity struct {
	Buf      *memory.ByteBuf
	MinPages uint32
	MaxPages uint32
	// owned buffers are released by Store.Close; adopted ones belong to their engine.
	owned bool
}

// Pages returns the current size in whole pages.
func (m MemoryEntity) Pages() uint32 {
	if m.Buf == nil {
		return 0
	}
	return memory.BytesToPages(uint64(m.Buf.Len()))
}

// Limit returns MaxPages, or the global MaxPages when unset.
func (m MemoryEntity) Limit() uint32 {
	if m.MaxPages == 0 {
		return MaxPages
	}
	return m.MaxPages
}

// Owned reports whether the store releases the buffer on Close.
func (m MemoryEntity) Owned() bool {
	return m.owned
}
