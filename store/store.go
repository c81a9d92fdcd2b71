package store

import (
	"go.uber.org/zap"

	wasmstore "github.com/wippyai/wasm-store"
	"github.com/wippyai/wasm-store/errors"
	"github.com/wippyai/wasm-store/memory"
)

// Config holds configuration for store creation
type Config struct {
	// Observer receives allocation, resolution and mutation events. Optional.
	Observer Observer

	// MemoryObserver receives map/unmap events of memories the store allocates. Optional.
	MemoryObserver memory.Observer

	// Mode selects the arena back-end. Defaults to ModeLocal.
	Mode Mode
}

// Store owns a set of entity arenas sharing one StoreID.
// Its outer handles are bound to the goroutine that called New.
type Store struct {
	globals  *Globals
	memories *Memories
	memOpts  []memory.Option
	id       StoreID
	mode     Mode
}

// New creates an empty store. A nil cfg uses defaults.
func New(cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}

	id := NewStoreID()
	s := &Store{
		id:   id,
		mode: cfg.Mode,
		globals: NewEntities(NewResolver(id, "global",
			NewBackend[GlobalIdx, GlobalEntity](cfg.Mode, "global"), cfg.Observer)),
		memories: NewEntities(NewResolver(id, "memory",
			NewBackend[MemoryIdx, MemoryEntity](cfg.Mode, "memory"), cfg.Observer)),
	}
	if cfg.MemoryObserver != nil {
		s.memOpts = append(s.memOpts, memory.WithObserver(cfg.MemoryObserver))
	}

	Logger().Debug("store created",
		zap.Uint64("store", uint64(id)),
		zap.Stringer("mode", cfg.Mode))
	return s
}

// ID returns the store's identity.
func (s *Store) ID() StoreID {
	return s.id
}

// Mode returns the arena back-end in use.
func (s *Store) Mode() Mode {
	return s.mode
}

// Globals returns the globals arena.
func (s *Store) Globals() *Globals {
	return s.globals
}

// Memories returns the memories arena.
func (s *Store) Memories() *Memories {
	return s.memories
}

// AllocGlobal stores g and returns its handle.
func (s *Store) AllocGlobal(g GlobalEntity) Global {
	return s.globals.Wrap(s.globals.Alloc(g))
}

// AllocMemory creates a zeroed memory of minPages owned by the store.
// A maxPages of 0 means MaxPages.
func (s *Store) AllocMemory(minPages, maxPages uint32) (Memory, error) {
	if maxPages != 0 && minPages > maxPages {
		return Memory{}, errors.LimitExceeded(errors.PhaseRuntime, "memory", uint64(minPages), uint64(maxPages))
	}
	if minPages > MaxPages {
		return Memory{}, errors.LimitExceeded(errors.PhaseRuntime, "memory", uint64(minPages), MaxPages)
	}

	buf, err := memory.New(int(memory.PagesToBytes(minPages)), s.memOpts...)
	if err != nil {
		return Memory{}, err
	}

	idx := s.memories.Alloc(MemoryEntity{
		Buf:      buf,
		MinPages: minPages,
		MaxPages: maxPages,
		owned:    true,
	})
	return s.memories.Wrap(idx), nil
}

// AdoptMemory stores a buffer owned by someone else, typically an engine's
// linear memory. Close leaves it alone.
func (s *Store) AdoptMemory(buf *memory.ByteBuf, minPages, maxPages uint32) Memory {
	idx := s.memories.Alloc(MemoryEntity{
		Buf:      buf,
		MinPages: minPages,
		MaxPages: maxPages,
	})
	return s.memories.Wrap(idx)
}

// GrowMemory grows a memory by delta pages and returns the previous size.
// Contents are preserved and the new pages are zeroed. Only memories the
// store allocated can be grown here.
func (s *Store) GrowMemory(h Memory, delta uint32) (uint32, error) {
	type result struct {
		err  error
		prev uint32
	}
	r := UpdateWith(s.memories, h, func(m *MemoryEntity) result {
		prev := m.Pages()
		if !m.owned {
			return result{prev: prev, err: errAdopted("grow")}
		}
		next := uint64(prev) + uint64(delta)
		if next > uint64(m.Limit()) {
			return result{prev: prev, err: errors.LimitExceeded(errors.PhaseRuntime, "memory", next, uint64(m.Limit()))}
		}
		if delta == 0 {
			return result{prev: prev}
		}
		if err := m.Buf.Realloc(int(memory.PagesToBytes(uint32(next)))); err != nil {
			return result{prev: prev, err: errors.New(errors.PhaseRuntime, errors.KindAllocation).
				Entity("memory").
				Value(next).
				Cause(err).
				Detail("grow from %d to %d pages", prev, next).
				Build()}
		}
		return result{prev: prev}
	})
	if r.err == nil {
		Logger().Debug("memory grown",
			zap.Stringer("handle", h),
			zap.Uint32("from_pages", r.prev),
			zap.Uint32("delta", delta))
	}
	return r.prev, r.err
}

// EraseMemory zeroes a memory the store allocated by replacing its mapping.
func (s *Store) EraseMemory(h Memory) error {
	return UpdateWith(s.memories, h, func(m *MemoryEntity) error {
		if !m.owned {
			return errAdopted("erase")
		}
		return m.Buf.Erase()
	})
}

// Adopted memories are referenced by their engine, which would not see a new mapping.
func errAdopted(op string) *errors.Error {
	return errors.New(errors.PhaseRuntime, errors.KindUnsupported).
		Entity("memory").
		Value(op).
		Detail("cannot %s adopted memory; use its owner", op).
		Build()
}

// MemoryView returns bounds-checked accessors over a memory. The result also
// implements wasmstore.MemorySizer.
func (s *Store) MemoryView(h Memory) wasmstore.Memory {
	buf := s.memories.Resolve(h).Buf
	if buf == nil {
		return nil
	}
	return memory.NewView(buf)
}

// Close releases every memory the store allocated itself.
func (s *Store) Close() error {
	var owned []*memory.ByteBuf
	s.memories.Each(func(_ Memory, m MemoryEntity) bool {
		if m.owned && m.Buf != nil {
			owned = append(owned, m.Buf)
		}
		return true
	})

	var firstErr error
	for _, buf := range owned {
		if err := buf.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.PhaseRuntime, errors.KindAllocation, err, "release store memory")
		}
	}

	Logger().Debug("store closed",
		zap.Uint64("store", uint64(s.id)),
		zap.Int("released", len(owned)))
	return firstErr
}
