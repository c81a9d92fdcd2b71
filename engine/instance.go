package engine

import (
	"context"
	"maps"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-store/errors"
	"github.com/wippyai/wasm-store/memory"
	"github.com/wippyai/wasm-store/store"
)

// Instance is an instantiated module.
type Instance struct {
	engine    *Engine
	compiled  wazero.CompiledModule
	module    api.Module
	alloc     *memory.Allocator
	linear    *memory.LinearMemory
	name      string
	memory    store.Memory
	hasMemory bool
}

// adoptMemory publishes the module's first memory into the engine's store.
// Memory() cannot tell a module without memory apart: it returns a non-nil
// interface over a nil instance. The allocator saw every memory wazero created.
func (i *Instance) adoptMemory() {
	lms := i.alloc.Memories()
	if len(lms) == 0 {
		return
	}
	mem := i.module.Memory()

	// lms[0].Max() is the effective limit: the declared maximum or the runtime's.
	lm := lms[0]
	i.memory = i.engine.store.AdoptMemory(lm.Buf(), mem.Definition().Min(), memory.BytesToPages(lm.Max()))
	i.linear = lm
	i.hasMemory = true
}

// Name returns the module name given to Instantiate.
func (i *Instance) Name() string {
	return i.name
}

// Memory returns the store handle of the module's memory.
func (i *Instance) Memory() (store.Memory, bool) {
	return i.memory, i.hasMemory
}

// Functions returns the names of the exported functions, sorted.
func (i *Instance) Functions() []string {
	return slices.Sorted(maps.Keys(i.compiled.ExportedFunctions()))
}

// GrowMemory grows the module's memory by delta pages through wazero, which
// reallocates the adopted buffer. It returns the previous size in pages.
func (i *Instance) GrowMemory(delta uint32) (uint32, error) {
	if err := i.live(); err != nil {
		return 0, err
	}
	if !i.hasMemory {
		return 0, errors.NotFound(errors.PhaseRuntime, "memory", i.name)
	}

	mem := i.module.Memory()
	prev, ok := mem.Grow(delta)
	if !ok {
		pages := memory.BytesToPages(uint64(mem.Size()))
		limit := uint64(memory.BytesToPages(i.linear.Max()))
		return pages, errors.LimitExceeded(errors.PhaseRuntime, "memory", uint64(pages)+uint64(delta), limit)
	}

	Logger().Debug("guest memory grown",
		zap.String("module", i.name),
		zap.Uint32("from_pages", prev),
		zap.Uint32("delta", delta))
	return prev, nil
}

// live reports an error once the instance has been closed.
func (i *Instance) live() error {
	if i.module == nil {
		return errors.NotInitialized(errors.PhaseRuntime, "module "+i.name)
	}
	return nil
}

func (i *Instance) exportedGlobal(name string) (api.Global, error) {
	if err := i.live(); err != nil {
		return nil, err
	}
	g := i.module.ExportedGlobal(name)
	if g == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "global", name)
	}
	return g, nil
}

// ImportGlobal copies the exported global name into the store.
func (i *Instance) ImportGlobal(name string) (store.Global, error) {
	g, err := i.exportedGlobal(name)
	if err != nil {
		return store.Global{}, err
	}

	_, mutable := g.(api.MutableGlobal)
	h := i.engine.store.AllocGlobal(store.NewGlobal(g.Type(), mutable, g.Get()))

	Logger().Debug("global imported",
		zap.String("module", i.name),
		zap.String("global", name),
		zap.Stringer("handle", h))
	return h, nil
}

// PushGlobal writes the stored global h into the guest's mutable global name.
func (i *Instance) PushGlobal(name string, h store.Global) error {
	g, err := i.exportedGlobal(name)
	if err != nil {
		return err
	}
	mg, ok := g.(api.MutableGlobal)
	if !ok {
		return errors.ImmutableGlobal("guest global " + name + " is immutable")
	}

	entity := i.engine.store.Globals().Resolve(h)
	if entity.Type != g.Type() {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Entity("global").
			Detail("type mismatch: stored %s, guest %s %s",
				api.ValueTypeName(entity.Type), name, api.ValueTypeName(g.Type())).
			Build()
	}
	mg.Set(entity.Bits)
	return nil
}

// PullGlobal refreshes the stored global h from the guest's global name.
// Immutable stored globals are refreshed too; only host writes are refused.
func (i *Instance) PullGlobal(name string, h store.Global) error {
	g, err := i.exportedGlobal(name)
	if err != nil {
		return err
	}
	return store.UpdateWith(i.engine.store.Globals(), h, func(e *store.GlobalEntity) error {
		if e.Type != g.Type() {
			return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Entity("global").
				Detail("type mismatch: stored %s, guest %s %s",
					api.ValueTypeName(e.Type), name, api.ValueTypeName(g.Type())).
				Build()
		}
		e.Bits = g.Get()
		return nil
	})
}

// Call invokes the exported function name.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	if err := i.live(); err != nil {
		return nil, err
	}
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}
	return results, nil
}

// Close closes the module and releases its linear memories.
// The adopted store entity remains, holding an empty buffer.
func (i *Instance) Close(ctx context.Context) error {
	if i.module == nil {
		return nil
	}
	var firstErr error
	if err := i.module.Close(ctx); err != nil {
		firstErr = err
	}
	if err := i.compiled.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	i.alloc.Free()
	i.module = nil
	return firstErr
}
