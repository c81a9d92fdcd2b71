package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-store/errors"
	"github.com/wippyai/wasm-store/memory"
	"github.com/wippyai/wasm-store/store"
)

// Config holds configuration for engine creation
type Config struct {
	// Store configures the engine's store. nil uses store defaults.
	Store *store.Config

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// Engine owns a wazero runtime and the store its instances publish into.
type Engine struct {
	runtime   wazero.Runtime
	store     *store.Store
	memOpts   []memory.Option
	instances []*Instance
}

// New creates an engine. The store is bound to the calling goroutine.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	e := &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		store:   store.New(cfg.Store),
	}
	if cfg.Store != nil && cfg.Store.MemoryObserver != nil {
		e.memOpts = append(e.memOpts, memory.WithObserver(cfg.Store.MemoryObserver))
	}

	Logger().Debug("engine created",
		zap.Stringer("store", e.store.ID()),
		zap.Uint32("memory_limit_pages", cfg.MemoryLimitPages))
	return e, nil
}

// Store returns the engine's store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Instantiate compiles and instantiates wasm under name. An empty name
// instantiates anonymously, allowing several copies of one module.
func (e *Engine) Instantiate(ctx context.Context, name string, wasm []byte) (*Instance, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	alloc := memory.NewAllocator(e.memOpts...)
	modCtx := experimental.WithMemoryAllocator(ctx, alloc)

	mod, err := e.runtime.InstantiateModule(modCtx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		alloc.Free()
		_ = compiled.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	inst := &Instance{
		engine:   e,
		name:     name,
		compiled: compiled,
		module:   mod,
		alloc:    alloc,
	}
	inst.adoptMemory()

	e.instances = append(e.instances, inst)
	Logger().Debug("module instantiated",
		zap.String("name", name),
		zap.Bool("memory", inst.hasMemory))
	return inst, nil
}

// Close closes every instance, the runtime and the store.
func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	for _, inst := range e.instances {
		if err := inst.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.instances = nil

	if err := e.runtime.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
