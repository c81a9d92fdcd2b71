// Package engine runs WebAssembly modules on wazero with their linear memories
// living in ByteBufs and their state reachable through a store.Store.
//
// # Architecture
//
//	Engine   - a wazero runtime plus the store shared by its instances
//	Instance - one instantiated module, its allocator and its adopted memory
//
// Each Instantiate call hands wazero a fresh memory.Allocator through
// experimental.WithMemoryAllocator. The module's linear memory is therefore a
// memory.ByteBuf, and it is adopted into the engine's store so host code can
// address it with a store.Memory handle:
//
//	eng, err := engine.New(ctx, nil)
//	inst, err := eng.Instantiate(ctx, "guest", wasmBytes)
//	h, _ := inst.Memory()
//	view := eng.Store().MemoryView(h)
//
// Exported globals are copied into the store with ImportGlobal and synchronised
// with PushGlobal and PullGlobal.
//
// # Thread Safety
//
// The store's outer handles belong to the goroutine that called New, so an
// Engine and its Instances must be driven from that goroutine.
//
// # Known Limitations
//
// Only the first memory of a module is adopted. Memory64 is not supported by
// wazero (v1.10.1).
package engine
