// Package wasmstore provides virtual-memory backed byte buffers and a
// store of WebAssembly runtime entities addressed by checked handles.
//
// # Architecture Overview
//
//	wasmstore/          Root package with the Memory accessor interfaces
//	├── memory/         ByteBuf over anonymous mappings, View, wazero allocator
//	├── store/          Arenas, store-bound handles, resolvers, outer handles
//	├── engine/         wazero runtime whose linear memories live in the store
//	├── metrics/        Prometheus observer for mappings and store events
//	├── errors/         Structured error types
//	└── cmd/run/        Inspector CLI
//
// # Quick Start
//
// Allocate and resize a buffer:
//
//	buf, err := memory.New(8192)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer buf.Close()
//
//	copy(buf.Bytes(), payload)
//	if err := buf.Realloc(4096); err != nil { // keeps the first 4096 bytes
//	    log.Fatal(err)
//	}
//
// Keep entities in a store and address them by handle:
//
//	s := store.New(nil)
//	h := s.AllocGlobal(store.NewGlobal(api.ValueTypeI32, true, 0))
//	g := s.Globals().Resolve(h)
//
// A handle resolved against a store that did not mint it panics with an
// *errors.Error of kind owner_mismatch.
//
// # Thread Safety
//
// ByteBuf is not safe for concurrent use. A store's outer handles belong to the
// goroutine that created the store; store.ModeShared makes the arenas themselves
// safe to share between resolvers on different goroutines.
//
// # Memory Model
//
// Buffers are zero-filled on allocation and growth. Realloc maps the new region
// before unmapping the old one, so a resize briefly needs both; Erase unmaps
// first, so it never does.
package wasmstore
