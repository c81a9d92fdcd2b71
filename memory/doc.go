// Package memory provides growable byte buffers backed directly by anonymous
// virtual memory instead of the Go heap.
//
// # Byte Buffers
//
// A ByteBuf owns zero or one mapping. Its length is always the length of that
// mapping, or 0 when it holds none:
//
//	buf, err := memory.New(8192)
//	if err != nil { ... }
//	defer buf.Close()
//
//	copy(buf.Bytes(), payload)
//
//	// Resize, keeping the common prefix. Growth is zero-filled.
//	err = buf.Realloc(4096)
//
//	// Wipe: the old mapping is released before the new one is requested,
//	// so peak usage stays at one buffer length.
//	err = buf.Erase()
//
// Slices returned by Bytes are valid only until the next Realloc, Erase or
// Close. After that the pages they point at are unmapped and any access faults.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, munmap(2)
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT, VirtualFree(MEM_RELEASE)
//   - Other platforms: allocation fails with an unsupported error
//
// # wazero Integration
//
// Allocator implements wazero's experimental.MemoryAllocator so that guest
// linear memories live in ByteBufs:
//
//	alloc := memory.NewAllocator()
//	ctx = experimental.WithMemoryAllocator(ctx, alloc)
//	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
//
// View adapts a ByteBuf to the bounds-checked little-endian accessors of the
// root wasmstore.Memory interface.
//
// # Thread Safety
//
// ByteBuf and View have no internal synchronization. Callers sharing a buffer
// across goroutines must provide their own locking.
package memory
