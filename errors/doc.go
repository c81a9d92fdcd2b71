// Package errors provides structured error types for the wasm-store library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entity kind involved, the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindAllocation).
//		Entity("memory").
//		Value(size).
//		Detail("mmap %d bytes", size).
//		Cause(sysErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidLength(errors.PhaseAlloc, n, "length must not be negative")
//	err := errors.OwnerMismatch("global", handle, expected)
//
// Two families share this type. Allocation failures are returned as ordinary
// error values. Invariant violations (owner mismatch, missing entity, borrow
// conflict, goroutine affinity) are raised with panic, carrying an *Error as the
// panic value so a recover site can still classify them with errors.Is.
package errors
