package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc       Phase = "alloc"       // virtual memory allocation
	PhaseResolve     Phase = "resolve"     // handle to entity resolution
	PhaseBorrow      Phase = "borrow"      // scoped access to stored entities
	PhaseRuntime     Phase = "runtime"     // runtime operations
	PhaseLoad        Phase = "load"        // module loading
	PhaseInstantiate Phase = "instantiate" // module instantiation
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation     Kind = "allocation"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindOwnerMismatch  Kind = "owner_mismatch"
	KindNotFound       Kind = "not_found"
	KindBorrowConflict Kind = "borrow_conflict"
	KindAffinity       Kind = "goroutine_affinity"
	KindImmutable      Kind = "immutable"
	KindLimit          Kind = "limit_exceeded"
	KindNotInitialized Kind = "not_initialized"
	KindInstantiation  Kind = "instantiation"
	KindTrap           Kind = "trap"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Entity != "" {
		b.WriteString(" (")
		b.WriteString(e.Entity)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Entity sets the kind of stored entity involved ("global", "memory", ...)
func (b *Builder) Entity(name string) *Builder {
	b.err.Entity = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Allocation constructors. These are returned, never raised.

// InvalidLength creates an error for a rejected allocation length
func InvalidLength(phase Phase, length any, reason string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("invalid length %v: %s", length, reason),
		Value:  length,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("offset %d length %d out of bounds (size %d)", offset, length, size),
		Value:  offset,
	}
}

// LimitExceeded creates an error for growth past a declared maximum
func LimitExceeded(phase Phase, entity string, requested, limit uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLimit,
		Entity: entity,
		Detail: fmt.Sprintf("requested %d exceeds maximum %d", requested, limit),
		Value:  requested,
	}
}

// ImmutableGlobal creates an error for a write to an immutable global
func ImmutableGlobal(detail string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindImmutable,
		Entity: "global",
		Detail: detail,
	}
}

// Invariant constructors. The store raises these with panic.

// OwnerMismatch creates the error for a handle presented to a store that did not mint it
func OwnerMismatch(entity string, handle fmt.Stringer, expected uint64) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindOwnerMismatch,
		Entity: entity,
		Detail: fmt.Sprintf("entity reference (%s) does not belong to store %d", handle, expected),
		Value:  handle,
	}
}

// EntityNotFound creates the error for an index with no stored entity
func EntityNotFound(entity string, index uint32) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Entity: entity,
		Detail: fmt.Sprintf("failed to resolve stored entity: %d", index),
		Value:  index,
	}
}

// BorrowConflict creates the error for overlapping accesses on a single-owner arena
func BorrowConflict(entity string, want, held string) *Error {
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindBorrowConflict,
		Entity: entity,
		Detail: fmt.Sprintf("cannot borrow arena %s: already borrowed %s", want, held),
	}
}

// WrongGoroutine creates the error for an outer handle used off its owning goroutine
func WrongGoroutine(entity string, owner, current uint64) *Error {
	return &Error{
		Phase:  PhaseBorrow,
		Kind:   KindAffinity,
		Entity: entity,
		Detail: fmt.Sprintf("handle owned by goroutine %d used from goroutine %d", owner, current),
		Value:  current,
	}
}

// Runtime package convenience constructors

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap creates an error for a guest call that did not complete
func Trap(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Detail: fmt.Sprintf("call %s", function),
		Value:  function,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// FromPanic extracts an *Error from a recovered panic value.
// It returns nil when the value is not one of ours.
func FromPanic(r any) *Error {
	switch v := r.(type) {
	case *Error:
		return v
	case error:
		var target *Error
		if stderrors.As(v, &target) {
			return target
		}
	}
	return nil
}
