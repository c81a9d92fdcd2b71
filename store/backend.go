package store

// Backend is the storage an arena is kept in.
// Get returns a copy; WithMut grants fn the only mutable access for its duration.
// Both report false when idx names no entity.
type Backend[I Index, T any] interface {
	Alloc(entity T) I
	Get(idx I) (T, bool)
	WithMut(idx I, fn func(*T)) bool
	Len() int
	Each(fn func(I, T) bool)
}

// Mode selects the Backend a Store uses.
type Mode uint8

const (
	// ModeLocal is single-goroutine access with a runtime borrow check.
	ModeLocal Mode = iota
	// ModeShared guards the arena with a reader/writer lock.
	ModeShared
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeShared:
		return "shared"
	default:
		return "unknown"
	}
}

// NewBackend creates an empty backend of the given mode.
// entity names the stored type in diagnostics.
func NewBackend[I Index, T any](mode Mode, entity string) Backend[I, T] {
	if mode == ModeShared {
		return NewSharedBackend[I, T]()
	}
	return NewLocalBackend[I, T](entity)
}
