package store

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-store/errors"
)

// GlobalIdx indexes the globals arena.
type GlobalIdx uint32

// Global is a handle to a stored global.
type Global = Stored[GlobalIdx]

// Globals is the outer handle onto a store's globals.
type Globals = Entities[GlobalIdx, GlobalEntity]

// GlobalEntity is a global variable. Bits holds the value in wazero's
// uint64 encoding for Type (see api.EncodeI32 and friends).
type GlobalEntity struct {
	Bits    uint64
	Type    api.ValueType
	Mutable bool
}

// NewGlobal creates a global entity.
func NewGlobal(t api.ValueType, mutable bool, bits uint64) GlobalEntity {
	return GlobalEntity{Type: t, Mutable: mutable, Bits: bits}
}

// Get returns the encoded value.
func (g GlobalEntity) Get() uint64 {
	return g.Bits
}

// Set replaces the encoded value. Immutable globals reject writes.
func (g *GlobalEntity) Set(bits uint64) error {
	if !g.Mutable {
		return errors.ImmutableGlobal(fmt.Sprintf("cannot set immutable %s global", api.ValueTypeName(g.Type)))
	}
	g.Bits = bits
	return nil
}

// Value formats the decoded value.
func (g GlobalEntity) Value() string {
	return formatBits(g.Type, g.Bits)
}

func (g GlobalEntity) String() string {
	mut := "const"
	if g.Mutable {
		mut = "mut"
	}
	return fmt.Sprintf("global(%s %s) = %s", mut, api.ValueTypeName(g.Type), g.Value())
}

func formatBits(t api.ValueType, bits uint64) string {
	switch t {
	case api.ValueTypeI32:
		return fmt.Sprint(api.DecodeI32(bits))
	case api.ValueTypeI64:
		return fmt.Sprint(int64(bits))
	case api.ValueTypeF32:
		return fmt.Sprint(api.DecodeF32(bits))
	case api.ValueTypeF64:
		return fmt.Sprint(api.DecodeF64(bits))
	default:
		return fmt.Sprintf("0x%x", bits)
	}
}
