package memory

import (
	"encoding/binary"
	"math"

	wasmstore "github.com/wippyai/wasm-store"
	"github.com/wippyai/wasm-store/errors"
)

var (
	_ wasmstore.Memory      = (*View)(nil)
	_ wasmstore.MemorySizer = (*View)(nil)
)

// View adapts a ByteBuf to wasmstore.Memory.
// Every access re-reads the buffer, so a View stays valid across Realloc.
type View struct {
	Buf *ByteBuf
}

// NewView wraps buf. It returns nil for a nil buffer.
func NewView(buf *ByteBuf) *View {
	if buf == nil {
		return nil
	}
	return &View{Buf: buf}
}

// Size returns the buffer length, saturated to the 32-bit address space.
func (v *View) Size() uint32 {
	n := v.Buf.Len()
	if uint64(n) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

func (v *View) slice(offset, length uint32) ([]byte, error) {
	data := v.Buf.Bytes()
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		return nil, errors.OutOfBounds(errors.PhaseRuntime, uint64(offset), uint64(length), uint64(len(data)))
	}
	return data[offset:end], nil
}

// Read returns length bytes at offset. The result aliases the buffer.
func (v *View) Read(offset uint32, length uint32) ([]byte, error) {
	return v.slice(offset, length)
}

// Write copies data to offset.
func (v *View) Write(offset uint32, data []byte) error {
	dst, err := v.slice(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (v *View) ReadU8(offset uint32) (uint8, error) {
	b, err := v.slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (v *View) ReadU16(offset uint32) (uint16, error) {
	b, err := v.slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (v *View) ReadU32(offset uint32) (uint32, error) {
	b, err := v.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (v *View) ReadU64(offset uint32) (uint64, error) {
	b, err := v.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (v *View) WriteU8(offset uint32, value uint8) error {
	b, err := v.slice(offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (v *View) WriteU16(offset uint32, value uint16) error {
	b, err := v.slice(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (v *View) WriteU32(offset uint32, value uint32) error {
	b, err := v.slice(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (v *View) WriteU64(offset uint32, value uint64) error {
	b, err := v.slice(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
