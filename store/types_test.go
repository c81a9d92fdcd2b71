package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreID_Unique(t *testing.T) {
	a, b := NewStoreID(), NewStoreID()
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
	assert.Equal(t, "StoreID(5)", StoreID(5).String())
}

func TestStored(t *testing.T) {
	h := NewStored(StoreID(7), GlobalIdx(3))

	idx, ok := h.EntityIndex(7)
	assert.True(t, ok)
	assert.Equal(t, GlobalIdx(3), idx)

	_, ok = h.EntityIndex(8)
	assert.False(t, ok)

	assert.Equal(t, StoreID(7), h.StoreID())
	assert.Equal(t, "Stored { index: 3, store: 7 }", h.String())

	// handles are comparable values
	assert.Equal(t, h, NewStored(StoreID(7), GlobalIdx(3)))
	assert.NotEqual(t, h, NewStored(StoreID(8), GlobalIdx(3)))
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "allocated", EventAllocated.String())
	assert.Equal(t, "resolved", EventResolved.String())
	assert.Equal(t, "mutated", EventMutated.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "local", ModeLocal.String())
	assert.Equal(t, "shared", ModeShared.String())
	assert.Equal(t, "unknown", Mode(9).String())
}

func TestArena(t *testing.T) {
	a := NewArena[GlobalIdx, int]()
	assert.Equal(t, GlobalIdx(0), a.Alloc(10))
	assert.Equal(t, GlobalIdx(1), a.Alloc(20))
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 20, v)

	_, ok = a.Get(2)
	assert.False(t, ok)

	p, ok := a.GetMut(0)
	assert.True(t, ok)
	*p = 11
	v, _ = a.Get(0)
	assert.Equal(t, 11, v)

	var seen []int
	a.Each(func(_ GlobalIdx, v int) bool {
		seen = append(seen, v)
		return false
	})
	assert.Equal(t, []int{11}, seen)
}

type tagged struct {
	tags []string
}

func (t tagged) Clone() tagged {
	return tagged{tags: append([]string(nil), t.tags...)}
}

func TestArena_Cloner(t *testing.T) {
	a := NewArena[GlobalIdx, tagged]()
	idx := a.Alloc(tagged{tags: []string{"a"}})

	got, _ := a.Get(idx)
	got.tags[0] = "changed"

	again, _ := a.Get(idx)
	assert.Equal(t, "a", again.tags[0])
}
