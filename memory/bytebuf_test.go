package memory

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPageSize = 4096

type event struct {
	op   string
	size int
}

type recordingObserver struct {
	events []event
}

func (o *recordingObserver) OnMap(size int)   { o.events = append(o.events, event{"map", size}) }
func (o *recordingObserver) OnUnmap(size int) { o.events = append(o.events, event{"unmap", size}) }
func (o *recordingObserver) OnMapFailed(size int, _ error) {
	o.events = append(o.events, event{"fail", size})
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func allEqual(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

func TestNew_Empty(t *testing.T) {
	buf, err := New(0)
	require.NoError(t, err)
	defer buf.Close()

	assert.Equal(t, 0, buf.Len())
	assert.Len(t, buf.Bytes(), 0)
	assert.NotNil(t, buf.Bytes())
}

func TestNew_Zeroed(t *testing.T) {
	buf, err := New(testPageSize * 2)
	require.NoError(t, err)
	defer buf.Close()

	assert.Equal(t, testPageSize*2, buf.Len())
	assert.Len(t, buf.Bytes(), testPageSize*2)
	assert.True(t, allEqual(buf.Bytes(), 0))
}

func TestNew_UnalignedLength(t *testing.T) {
	buf, err := New(100)
	require.NoError(t, err)
	defer buf.Close()

	assert.Equal(t, 100, buf.Len())
	fill(buf.Bytes(), 0x11)
	assert.True(t, allEqual(buf.Bytes(), 0x11))
}

func TestNew_InvalidLength(t *testing.T) {
	buf, err := New(-1)
	require.Error(t, err)
	assert.Nil(t, buf)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRealloc_ShrinkThenGrow(t *testing.T) {
	buf, err := New(8192)
	require.NoError(t, err)
	defer buf.Close()

	fill(buf.Bytes(), 0xAA)

	require.NoError(t, buf.Realloc(4096))
	assert.Equal(t, 4096, buf.Len())
	assert.True(t, allEqual(buf.Bytes(), 0xAA))

	require.NoError(t, buf.Realloc(8192))
	assert.Equal(t, 8192, buf.Len())
	assert.True(t, allEqual(buf.Bytes()[:4096], 0xAA))
	assert.True(t, allEqual(buf.Bytes()[4096:], 0x00))
}

func TestRealloc_PreservesPrefix(t *testing.T) {
	tests := []struct {
		name   string
		oldLen int
		newLen int
	}{
		{"grow unaligned", 10, 5000},
		{"grow pages", testPageSize, testPageSize * 3},
		{"shrink pages", testPageSize * 3, testPageSize * 2},
		{"shrink unaligned", 5000, 7},
		{"same length", testPageSize, testPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := New(tt.oldLen)
			require.NoError(t, err)
			defer buf.Close()

			pattern := make([]byte, tt.oldLen)
			for i := range pattern {
				pattern[i] = byte(i*7 + 1)
			}
			copy(buf.Bytes(), pattern)

			require.NoError(t, buf.Realloc(tt.newLen))
			require.Equal(t, tt.newLen, buf.Len())

			keep := min(tt.oldLen, tt.newLen)
			assert.True(t, bytes.Equal(buf.Bytes()[:keep], pattern[:keep]))
			assert.True(t, allEqual(buf.Bytes()[keep:], 0))
		})
	}
}

func TestRealloc_ToZero(t *testing.T) {
	obs := &recordingObserver{}
	buf, err := New(testPageSize, WithObserver(obs))
	require.NoError(t, err)

	require.NoError(t, buf.Realloc(0))
	assert.Equal(t, 0, buf.Len())
	assert.Len(t, buf.Bytes(), 0)
	assert.Equal(t, []event{{"map", testPageSize}, {"unmap", testPageSize}}, obs.events)

	// Growing from empty starts from zeroes.
	require.NoError(t, buf.Realloc(16))
	assert.True(t, allEqual(buf.Bytes(), 0))
	require.NoError(t, buf.Close())
}

func TestRealloc_FailureKeepsBuffer(t *testing.T) {
	buf, err := New(64)
	require.NoError(t, err)
	defer buf.Close()
	fill(buf.Bytes(), 0x5A)

	err = buf.Realloc(-5)
	require.ErrorIs(t, err, ErrInvalidLength)
	assert.Equal(t, 64, buf.Len())
	assert.True(t, allEqual(buf.Bytes(), 0x5A))
}

func TestRealloc_AllocatesBeforeReleasing(t *testing.T) {
	obs := &recordingObserver{}
	buf, err := New(testPageSize, WithObserver(obs))
	require.NoError(t, err)
	defer buf.Close()

	require.NoError(t, buf.Realloc(testPageSize*2))
	assert.Equal(t, []event{
		{"map", testPageSize},
		{"map", testPageSize * 2},
		{"unmap", testPageSize},
	}, obs.events)
}

func TestErase(t *testing.T) {
	buf, err := New(testPageSize * 2)
	require.NoError(t, err)
	defer buf.Close()

	fill(buf.Bytes(), 0xFF)
	require.NoError(t, buf.Erase())

	assert.Equal(t, testPageSize*2, buf.Len())
	assert.True(t, allEqual(buf.Bytes(), 0))
}

func TestErase_ReleasesBeforeAllocating(t *testing.T) {
	obs := &recordingObserver{}
	buf, err := New(testPageSize, WithObserver(obs))
	require.NoError(t, err)
	defer buf.Close()

	obs.events = nil
	require.NoError(t, buf.Erase())
	assert.Equal(t, []event{
		{"unmap", testPageSize},
		{"map", testPageSize},
	}, obs.events)
}

func TestErase_Empty(t *testing.T) {
	obs := &recordingObserver{}
	buf, err := New(0, WithObserver(obs))
	require.NoError(t, err)

	require.NoError(t, buf.Erase())
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, obs.events)
}

func TestClose(t *testing.T) {
	before := ReadStats()

	buf, err := New(testPageSize)
	require.NoError(t, err)

	during := ReadStats()
	assert.Equal(t, before.LiveMappings+1, during.LiveMappings)
	assert.Equal(t, before.MappedBytes+testPageSize, during.MappedBytes)

	require.NoError(t, buf.Close())
	require.NoError(t, buf.Close())
	assert.Equal(t, 0, buf.Len())

	after := ReadStats()
	assert.Equal(t, before.LiveMappings, after.LiveMappings)
	assert.Equal(t, before.MappedBytes, after.MappedBytes)
	assert.Equal(t, before.Unmaps+1, after.Unmaps)
}

func TestClose_UnmapFailureStillReported(t *testing.T) {
	obs := &recordingObserver{}
	buf, err := New(testPageSize, WithObserver(obs))
	require.NoError(t, err)

	unmapErr := stderrors.New("munmap: invalid argument")
	realUnmap := buf.mmap.unmap
	buf.mmap.unmap = func(data []byte) error {
		require.NoError(t, realUnmap(data))
		return unmapErr
	}

	before := ReadStats()
	assert.ErrorIs(t, buf.Close(), unmapErr)
	after := ReadStats()

	assert.Equal(t, before.LiveMappings-1, after.LiveMappings)
	assert.Equal(t, before.MappedBytes-testPageSize, after.MappedBytes)
	assert.Equal(t, []event{{"map", testPageSize}, {"unmap", testPageSize}}, obs.events)
	assert.Equal(t, 0, buf.Len())
}

// Wasm memories only grow, but shrinking must work too.
func TestByteBuf_Shrink(t *testing.T) {
	buf, err := New(testPageSize * 3)
	require.NoError(t, err)
	defer buf.Close()

	require.NoError(t, buf.Realloc(testPageSize*2))
	assert.Equal(t, testPageSize*2, buf.Len())
}

func TestPages(t *testing.T) {
	assert.Equal(t, uint64(0), PagesToBytes(0))
	assert.Equal(t, uint64(3*PageSize), PagesToBytes(3))
	assert.Equal(t, uint32(2), BytesToPages(2*PageSize+10))
}
