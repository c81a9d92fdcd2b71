package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// guestWASM exports memory (1..4 pages), a mutable i32 "counter" = 42,
// an immutable i64 "limit" = 7, and functions "get" and "boom".
var guestWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7f,
	0x03, 0x03, 0x02, 0x00, 0x00,
	0x05, 0x04, 0x01, 0x01, 0x01, 0x04,
	0x06, 0x0b, 0x02,
	0x7f, 0x01, 0x41, 0x2a, 0x0b,
	0x7e, 0x00, 0x42, 0x07, 0x0b,
	0x07, 0x29, 0x05,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x07, 'c', 'o', 'u', 'n', 't', 'e', 'r', 0x03, 0x00,
	0x05, 'l', 'i', 'm', 'i', 't', 0x03, 0x01,
	0x03, 'g', 'e', 't', 0x00, 0x00,
	0x04, 'b', 'o', 'o', 'm', 0x00, 0x01,
	0x0a, 0x0a, 0x02,
	0x04, 0x00, 0x23, 0x00, 0x0b,
	0x03, 0x00, 0x00, 0x0b,
}

// noMemoryWASM is (module (func (export "nop")))
var noMemoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x07, 0x07, 0x01, 0x03, 'n', 'o', 'p', 0x00, 0x00,
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b,
}

func writeModule(t *testing.T, name string, wasm []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, wasm, 0o644))
	return path
}

func writeGuest(t *testing.T) string {
	t.Helper()
	return writeModule(t, "guest.wasm", guestWASM)
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspectCommand(t *testing.T) {
	path := writeGuest(t)

	out, err := execCmd(t, "inspect", path, "--global", "counter", "--global", "limit")
	require.NoError(t, err)
	assert.Contains(t, out, "Memory: 1 pages (65536 bytes), min 1, max 4")
	assert.Contains(t, out, "Functions: boom, get")
	assert.Contains(t, out, "counter: mut i32 = 42")
	assert.Contains(t, out, "limit: const i64 = 7")
}

func TestInspectCommand_JSON(t *testing.T) {
	path := writeGuest(t)

	out, err := execCmd(t, "inspect", path, "-g", "counter", "--grow", "2", "--json")
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.NotNil(t, r.Memory)
	assert.Equal(t, uint32(3), r.Memory.Pages)
	assert.Equal(t, 3*65536, r.Memory.Bytes)
	require.Len(t, r.Globals, 1)
	assert.Equal(t, globalReport{Name: "counter", Type: "i32", Value: "42", Mutable: true}, r.Globals[0])
}

func TestInspectCommand_Errors(t *testing.T) {
	path := writeGuest(t)

	_, err := execCmd(t, "inspect", path, "--global", "missing")
	assert.Error(t, err)

	_, err = execCmd(t, "inspect", path, "--grow", "10")
	assert.Error(t, err)

	_, err = execCmd(t, "inspect", filepath.Join(t.TempDir(), "absent.wasm"))
	assert.Error(t, err)

	_, err = execCmd(t, "inspect")
	assert.Error(t, err)
}

func TestInspectCommand_NoMemory(t *testing.T) {
	path := writeModule(t, "nomem.wasm", noMemoryWASM)

	out, err := execCmd(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Memory: none")
	assert.Contains(t, out, "Functions: nop")

	_, err = execCmd(t, "inspect", path, "--grow", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInspectorModel_NoMemory(t *testing.T) {
	ctx := context.Background()
	s, err := openSession(ctx, writeModule(t, "nomem.wasm", noMemoryWASM), nil)
	require.NoError(t, err)
	defer s.close(ctx)

	m, err := newInspectorModel(s)
	require.NoError(t, err)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error:")

	press(t, m, "G")
	assert.Equal(t, uint32(2), s.eng.Store().Memories().Resolve(m.scratch).Pages())
}

func TestByteBufCommand(t *testing.T) {
	out, err := execCmd(t, "bytebuf", "--size", "8192", "--resize", "4096")
	require.NoError(t, err)
	assert.Contains(t, out, "Buffer: 8192 -> 4096 bytes")
	assert.Contains(t, out, "Prefix: 4096 bytes preserved (intact: true)")

	out, err = execCmd(t, "bytebuf", "--size", "4096", "--resize", "8192", "--json")
	require.NoError(t, err)

	var r byteBufReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 4096, r.Preserved)
	assert.True(t, r.Intact)
	assert.True(t, r.ZeroTail)
	assert.GreaterOrEqual(t, r.After.Maps, r.Before.Maps+2)

	_, err = execCmd(t, "bytebuf", "--size", "-1")
	assert.Error(t, err)
}

func press(t *testing.T, m *inspectorModel, k string) {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	assert.Nil(t, cmd)
	require.NoError(t, m.err, "key %q", k)
}

func TestInspectorModel(t *testing.T) {
	ctx := context.Background()
	s, err := openSession(ctx, writeGuest(t), []string{"counter", "limit"})
	require.NoError(t, err)
	defer s.close(ctx)

	m, err := newInspectorModel(s)
	require.NoError(t, err)
	assert.Nil(t, m.Init())

	press(t, m, "g")
	mem, ok := s.memory()
	require.True(t, ok)
	assert.Equal(t, uint32(2), mem.Pages)

	press(t, m, "G")
	assert.Equal(t, uint32(2), s.eng.Store().Memories().Resolve(m.scratch).Pages())

	press(t, m, "w")
	assert.Equal(t, uint32(scratchMarker), m.readMarker())
	press(t, m, "e")
	assert.Zero(t, m.readMarker())

	press(t, m, "+")
	assert.Equal(t, "43", s.global(s.globals[0]).Value)
	res, err := s.inst.Call(ctx, "get")
	require.NoError(t, err)
	assert.Equal(t, uint64(43), res[0])

	press(t, m, "j")
	assert.Equal(t, 1, m.selected)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "Error:")

	press(t, m, "r")
	view := m.View()
	assert.Contains(t, view, "WASM Store Inspector")
	assert.Contains(t, view, "counter")
	assert.Contains(t, view, "globals pulled from guest")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
}
