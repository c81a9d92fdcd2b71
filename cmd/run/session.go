package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-store/engine"
	"github.com/wippyai/wasm-store/store"
)

// session is one instantiated module with its imported globals.
// It must be used from the goroutine that opened it.
type session struct {
	eng     *engine.Engine
	inst    *engine.Instance
	path    string
	globals []namedGlobal
}

type namedGlobal struct {
	name   string
	handle store.Global
}

type report struct {
	File      string         `json:"file"`
	Memory    *memoryReport  `json:"memory,omitempty"`
	Functions []string       `json:"functions"`
	Globals   []globalReport `json:"globals"`
}

type memoryReport struct {
	Pages    uint32 `json:"pages"`
	MinPages uint32 `json:"min_pages"`
	MaxPages uint32 `json:"max_pages"`
	Bytes    int    `json:"bytes"`
}

type globalReport struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Value   string `json:"value"`
	Mutable bool   `json:"mutable"`
}

func openSession(ctx context.Context, path string, globals []string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	eng, err := engine.New(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	inst, err := eng.Instantiate(ctx, "", data)
	if err != nil {
		_ = eng.Close(ctx)
		return nil, err
	}

	s := &session{eng: eng, inst: inst, path: path}
	for _, name := range globals {
		h, err := inst.ImportGlobal(name)
		if err != nil {
			_ = eng.Close(ctx)
			return nil, err
		}
		s.globals = append(s.globals, namedGlobal{name: name, handle: h})
	}
	return s, nil
}

func (s *session) memory() (memoryReport, bool) {
	h, ok := s.inst.Memory()
	if !ok {
		return memoryReport{}, false
	}
	return memoryOf(s.eng.Store().Memories().Resolve(h)), true
}

func memoryOf(m store.MemoryEntity) memoryReport {
	return memoryReport{
		Pages:    m.Pages(),
		MinPages: m.MinPages,
		MaxPages: m.Limit(),
		Bytes:    m.Buf.Len(),
	}
}

func (s *session) global(g namedGlobal) globalReport {
	e := s.eng.Store().Globals().Resolve(g.handle)
	return globalReport{
		Name:    g.name,
		Type:    api.ValueTypeName(e.Type),
		Value:   e.Value(),
		Mutable: e.Mutable,
	}
}

func (s *session) report() report {
	r := report{
		File:      s.path,
		Functions: s.inst.Functions(),
		Globals:   []globalReport{},
	}
	if m, ok := s.memory(); ok {
		r.Memory = &m
	}
	for _, g := range s.globals {
		r.Globals = append(r.Globals, s.global(g))
	}
	return r
}

// increment adds one to a mutable integer global and pushes it to the guest.
func (s *session) increment(g namedGlobal) error {
	err := store.UpdateWith(s.eng.Store().Globals(), g.handle, func(e *store.GlobalEntity) error {
		next := e.Bits + 1
		if e.Type == api.ValueTypeI32 {
			next = api.EncodeI32(api.DecodeI32(e.Bits) + 1)
		} else if e.Type != api.ValueTypeI64 {
			return fmt.Errorf("cannot increment %s global", api.ValueTypeName(e.Type))
		}
		return e.Set(next)
	})
	if err != nil {
		return err
	}
	return s.inst.PushGlobal(g.name, g.handle)
}

func (s *session) pullAll() error {
	for _, g := range s.globals {
		if err := s.inst.PullGlobal(g.name, g.handle); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) close(ctx context.Context) error {
	return s.eng.Close(ctx)
}
