package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/wasm-store/errors"
)

type person struct {
	name string
	age  int
}

func TestEntities_TwoArenas(t *testing.T) {
	id := NewStoreID()
	people := NewEntities(NewResolver(id, "person", NewBackend[GlobalIdx, person](ModeLocal, "person"), nil))
	ages := NewEntities(NewResolver(id, "age", NewBackend[MemoryIdx, int](ModeLocal, "age"), nil))

	alice := people.Wrap(people.Alloc(person{name: "alice", age: 30}))
	bob := people.Wrap(people.Alloc(person{name: "bob", age: 25}))
	total := ages.Wrap(ages.Alloc(0))

	people.Each(func(_ Stored[GlobalIdx], p person) bool {
		ages.Update(total, func(v *int) { *v += p.age })
		return true
	})
	assert.Equal(t, 55, ages.Resolve(total))

	older := UpdateWith(people, bob, func(p *person) int {
		p.age++
		return p.age
	})
	assert.Equal(t, 26, older)
	assert.Equal(t, "alice", people.Resolve(alice).name)
	assert.Equal(t, 26, people.Resolve(bob).age)
	assert.Equal(t, id, people.StoreID())
	assert.Equal(t, 2, people.Len())
}

func TestEntities_Clone(t *testing.T) {
	id := NewStoreID()
	e := NewEntities(NewResolver(id, "int", NewBackend[GlobalIdx, int](ModeLocal, "int"), nil))
	h := e.Wrap(e.Alloc(1))

	c := e.Clone()
	c.Update(h, func(v *int) { *v = 7 })
	assert.Equal(t, 7, e.Resolve(h))
}

func TestEntities_WrongGoroutine(t *testing.T) {
	for _, mode := range []Mode{ModeLocal, ModeShared} {
		t.Run(mode.String(), func(t *testing.T) {
			id := NewStoreID()
			e := NewEntities(NewResolver(id, "int", NewBackend[GlobalIdx, int](mode, "int"), nil))
			h := e.Wrap(e.Alloc(1))

			var g errgroup.Group
			var got *errors.Error
			g.Go(func() error {
				defer func() {
					got = errors.FromPanic(recover())
				}()
				e.Resolve(h)
				return nil
			})
			require.NoError(t, g.Wait())
			require.NotNil(t, got)
			assert.ErrorIs(t, got, ErrWrongGoroutine)

			// the owner can still use it
			assert.Equal(t, 1, e.Resolve(h))
		})
	}
}

func TestGoroutineID(t *testing.T) {
	main := goroutineID()
	assert.NotZero(t, main)
	assert.Equal(t, main, goroutineID())

	var other uint64
	var g errgroup.Group
	g.Go(func() error {
		other = goroutineID()
		return nil
	})
	require.NoError(t, g.Wait())
	assert.NotZero(t, other)
	assert.NotEqual(t, main, other)
}
