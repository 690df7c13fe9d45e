package ecs_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingResource struct {
	closed *[]string
	name   string
	err    error
}

func (r *closingResource) Close() error {
	*r.closed = append(*r.closed, r.name)
	return r.err
}

type otherClosingResource struct {
	closingResource
}

func TestResources(t *testing.T) {
	t.Run("insert replaces", func(t *testing.T) {
		res := ecs.NewResources()
		ecs.InsertResource(res, Gravity{Y: -1})
		ptr := ecs.ResourceMut[Gravity](res)

		ecs.InsertResource(res, Gravity{Y: -2})
		assert.Equal(t, 1, res.Len())

		got, ok := ecs.GetResource[Gravity](res)
		require.True(t, ok)
		assert.Equal(t, float32(-2), got.Y)
		assert.Same(t, ptr, ecs.ResourceMut[Gravity](res), "replacement keeps the address")
	})

	t.Run("get mut", func(t *testing.T) {
		res := ecs.NewResources()
		ecs.InsertResource(res, Counter{})
		ecs.ResourceMut[Counter](res).Value += 3

		got, _ := ecs.GetResource[Counter](res)
		assert.Equal(t, 3, got.Value)
	})

	t.Run("absent resource", func(t *testing.T) {
		res := ecs.NewResources()
		_, ok := ecs.GetResource[Gravity](res)
		assert.False(t, ok)
		assert.Nil(t, ecs.ResourceMut[Gravity](res))
		_, ok = ecs.RemoveResource[Gravity](res)
		assert.False(t, ok)
		assert.False(t, ecs.HasResource[Gravity](res))
	})

	t.Run("remove returns value", func(t *testing.T) {
		res := ecs.NewResources()
		ecs.InsertResource(res, Counter{Value: 7})

		got, ok := ecs.RemoveResource[Counter](res)
		require.True(t, ok)
		assert.Equal(t, 7, got.Value)
		assert.False(t, ecs.HasResource[Counter](res))
	})

	t.Run("type erased insert", func(t *testing.T) {
		res := ecs.NewResources()
		res.Insert(Counter{Value: 1})
		res.Insert(Counter{Value: 2})

		assert.Equal(t, &Counter{Value: 2}, res.Get(reflect.TypeFor[Counter]()))
		assert.True(t, res.Remove(reflect.TypeFor[Counter]()))
		assert.Nil(t, res.Get(reflect.TypeFor[Counter]()))
	})

	t.Run("types are sorted", func(t *testing.T) {
		res := ecs.NewResources()
		ecs.InsertResource(res, Gravity{})
		ecs.InsertResource(res, Counter{})

		assert.Equal(t, []reflect.Type{reflect.TypeFor[Counter](), reflect.TypeFor[Gravity]()}, res.Types())
	})

	t.Run("clear closes closers", func(t *testing.T) {
		var closed []string
		res := ecs.NewResources()
		ecs.InsertResource(res, closingResource{closed: &closed, name: "a"})
		ecs.InsertResource(res, &otherClosingResource{closingResource{closed: &closed, name: "b", err: errors.New("boom")}})
		ecs.InsertResource(res, Gravity{})

		err := res.Clear()
		assert.ErrorContains(t, err, "boom")
		assert.ElementsMatch(t, []string{"a", "b"}, closed)
		assert.Equal(t, 0, res.Len())
	})
}
