package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntity(t *testing.T) {
	e := ecs.NewEntity(7, 2)
	assert.Equal(t, uint32(7), e.Index())
	assert.Equal(t, uint32(2), e.Generation())
	assert.Equal(t, "7v2", e.String())
	assert.False(t, e.IsZero())
	assert.True(t, ecs.Entity(0).IsZero())
}

func TestEntityRegistry(t *testing.T) {
	t.Run("create allocates sequential indices", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		a := r.Create()
		b := r.Create()
		c := r.Create()

		assert.Equal(t, uint32(0), a.Index())
		assert.Equal(t, uint32(1), b.Index())
		assert.Equal(t, uint32(2), c.Index())
		assert.Equal(t, uint32(1), a.Generation())
		assert.Equal(t, 3, r.Len())
	})

	t.Run("destroy invalidates and bumps generation", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		e := r.Create()

		require.True(t, r.Destroy(e))
		assert.False(t, r.IsAlive(e))
		assert.Equal(t, 0, r.Len())

		reused := r.Create()
		assert.Equal(t, e.Index(), reused.Index())
		assert.Equal(t, e.Generation()+1, reused.Generation())
		assert.True(t, r.IsAlive(reused))
		assert.False(t, r.IsAlive(e), "stale handle must not alias the new entity")
	})

	t.Run("stale destroy is a no-op", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		e := r.Create()
		require.True(t, r.Destroy(e))
		reused := r.Create()

		assert.False(t, r.Destroy(e))
		assert.True(t, r.IsAlive(reused))
		assert.Equal(t, 1, r.Len())
	})

	t.Run("unknown entity", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		assert.False(t, r.IsAlive(ecs.NewEntity(42, 1)))
		assert.False(t, r.Destroy(ecs.NewEntity(42, 1)))
		assert.False(t, r.IsAlive(ecs.Entity(0)))
	})

	t.Run("reuses lowest free index", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		var entities []ecs.Entity
		for i := 0; i < 6; i++ {
			entities = append(entities, r.Create())
		}
		r.Destroy(entities[4])
		r.Destroy(entities[1])
		r.Destroy(entities[3])

		assert.Equal(t, uint32(1), r.Create().Index())
		assert.Equal(t, uint32(3), r.Create().Index())
		assert.Equal(t, uint32(4), r.Create().Index())
		assert.Equal(t, uint32(6), r.Create().Index())
	})

	t.Run("reserved entities are not alive", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		e := r.Reserve()
		assert.False(t, r.IsAlive(e))
		assert.Equal(t, 0, r.Len())

		next := r.Create()
		assert.NotEqual(t, e.Index(), next.Index())
	})

	t.Run("all yields live entities in index order", func(t *testing.T) {
		r := ecs.NewEntityRegistry()
		a := r.Create()
		b := r.Create()
		c := r.Create()
		r.Destroy(b)

		assert.Equal(t, []ecs.Entity{a, c}, slices.Collect(r.All()))
		assert.Equal(t, 3, r.Capacity())
	})
}

func TestPendingCommandPinsIndex(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	commands := ecs.NewCommands(storage)

	e := storage.Spawn(Position{})
	commands.AddComponent(e, Velocity{DX: 1})

	require.True(t, storage.Despawn(e))
	fresh := storage.Spawn(Health{})
	assert.NotEqual(t, e.Index(), fresh.Index(), "index referenced by a pending command must not be recycled")

	applied, skipped := commands.Flush()
	assert.Equal(t, 0, applied)
	assert.Equal(t, 1, skipped)

	recycled := storage.Spawn(Health{})
	assert.Equal(t, e.Index(), recycled.Index())
	assert.Equal(t, e.Generation()+1, recycled.Generation())
}
