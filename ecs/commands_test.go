package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	t.Run("spawn reserves an entity alive after flush", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		e := commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
		assert.False(t, storage.IsAlive(e))
		assert.Nil(t, ecs.ReadComponent[Position](storage, e))
		assert.Equal(t, 1, commands.Len())

		applied, skipped := commands.Flush()
		assert.Equal(t, 1, applied)
		assert.Equal(t, 0, skipped)
		assert.Equal(t, 0, commands.Len())

		require.True(t, storage.IsAlive(e))
		assert.Equal(t, float32(2), ecs.ReadComponent[Position](storage, e).Y)
	})

	t.Run("fifo order", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)
		e := storage.Spawn(Position{})

		commands.AddComponent(e, Health{Current: 1, Max: 10})
		commands.AddComponent(e, Health{Current: 2, Max: 10})
		commands.RemoveComponent(e, reflect.TypeFor[Position]())
		commands.Flush()

		assert.Equal(t, 2, ecs.ReadComponent[Health](storage, e).Current)
		assert.Nil(t, ecs.ReadComponent[Position](storage, e))
	})

	t.Run("despawn then add skips the add", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)
		e := storage.Spawn(Position{})

		commands.Despawn(e)
		commands.AddComponent(e, Velocity{})
		applied, skipped := commands.Flush()

		assert.Equal(t, 1, applied)
		assert.Equal(t, 1, skipped)
		assert.False(t, storage.IsAlive(e))
		assert.Equal(t, 0, ecs.Store[Velocity](storage).Len())
	})

	t.Run("spawned entity can be referenced before flush", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		parent := commands.Spawn(Name{Value: "parent"})
		commands.AddComponent(parent, Health{Current: 3})
		ecs.RemoveComponentOf[Name](commands, parent)
		commands.Flush()

		assert.Nil(t, ecs.ReadComponent[Name](storage, parent))
		assert.Equal(t, 3, ecs.ReadComponent[Health](storage, parent).Current)
	})

	t.Run("spawn then despawn in one flush", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		e := commands.Spawn(Position{})
		commands.Despawn(e)
		commands.Flush()

		assert.False(t, storage.IsAlive(e))
		assert.Equal(t, 0, storage.Entities().Len())
	})

	t.Run("resources and deferred functions", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		var order []string
		commands.InsertResource(Counter{Value: 1})
		commands.Defer(func() { order = append(order, "defer") })
		commands.Apply(func(s *ecs.Storage) {
			counter := ecs.ResourceMut[Counter](s.Resources())
			order = append(order, "apply")
			counter.Value++
		})
		commands.RemoveResource(reflect.TypeFor[Gravity]())
		applied, skipped := commands.Flush()

		assert.Equal(t, []string{"defer", "apply"}, order)
		assert.Equal(t, 3, applied)
		assert.Equal(t, 1, skipped, "removing an absent resource is skipped")
		counter, ok := ecs.GetResource[Counter](storage.Resources())
		require.True(t, ok)
		assert.Equal(t, 2, counter.Value)
	})

	t.Run("commands queued while flushing are applied in the same flush", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		var spawned ecs.Entity
		commands.Defer(func() {
			spawned = commands.Spawn(Tag("late"))
		})
		applied, _ := commands.Flush()

		assert.Equal(t, 2, applied)
		assert.True(t, storage.IsAlive(spawned))
	})

	t.Run("panicking command does not stop the flush", func(t *testing.T) {
		storage := ecs.NewStorage(newTestRegistry())
		commands := ecs.NewCommands(storage)

		commands.Defer(func() { panic("bad closure") })
		e := commands.Spawn(Tag("after"))
		applied, skipped := commands.Flush()

		assert.Equal(t, 1, applied)
		assert.Equal(t, 1, skipped)
		assert.True(t, storage.IsAlive(e))
		assert.Equal(t, 0, commands.Len())
		require.Len(t, commands.Failures(), 1)
		assert.Equal(t, "defer", commands.Failures()[0].Command)
		assert.Contains(t, commands.Failures()[0].Error(), "bad closure")

		commands.Flush()
		assert.Empty(t, commands.Failures())
	})

	t.Run("unregistered component panics at enqueue", func(t *testing.T) {
		storage := ecs.NewStorage(ecs.NewComponentRegistry())
		commands := ecs.NewCommands(storage)

		assert.Panics(t, func() { commands.Spawn(Position{}) })
		assert.Equal(t, 0, commands.Len())
	})
}
