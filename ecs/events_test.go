package ecs_test

import (
	"slices"
	"testing"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collisionWriter struct {
	Collisions ecs.EventWriter[Collision]
	SendOn     map[uint64]Collision
}

func (s *collisionWriter) Execute(frame *ecs.UpdateFrame) error {
	if c, ok := s.SendOn[frame.Frame]; ok {
		s.Collisions.Send(c)
	}
	return nil
}

type collisionReader struct {
	Collisions ecs.EventReader[Collision]
	Seen       map[uint64][]Collision
}

func (s *collisionReader) Execute(frame *ecs.UpdateFrame) error {
	if s.Seen == nil {
		s.Seen = make(map[uint64][]Collision)
	}
	s.Seen[frame.Frame] = slices.Collect(s.Collisions.Read())
	return nil
}

func TestEvents(t *testing.T) {
	t.Run("events are readable exactly one frame later", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		first := Collision{A: ecs.NewEntity(1, 1), B: ecs.NewEntity(2, 1)}
		writer := &collisionWriter{SendOn: map[uint64]Collision{0: first}}
		reader := &collisionReader{}
		register(t, scheduler, writer)
		register(t, scheduler, reader)

		for i := 0; i < 3; i++ {
			require.NoError(t, scheduler.Once(0.016))
		}

		assert.Empty(t, reader.Seen[0], "not visible in the frame it was sent")
		assert.Equal(t, []Collision{first}, reader.Seen[1])
		assert.Empty(t, reader.Seen[2], "cleared after one frame")

		stage, _ := scheduler.Schedule().StageOf("collisionReader")
		assert.Equal(t, 1, stage, "reader conflicts with the writer on the event queue")
	})

	t.Run("host publish and subscribe", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		var received []Collision
		ecs.SubscribeEvents(scheduler, func(c Collision) {
			received = append(received, c)
		})

		ecs.SendEvent(scheduler, Collision{A: ecs.NewEntity(5, 1)})
		assert.Empty(t, slices.Collect(ecs.ReadEvents[Collision](scheduler)))

		require.NoError(t, scheduler.Once(0.016))
		assert.Len(t, received, 1, "subscribers fire when the event becomes readable")
		assert.Len(t, slices.Collect(ecs.ReadEvents[Collision](scheduler)), 1)

		require.NoError(t, scheduler.Once(0.016))
		assert.Len(t, received, 1)
		assert.Empty(t, slices.Collect(ecs.ReadEvents[Collision](scheduler)))
	})

	t.Run("read events of an unknown type", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		assert.Empty(t, slices.Collect(ecs.ReadEvents[int](scheduler)))
	})

	t.Run("add event is idempotent", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		ecs.AddEvent[Collision](scheduler)
		ecs.SendEvent(scheduler, Collision{})
		ecs.AddEvent[Collision](scheduler)

		events := ecs.ResourceMut[ecs.Events[Collision]](scheduler.Resources())
		require.NotNil(t, events)
		assert.Equal(t, 1, events.Pending())

		require.NoError(t, scheduler.Once(0))
		assert.Equal(t, 1, events.Len(), "swapped once per frame")
	})

	t.Run("removed events resource is restored", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		ecs.AddEvent[Collision](scheduler)
		_, removed := ecs.RemoveResource[ecs.Events[Collision]](scheduler.Resources())
		require.True(t, removed)

		var got []Collision
		require.NotPanics(t, func() {
			ecs.SendEvent(scheduler, Collision{A: ecs.NewEntity(1, 1)})
			ecs.SubscribeEvents(scheduler, func(c Collision) { got = append(got, c) })
		})
		require.True(t, ecs.HasResource[ecs.Events[Collision]](scheduler.Resources()))

		require.NoError(t, scheduler.Once(0))
		assert.Equal(t, []Collision{{A: ecs.NewEntity(1, 1)}}, got)
	})
}
