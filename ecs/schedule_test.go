package ecs_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type moveSystem struct {
	Positions  ecs.Write[Position]
	Velocities ecs.Read[Velocity]
	Moved      int
}

func (s *moveSystem) Name() string { return "Move" }

func (s *moveSystem) Execute(frame *ecs.UpdateFrame) error {
	s.Moved = 0
	for e, pos := range s.Positions.AllMut() {
		if vel, ok := s.Velocities.Get(e); ok {
			pos.X += vel.DX * float32(frame.DeltaTime)
			pos.Y += vel.DY * float32(frame.DeltaTime)
			s.Moved++
		}
	}
	return nil
}

type renderSystem struct {
	Positions ecs.Read[Position]
	Seen      int
}

func (s *renderSystem) Name() string { return "Render" }

func (s *renderSystem) Execute(frame *ecs.UpdateFrame) error {
	s.Seen = s.Positions.Len()
	return nil
}

type spawnSystem struct {
	Spawned []ecs.Entity
}

func (s *spawnSystem) Name() string { return "Spawn" }

func (s *spawnSystem) Execute(frame *ecs.UpdateFrame) error {
	if len(s.Spawned) == 0 {
		s.Spawned = append(s.Spawned, frame.Commands.Spawn(Position{}, Velocity{DX: 1, DY: 1}))
	}
	return nil
}

func register(t *testing.T, s *ecs.Scheduler, system ecs.System, opts ...ecs.SystemOption) ecs.SystemId {
	t.Helper()
	id, err := s.Register(system, opts...)
	require.NoError(t, err)
	return id
}

func TestScheduleBuild(t *testing.T) {
	t.Run("non-conflicting systems share the earliest stage", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, &moveSystem{})
		register(t, scheduler, &renderSystem{})
		register(t, scheduler, &spawnSystem{})

		schedule, err := scheduler.Build()
		require.NoError(t, err)

		assert.Equal(t, 2, schedule.Len())
		assert.Equal(t, "stage 0: Move, Spawn\nstage 1: Render\n", schedule.String())

		stage, ok := schedule.StageOf("Render")
		require.True(t, ok)
		assert.Equal(t, 1, stage)

		info, ok := schedule.System("Render")
		require.True(t, ok)
		assert.Equal(t, []ecs.SystemId{"Move"}, info.DependsOn)
		assert.Equal(t, []ecs.Claim{{Key: ecs.ComponentKey[Position](), Mode: ecs.AccessRead}}, info.Claims)
		assert.Equal(t, ecs.StateScheduleBuilt, scheduler.State())
	})

	t.Run("resource writers are ordered by registration", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("First", ecs.NewAccess().Write(ecs.ResourceKey[Counter]()), noop))
		register(t, scheduler, ecs.NewSystemFunc("Second", ecs.NewAccess().Write(ecs.ResourceKey[Counter]()), noop))

		first, err := scheduler.Build()
		require.NoError(t, err)
		assert.Equal(t, "stage 0: First\nstage 1: Second\n", first.String())

		var a, b bytes.Buffer
		require.NoError(t, first.WriteYAML(&a))
		for i := 0; i < 5; i++ {
			again, err := scheduler.Build()
			require.NoError(t, err)
			assert.Equal(t, first.String(), again.String())

			b.Reset()
			require.NoError(t, again.WriteYAML(&b))
			assert.Equal(t, a.String(), b.String())
		}
	})

	t.Run("explicit order overrides registration order", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("First", ecs.NewAccess().Write(ecs.ResourceKey[Counter]()), noop))
		register(t, scheduler, ecs.NewSystemFunc("Second", ecs.NewAccess().Write(ecs.ResourceKey[Counter]()), noop), ecs.Before("First"))

		schedule, err := scheduler.Build()
		require.NoError(t, err)
		assert.Equal(t, "stage 0: Second\nstage 1: First\n", schedule.String())
	})

	t.Run("transitive explicit order is respected", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("A", ecs.NewAccess().Write(ecs.ComponentKey[Position]()), noop))
		register(t, scheduler, ecs.NewSystemFunc("B", nil, noop), ecs.Before("A"))
		register(t, scheduler, ecs.NewSystemFunc("C", ecs.NewAccess().Read(ecs.ComponentKey[Position]()), noop), ecs.Before("B"))

		schedule, err := scheduler.Build()
		require.NoError(t, err)
		assert.Equal(t, "stage 0: C\nstage 1: B\nstage 2: A\n", schedule.String())
	})

	t.Run("after constraint without conflict", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("Late", nil, noop), ecs.After("Early"))
		register(t, scheduler, ecs.NewSystemFunc("Early", nil, noop))

		schedule, err := scheduler.Build()
		require.NoError(t, err)
		assert.Equal(t, "stage 0: Early\nstage 1: Late\n", schedule.String())
	})

	t.Run("cycle is a configuration error naming both systems", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("A", nil, noop), ecs.Before("B"))
		register(t, scheduler, ecs.NewSystemFunc("B", nil, noop), ecs.Before("A"))

		_, err := scheduler.Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ecs.ErrConfiguration)

		var cycle *ecs.CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []ecs.SystemId{"A", "B"}, cycle.Systems)
		assert.Contains(t, err.Error(), "A -> B -> A")
		assert.Nil(t, scheduler.Schedule())
		assert.Equal(t, ecs.StateIdle, scheduler.State())
	})

	t.Run("cycle fails the first frame before any system runs", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		ran := false
		register(t, scheduler, ecs.NewSystemFunc("A", nil, func(*ecs.UpdateFrame) error {
			ran = true
			return nil
		}), ecs.After("A"))

		err := scheduler.Once(0.016)
		assert.ErrorIs(t, err, ecs.ErrConfiguration)
		assert.False(t, ran)
	})

	t.Run("unknown ordering target", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("A", nil, noop), ecs.After("Missing"))

		_, err := scheduler.Build()
		var unknown *ecs.UnknownSystemError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, ecs.SystemId("A"), unknown.System)
		assert.Equal(t, ecs.SystemId("Missing"), unknown.Reference)
	})

	t.Run("duplicate identity", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, ecs.NewSystemFunc("A", nil, noop))

		_, err := scheduler.Register(ecs.NewSystemFunc("A", nil, noop))
		var dup *ecs.DuplicateSystemError
		require.True(t, errors.As(err, &dup))
		assert.ErrorIs(t, err, ecs.ErrConfiguration)

		id, err := scheduler.Register(ecs.NewSystemFunc("A", nil, noop), ecs.WithName("A2"))
		require.NoError(t, err)
		assert.Equal(t, ecs.SystemId("A2"), id)
	})

	t.Run("unregister rebuilds", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, &moveSystem{})
		register(t, scheduler, &renderSystem{})
		require.NoError(t, scheduler.Once(0))
		assert.Equal(t, 2, scheduler.Schedule().Len())

		assert.True(t, scheduler.Unregister("Move"))
		assert.False(t, scheduler.Unregister("Move"))
		require.NoError(t, scheduler.Once(0))
		assert.Equal(t, "stage 0: Render\n", scheduler.Schedule().String())
	})

	t.Run("yaml dump", func(t *testing.T) {
		scheduler, _ := newTestScheduler()
		register(t, scheduler, &moveSystem{})
		register(t, scheduler, &renderSystem{})
		register(t, scheduler, &spawnSystem{})
		schedule, err := scheduler.Build()
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, schedule.WriteYAML(&buf))

		var doc struct {
			Stages []struct {
				Stage   int `yaml:"stage"`
				Systems []struct {
					Name      string   `yaml:"name"`
					Reads     []string `yaml:"reads"`
					Writes    []string `yaml:"writes"`
					DependsOn []string `yaml:"depends_on"`
				} `yaml:"systems"`
			} `yaml:"stages"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc.Stages, 2)

		move := doc.Stages[0].Systems[0]
		assert.Equal(t, "Move", move.Name)
		assert.Equal(t, []string{"component ecs_test.Velocity"}, move.Reads)
		assert.Equal(t, []string{"component ecs_test.Position"}, move.Writes)

		render := doc.Stages[1].Systems[0]
		assert.Equal(t, "Render", render.Name)
		assert.Equal(t, []string{"Move"}, render.DependsOn)
	})
}

func noop(*ecs.UpdateFrame) error { return nil }
