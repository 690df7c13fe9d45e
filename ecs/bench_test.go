package ecs_test

import (
	"fmt"
	"testing"

	"github.com/plus3/realm/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkDespawn(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())

	ids := make([]ecs.Entity, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = storage.Spawn(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.Despawn(ids[i])
	}
}

func BenchmarkGetComponent(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	e := storage.Spawn(Position{X: 1.0, Y: 2.0})
	positions := ecs.Store[Position](storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = positions.Get(e)
	}
}

func BenchmarkQueryIter(b *testing.B) {
	for _, n := range []int{100, 10000} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			storage := ecs.NewStorage(newTestRegistry())
			for i := 0; i < n; i++ {
				if i%2 == 0 {
					storage.Spawn(Position{}, Velocity{DX: 1, DY: 1})
				} else {
					storage.Spawn(Position{})
				}
			}
			query, err := ecs.NewQuery[struct {
				Pos *Position
				Vel *Velocity `ecs:"read"`
			}](storage)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for m := range query.Values() {
					m.Pos.X += m.Vel.DX
				}
			}
		})
	}
}

func BenchmarkCommandsFlush(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	commands := ecs.NewCommands(storage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := commands.Spawn(Position{}, Health{Current: 10, Max: 10})
		commands.Despawn(e)
		commands.Flush()
	}
}

type benchMovementSystem struct {
	Pos ecs.Write[Position]
	Vel ecs.Read[Velocity]
}

func (s *benchMovementSystem) Execute(frame *ecs.UpdateFrame) error {
	for e, pos := range s.Pos.AllMut() {
		if vel, ok := s.Vel.Get(e); ok {
			pos.X += vel.DX * float32(frame.DeltaTime)
			pos.Y += vel.DY * float32(frame.DeltaTime)
		}
	}
	return nil
}

type benchHealthSystem struct {
	Health ecs.Write[Health]
}

func (s *benchHealthSystem) Execute(frame *ecs.UpdateFrame) error {
	for _, h := range s.Health.AllMut() {
		h.Current = min(h.Current+1, h.Max)
	}
	return nil
}

func BenchmarkSchedulerOnce(b *testing.B) {
	scheduler, storage := newTestScheduler()
	for i := 0; i < 1000; i++ {
		storage.Spawn(Position{}, Velocity{DX: 1, DY: 1}, Health{Current: 1, Max: 100})
	}
	if _, err := scheduler.Register(&benchMovementSystem{}); err != nil {
		b.Fatal(err)
	}
	if _, err := scheduler.Register(&benchHealthSystem{}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := scheduler.Once(0.016); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	scheduler, _ := newTestScheduler()
	for i := 0; i < 50; i++ {
		var system ecs.System = &benchMovementSystem{}
		if i%2 == 1 {
			system = &benchHealthSystem{}
		}
		if _, err := scheduler.Register(system, ecs.WithName(fmt.Sprintf("system-%d", i))); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduler.Unregister("system-0")
		if _, err := scheduler.Register(&benchMovementSystem{}, ecs.WithName("system-0")); err != nil {
			b.Fatal(err)
		}
		if _, err := scheduler.Build(); err != nil {
			b.Fatal(err)
		}
	}
}
