package main

import (
	"math/rand"

	"github.com/plus3/realm/ecs"
	"github.com/rotisserie/eris"
)

//go:generate go run . generate --components 16 --systems 8 --seed 1 --out zz_generated.go

// StressEvent is sent by every fourth generated system when a value wraps.
type StressEvent struct {
	Entity ecs.Entity
	System int
}

// EventTally counts StressEvents read by the tally system.
type EventTally struct {
	Count int64
}

type eventTallySystem struct {
	Events ecs.EventReader[StressEvent]
	Tally  ecs.ResMut[EventTally] `ecs:"required"`
}

func (s *eventTallySystem) Name() string { return "EventTally" }

func (s *eventTallySystem) Execute(frame *ecs.UpdateFrame) error {
	s.Tally.Get().Count += int64(s.Events.Len())
	return nil
}

// churnSystem despawns a fraction of the live entities each frame and spawns
// the same number of fresh ones through the command buffer.
type churnSystem struct {
	Entities ecs.Entities

	rate          float64
	maxComponents int
	rng           *rand.Rand
}

func (s *churnSystem) Name() string { return "Churn" }

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) error {
	if s.rate <= 0 {
		return nil
	}
	for e := range s.Entities.All() {
		if s.rng.Float64() >= s.rate {
			continue
		}
		frame.Commands.Despawn(e)
		frame.Commands.Spawn(randomComponents(s.rng, s.maxComponents)...)
	}
	return nil
}

// randomComponents returns between 1 and limit distinct generated components.
func randomComponents(rng *rand.Rand, limit int) []any {
	limit = min(max(limit, 1), len(componentFactories))
	n := rng.Intn(limit) + 1
	components := make([]any, n)
	for i, idx := range rng.Perm(len(componentFactories))[:n] {
		components[i] = componentFactories[idx](rng)
	}
	return components
}

type worldOptions struct {
	seed          int64
	maxComponents int
	churnRate     float64
}

// newWorld registers the generated components and systems plus the churn and
// event tally systems on a fresh scheduler.
func newWorld(opts worldOptions, schedulerOpts ...ecs.SchedulerOption) (*ecs.Scheduler, *rand.Rand, error) {
	registry := ecs.NewComponentRegistry()
	RegisterAllGeneratedComponents(registry)
	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage, schedulerOpts...)

	ecs.AddEvent[StressEvent](scheduler)
	ecs.InitResource[EventTally](scheduler)

	if err := RegisterAllGeneratedSystems(scheduler); err != nil {
		return nil, nil, eris.Wrap(err, "register generated systems")
	}

	rng := rand.New(rand.NewSource(opts.seed))
	err := scheduler.AddPlugins(
		ecs.FrameStatsPlugin,
		ecs.PluginFunc(func(s *ecs.Scheduler) error {
			if _, err := s.Register(&eventTallySystem{}); err != nil {
				return err
			}
			_, err := s.Register(&churnSystem{
				rate:          opts.churnRate,
				maxComponents: opts.maxComponents,
				rng:           rng,
			})
			return err
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return scheduler, rng, nil
}

// populate spawns count entities directly into storage.
func populate(storage *ecs.Storage, rng *rand.Rand, count, maxComponents int) {
	for i := 0; i < count; i++ {
		storage.Spawn(randomComponents(rng, maxComponents)...)
	}
}
