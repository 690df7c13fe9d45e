package main

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/plus3/realm/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
)

func TestRandomComponents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 100 {
		components := randomComponents(rng, 3)
		assert.NotEmpty(t, components)
		assert.LessOrEqual(t, len(components), 3)
	}
	assert.Len(t, randomComponents(rng, 0), 1)
}

func TestStressWorld(t *testing.T) {
	scope := tally.NewTestScope("ecs", nil)
	scheduler, rng, err := newWorld(worldOptions{seed: 3, maxComponents: 4, churnRate: 0.1}, ecs.WithMetrics(scope))
	require.NoError(t, err)
	defer scheduler.Shutdown()

	populate(scheduler.Storage(), rng, 200, 4)
	for range 5 {
		require.NoError(t, scheduler.Once(0.016))
	}

	report := &Report{Entities: 200, Components: componentCount, Systems: systemCount}
	report.Collect(scheduler, scope, 3)

	assert.Equal(t, 200, report.FinalEntities)
	assert.Positive(t, report.CommandsApplied)
	assert.Zero(t, report.SystemErrors)
	assert.Len(t, report.Slowest, 3)
	assert.NotEmpty(t, report.RunID)

	var names []string
	for _, c := range report.Counters {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "ecs.commands.applied")

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	assert.Contains(t, buf.String(), "# ECS Stress Test Report")
	assert.Contains(t, buf.String(), "### Slowest Systems")
}

func TestStressSchedule(t *testing.T) {
	scheduler, _, err := newWorld(worldOptions{seed: 1, maxComponents: 1})
	require.NoError(t, err)
	defer scheduler.Shutdown()

	schedule, err := scheduler.Build()
	require.NoError(t, err)
	assert.Len(t, schedule.Systems(), systemCount+3)

	var buf bytes.Buffer
	require.NoError(t, schedule.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "EventTally")
	assert.Contains(t, buf.String(), "Churn")
}

func TestStatsFinalize(t *testing.T) {
	var s Stats
	s.Finalize()
	assert.Zero(t, s.Avg)

	for i := 1; i <= 100; i++ {
		s.Samples = append(s.Samples, time.Duration(i)*time.Millisecond)
	}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 99*time.Millisecond, s.P99)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ECS_STRESS_CHURN", "0.25")
	t.Setenv("ECS_STRESS_SLOWEST", "2")

	cfg, err := loadConfig(runCmd)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.Stress.ChurnRate, 1e-9)
	assert.Equal(t, 2, cfg.Stress.Slowest)

	require.NoError(t, runCmd.Flags().Set("slowest", "7"))
	t.Cleanup(func() {
		flag := runCmd.Flags().Lookup("slowest")
		flag.Changed = false
		_ = flag.Value.Set(flag.DefValue)
	})
	cfg, err = loadConfig(runCmd)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Stress.Slowest, "flags win over the environment")
}
