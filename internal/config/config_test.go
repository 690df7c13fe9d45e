package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/realm/ecs"
	"github.com/plus3/realm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realm.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
[runner]
tick_rate = "20ms"
fail_on_system_error = true

[logging]
level = "debug"
format = "json"

[stress]
entities = 500
profile = "cpu"
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, 20*time.Millisecond, cfg.Runner.TickRate)
		assert.True(t, cfg.Runner.FailOnSystemError)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, 500, cfg.Stress.Entities)
		assert.Equal(t, "cpu", cfg.Stress.Profile)

		assert.Equal(t, 10*time.Second, cfg.Stress.Duration, "unset keys keep defaults")
		assert.Equal(t, "ecs", cfg.Metrics.Prefix)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[runner\n"))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[logging]\nformat = \"xml\"\n"))
		assert.ErrorContains(t, err, "logging.format")

		_, err = config.Load(writeConfig(t, "[stress]\nprofile = \"trace\"\n"))
		assert.ErrorContains(t, err, "stress.profile")

		_, err = config.Load(writeConfig(t, "[stress]\nchurn_rate = 1.5\n"))
		assert.ErrorContains(t, err, "stress.churn_rate")
	})
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Runner.TickRate = 0
	assert.Error(t, cfg.Validate())
}

func TestRunnerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Runner.FailOnSystemError = true

	scheduler := ecs.NewScheduler(ecs.NewStorage(ecs.NewComponentRegistry()), cfg.Runner.Options()...)
	_, err := scheduler.Register(ecs.NewSystemFunc("Failing", nil, func(*ecs.UpdateFrame) error {
		return errors.New("boom")
	}))
	require.NoError(t, err)

	var sysErr *ecs.SystemError
	assert.True(t, errors.As(scheduler.Once(0), &sysErr))
}
