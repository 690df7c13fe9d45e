// Package config loads host configuration for programs built on the ecs
// package: runner policy, logging, metrics and stress-test parameters.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/plus3/realm/ecs"
	"github.com/rotisserie/eris"
)

type Config struct {
	Runner  RunnerConfig  `toml:"runner"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
	Stress  StressConfig  `toml:"stress"`
}

type RunnerConfig struct {
	TickRate          time.Duration `toml:"tick_rate"`
	FailOnSystemError bool          `toml:"fail_on_system_error"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix"`
}

type StressConfig struct {
	Duration               time.Duration `toml:"duration"`
	Entities               int           `toml:"entities"`
	MaxComponentsPerEntity int           `toml:"max_components_per_entity"`
	Seed                   int64         `toml:"seed"`
	Profile                string        `toml:"profile"` // "", "cpu" or "mem"
	ProfilePath            string        `toml:"profile_path"`
	GCPauseMetrics         bool          `toml:"gc_pause_metrics"`
	ChurnRate              float64       `toml:"churn_rate"`
	Slowest                int           `toml:"slowest"`
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			TickRate: time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Prefix:  "ecs",
		},
		Stress: StressConfig{
			Duration:               10 * time.Second,
			Entities:               10000,
			MaxComponentsPerEntity: 5,
			Seed:                   1,
			ProfilePath:            ".",
			ChurnRate:              0.001,
			Slowest:                5,
		},
	}
}

func (c *Config) Validate() error {
	if c.Runner.TickRate <= 0 {
		return eris.Errorf("runner.tick_rate must be positive, got %s", c.Runner.TickRate)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return eris.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	switch c.Stress.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("stress.profile must be cpu or mem, got %q", c.Stress.Profile)
	}
	if c.Stress.Entities < 0 {
		return eris.Errorf("stress.entities must not be negative, got %d", c.Stress.Entities)
	}
	if c.Stress.MaxComponentsPerEntity < 1 {
		return eris.Errorf("stress.max_components_per_entity must be at least 1, got %d", c.Stress.MaxComponentsPerEntity)
	}
	if c.Stress.ChurnRate < 0 || c.Stress.ChurnRate > 1 {
		return eris.Errorf("stress.churn_rate must be between 0 and 1, got %g", c.Stress.ChurnRate)
	}
	if c.Stress.Slowest < 0 {
		return eris.Errorf("stress.slowest must not be negative, got %d", c.Stress.Slowest)
	}
	return nil
}

// Options maps the runner policy to scheduler options.
func (c RunnerConfig) Options() []ecs.SchedulerOption {
	return []ecs.SchedulerOption{
		ecs.WithFailOnSystemError(c.FailOnSystemError),
	}
}
