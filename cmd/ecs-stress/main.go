// Command ecs-stress drives a scheduler with a large generated set of
// components and systems and reports frame timings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/realm/ecs"
	"github.com/plus3/realm/internal/config"
	"github.com/plus3/realm/internal/logging"
	"github.com/plus3/realm/internal/stressgen"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

const envPrefix = "ECS_STRESS"

var (
	// configFile is set by the --config flag.
	configFile string

	v = viper.New()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecs-stress",
	Short: "Stress test the ECS scheduler",
	Long: `ecs-stress runs a scheduler over generated components and systems and
prints a report of frame timings, command throughput and memory use.

Settings come from the TOML file given with --config, then ECS_STRESS_*
environment variables, then flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML config file")

	runCmd.Flags().Duration("duration", 0, "total run time")
	runCmd.Flags().Int("entities", 0, "initial number of entities")
	runCmd.Flags().Int("max-components", 0, "maximum components per entity")
	runCmd.Flags().Int64("seed", 0, "random seed")
	runCmd.Flags().Float64("churn", 0, "fraction of entities respawned each frame")
	runCmd.Flags().String("profile", "", "profile mode: cpu or mem")
	runCmd.Flags().Bool("gc-pause-metrics", false, "include GC pause metrics in the report")
	runCmd.Flags().Int("slowest", 0, "number of slowest systems to report")

	scheduleCmd.Flags().StringP("out", "o", "", "write the schedule to a file instead of stdout")

	generateCmd.Flags().Int("components", componentCount, "number of component types")
	generateCmd.Flags().Int("systems", systemCount, "number of systems")
	generateCmd.Flags().Int64("seed", 1, "seed for system component pairs")
	generateCmd.Flags().String("package", "main", "package name of the generated file")
	generateCmd.Flags().StringP("out", "o", "zz_generated.go", "output file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(generateCmd)
}

// loadConfig reads the config file, if any, and layers environment variables
// and changed flags of cmd on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("duration", cfg.Stress.Duration)
	v.SetDefault("entities", cfg.Stress.Entities)
	v.SetDefault("max-components", cfg.Stress.MaxComponentsPerEntity)
	v.SetDefault("seed", cfg.Stress.Seed)
	v.SetDefault("profile", cfg.Stress.Profile)
	v.SetDefault("gc-pause-metrics", cfg.Stress.GCPauseMetrics)
	v.SetDefault("churn", cfg.Stress.ChurnRate)
	v.SetDefault("slowest", cfg.Stress.Slowest)
	v.SetDefault("log-level", cfg.Logging.Level)
	v.SetDefault("fail-on-system-error", cfg.Runner.FailOnSystemError)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, eris.Wrap(err, "bind flags")
	}

	cfg.Stress.Duration = v.GetDuration("duration")
	cfg.Stress.Entities = v.GetInt("entities")
	cfg.Stress.MaxComponentsPerEntity = v.GetInt("max-components")
	cfg.Stress.Seed = v.GetInt64("seed")
	cfg.Stress.Profile = v.GetString("profile")
	cfg.Stress.GCPauseMetrics = v.GetBool("gc-pause-metrics")
	cfg.Stress.ChurnRate = v.GetFloat64("churn")
	cfg.Stress.Slowest = v.GetInt("slowest")
	cfg.Logging.Level = v.GetString("log-level")
	cfg.Runner.FailOnSystemError = v.GetBool("fail-on-system-error")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newScope returns a snapshotting root scope, or a no-op scope when metrics
// are disabled.
func newScope(cfg config.MetricsConfig) (tally.Scope, func()) {
	if !cfg.Enabled {
		return tally.NoopScope, func() {}
	}
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   cfg.Prefix,
		Reporter: tally.NullStatsReporter,
	}, time.Second)
	return scope, func() { closer.Close() }
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the stress loop and print a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return eris.Wrap(err, "build logger")
		}
		defer logger.Sync()

		switch cfg.Stress.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Stress.ProfilePath), profile.Quiet).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.Stress.ProfilePath), profile.Quiet).Stop()
		}

		scope, closeScope := newScope(cfg.Metrics)
		defer closeScope()

		opts := append(cfg.Runner.Options(), ecs.WithLogger(logger), ecs.WithMetrics(scope))
		scheduler, rng, err := newWorld(worldOptions{
			seed:          cfg.Stress.Seed,
			maxComponents: cfg.Stress.MaxComponentsPerEntity,
			churnRate:     cfg.Stress.ChurnRate,
		}, opts...)
		if err != nil {
			return err
		}
		defer scheduler.Shutdown()

		logger.Info("populating storage", zap.Int("entities", cfg.Stress.Entities))
		populate(scheduler.Storage(), rng, cfg.Stress.Entities, cfg.Stress.MaxComponentsPerEntity)

		report := &Report{
			Duration:       cfg.Stress.Duration,
			Entities:       cfg.Stress.Entities,
			Components:     componentCount,
			Systems:        systemCount,
			ChurnRate:      cfg.Stress.ChurnRate,
			GCPauseMetrics: cfg.Stress.GCPauseMetrics,
		}
		runtime.ReadMemStats(&report.MemStatsStart)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, cfg.Stress.Duration)
		defer cancel()

		logger.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration))
		startTime := time.Now()
		lastFrameTime := startTime

	Loop:
		for {
			select {
			case <-ctx.Done():
				break Loop
			default:
				deltaTime := time.Since(lastFrameTime)
				lastFrameTime = time.Now()

				updateStart := time.Now()
				if err := scheduler.Once(deltaTime.Seconds()); err != nil {
					return eris.Wrapf(err, "frame %d", scheduler.Frame())
				}
				report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
				report.TotalUpdates++
			}
		}

		report.TotalTime = time.Since(startTime)
		report.UpdateTime.Finalize()
		runtime.ReadMemStats(&report.MemStatsEnd)
		report.Collect(scheduler, scope, cfg.Stress.Slowest)

		logger.Info("simulation finished", zap.Int64("updates", report.TotalUpdates))

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n--- Stress Test Report ---")
		if err := report.Generate(out); err != nil {
			return eris.Wrap(err, "generate report")
		}
		fmt.Fprintln(out, "--- End of Report ---")
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the stage layout of the generated systems as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		scheduler, _, err := newWorld(worldOptions{seed: 1, maxComponents: 1})
		if err != nil {
			return err
		}
		defer scheduler.Shutdown()

		schedule, err := scheduler.Build()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return eris.Wrapf(err, "create %s", path)
			}
			defer f.Close()
			out = f
		}
		return schedule.WriteYAML(out)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the component and system declarations",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		components, _ := flags.GetInt("components")
		systems, _ := flags.GetInt("systems")
		seed, _ := flags.GetInt64("seed")
		pkg, _ := flags.GetString("package")
		path, _ := flags.GetString("out")

		src, err := stressgen.Generate(stressgen.Config{
			Package:    pkg,
			Components: components,
			Systems:    systems,
			Seed:       seed,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d components and %d systems to %s\n", components, systems, path)
		return nil
	},
}
