package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/template"
	"time"

	"github.com/plus3/realm/ecs"
	"github.com/uber-go/tally/v4"
)

type Report struct {
	// Configuration
	RunID      string
	Duration   time.Duration
	Entities   int
	Components int
	Systems    int
	Stages     int
	ChurnRate  float64

	// Results
	TotalUpdates    int64
	TotalTime       time.Duration
	UpdateTime      Stats
	FinalEntities   int
	AverageFPS      float64
	CommandsApplied int64
	CommandsSkipped int64
	SystemErrors    int64
	Events          int64
	Slowest         []ecs.SystemStats
	Counters        []Counter
	GCPauseMetrics  bool
	MemStatsStart   runtime.MemStats
	MemStatsEnd     runtime.MemStats
}

type Counter struct {
	Name  string
	Value int64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	sorted := append([]time.Duration(nil), s.Samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, sample := range sorted {
		total += sample
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Avg = total / time.Duration(len(sorted))
	s.P99 = sorted[(len(sorted)-1)*99/100]
}

// Collect copies the scheduler, storage and metrics state into the report.
func (r *Report) Collect(s *ecs.Scheduler, scope tally.Scope, slowest int) {
	stats := s.GetStats()
	r.RunID = stats.RunID
	r.Stages = stats.StageCount
	r.CommandsApplied = stats.CommandsApplied
	r.CommandsSkipped = stats.CommandsSkipped
	r.SystemErrors = stats.TotalErrors
	r.FinalEntities = s.Storage().CollectStats().EntityCount

	if fs, ok := ecs.GetResource[ecs.FrameStats](s.Resources()); ok {
		r.AverageFPS = fs.AverageFPS
	}
	if events, ok := ecs.GetResource[EventTally](s.Resources()); ok {
		r.Events = events.Count
	}

	systems := append([]ecs.SystemStats(nil), stats.Systems...)
	sort.SliceStable(systems, func(i, j int) bool {
		return systems[i].AvgDuration > systems[j].AvgDuration
	})
	if len(systems) > slowest {
		systems = systems[:slowest]
	}
	r.Slowest = systems

	r.Counters = snapshotCounters(scope)
}

// snapshotCounters sums counters across tags when the scope can snapshot.
func snapshotCounters(scope tally.Scope) []Counter {
	snapshotter, ok := scope.(interface{ Snapshot() tally.Snapshot })
	if !ok {
		return nil
	}
	sums := make(map[string]int64)
	for _, c := range snapshotter.Snapshot().Counters() {
		sums[c.Name()] += c.Value()
	}
	counters := make([]Counter, 0, len(sums))
	for name, value := range sums {
		counters = append(counters, Counter{Name: name, Value: value})
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })
	return counters
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run ID:** {{.RunID}}
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Generated Components:** {{.Components}}
- **Generated Systems:** {{.Systems}}
- **Stages:** {{.Stages}}
- **Churn Rate:** {{printf "%.4f" .ChurnRate}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Average FPS:** {{printf "%.1f" .AverageFPS}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
  - **P99:** {{.UpdateTime.P99}}

## Scheduler
- **Final Entities:** {{.FinalEntities}}
- **Commands Applied:** {{.CommandsApplied}}
- **Commands Skipped:** {{.CommandsSkipped}}
- **System Errors:** {{.SystemErrors}}
- **Events Read:** {{.Events}}
{{if .Slowest}}
### Slowest Systems
| System | Stage | Runs | Avg | Max |
|---|---|---|---|---|
{{range .Slowest}}| {{.Name}} | {{.Stage}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
{{- if .Counters}}
### Counters
{{range .Counters}}- {{.Name}}: {{.Value}}
{{end}}{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end) -> delta: {{mb (bsub .MemStatsEnd.Sys .MemStatsStart.Sys)}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
