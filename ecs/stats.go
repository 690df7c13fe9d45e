package ecs

import (
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	RunID           string
	Frame           uint64
	StageCount      int
	SystemCount     int
	TotalExecutions int64
	TotalErrors     int64
	CommandsApplied int64
	CommandsSkipped int64
	LastFrame       time.Duration
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          int
	ExecutionCount int64
	SkipCount      int64
	ErrorCount     int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
	LastError      string
}

type systemStatsInternal struct {
	executionCount int64
	skipCount      int64
	errorCount     int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
	lastError      error
}

func newSystemStats() systemStatsInternal {
	return systemStatsInternal{minDuration: time.Duration(1<<63 - 1)}
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

func (s *systemStatsInternal) snapshot(name string, stage int) SystemStats {
	avgDuration := time.Duration(0)
	minDuration := s.minDuration
	if s.executionCount > 0 {
		avgDuration = s.totalDuration / time.Duration(s.executionCount)
	} else {
		minDuration = 0
	}

	stats := SystemStats{
		Name:           name,
		Stage:          stage,
		ExecutionCount: s.executionCount,
		SkipCount:      s.skipCount,
		ErrorCount:     s.errorCount,
		MinDuration:    minDuration,
		MaxDuration:    s.maxDuration,
		AvgDuration:    avgDuration,
		LastDuration:   s.lastDuration,
		TotalDuration:  s.totalDuration,
	}
	if s.lastError != nil {
		stats.LastError = s.lastError.Error()
	}
	return stats
}

// GetStats returns statistics about system execution, in registration order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		RunID:           s.runID.String(),
		Frame:           s.frame,
		SystemCount:     len(s.entries),
		CommandsApplied: s.commandsApplied,
		CommandsSkipped: s.commandsSkipped,
		LastFrame:       s.lastFrame,
		Systems:         make([]SystemStats, len(s.entries)),
	}
	if s.schedule != nil {
		stats.StageCount = s.schedule.Len()
	}

	for i, entry := range s.entries {
		stage := -1
		if s.schedule != nil {
			if idx, ok := s.schedule.StageOf(entry.id); ok {
				stage = idx
			}
		}
		stats.Systems[i] = entry.stats.snapshot(string(entry.id), stage)
		stats.TotalExecutions += entry.stats.executionCount
		stats.TotalErrors += entry.stats.errorCount
	}
	return stats
}
