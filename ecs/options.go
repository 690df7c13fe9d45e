package ecs

import (
	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports timings and counters to scope.
func WithMetrics(scope tally.Scope) SchedulerOption {
	return func(s *Scheduler) {
		if scope != nil {
			s.metrics = scope
		}
	}
}

// WithFailOnSystemError makes a failing system abort the frame: Once returns
// the *SystemError and Run stops.
func WithFailOnSystemError(fail bool) SchedulerOption {
	return func(s *Scheduler) {
		s.failOnSystemError = fail
	}
}

// WithErrorHandler receives every system failure after per-system handlers.
func WithErrorHandler(handler ErrorHandler) SchedulerOption {
	return func(s *Scheduler) {
		s.errorHandler = handler
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id uuid.UUID) SchedulerOption {
	return func(s *Scheduler) {
		s.runID = id
	}
}
