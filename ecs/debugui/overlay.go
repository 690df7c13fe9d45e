package debugui

import (
	"github.com/plus3/realm/ecs"
)

// Overlay holds the state of every diagnostic window for one Scheduler.
// Windows read the scheduler between stages and must only be rendered from
// the scheduler's goroutine.
type Overlay struct {
	scheduler *ecs.Scheduler

	Entities    *EntityBrowser
	Inspector   *ComponentInspector
	Schedule    *ScheduleViewer
	Performance *PerformanceStats
	Query       *QueryDebugger
}

type overlayConfig struct {
	entitiesPerPage int
	historyFrames   int
}

// Option configures an Overlay.
type Option func(*overlayConfig)

// WithEntitiesPerPage sets the page size of the entity browser.
func WithEntitiesPerPage(n int) Option {
	return func(c *overlayConfig) {
		if n > 0 {
			c.entitiesPerPage = n
		}
	}
}

// WithHistoryFrames sets how many frame times the performance graph keeps.
func WithHistoryFrames(n int) Option {
	return func(c *overlayConfig) {
		if n > 0 {
			c.historyFrames = n
		}
	}
}

// NewOverlay creates the diagnostic windows for s.
func NewOverlay(s *ecs.Scheduler, opts ...Option) *Overlay {
	cfg := overlayConfig{entitiesPerPage: 100, historyFrames: 120}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Overlay{
		scheduler:   s,
		Entities:    NewEntityBrowser(cfg.entitiesPerPage),
		Inspector:   NewComponentInspector(),
		Schedule:    NewScheduleViewer(),
		Performance: NewPerformanceStats(cfg.historyFrames),
		Query:       NewQueryDebugger(),
	}
}

// Render draws every window. The component inspector follows the entity
// selected in the browser.
func (o *Overlay) Render() {
	storage := o.scheduler.Storage()
	t, _ := ecs.GetResource[ecs.Time](o.scheduler.Resources())

	o.Entities.Render(storage, o.scheduler.Frame())
	o.Inspector.Render(storage, o.Entities.Selected())
	o.Schedule.Render(o.scheduler)
	o.Performance.Render(o.scheduler, float32(t.Delta))
	o.Query.Render(storage)
}
