package ecs

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// Scheduler owns a Storage, the registered systems and the command buffer,
// and drives frames: build the schedule when the system set changed, run the
// stages in order flushing commands after each one, then swap event buffers.
type Scheduler struct {
	storage   *Storage
	commands  *Commands
	entries   []*systemEntry
	byId      map[SystemId]*systemEntry
	nextOrder int
	schedule  *Schedule
	dirty     bool

	state     State
	stage     int
	frame     uint64
	lastFrame time.Duration

	required   []reflect.Type
	events     []eventQueue
	eventTypes map[reflect.Type]struct{}

	logger            *zap.Logger
	metrics           tally.Scope
	failOnSystemError bool
	errorHandler      ErrorHandler
	runID             uuid.UUID

	commandsApplied int64
	commandsSkipped int64
}

// NewScheduler creates a new scheduler for the given storage. The Time and
// Exit resources are initialised.
func NewScheduler(storage *Storage, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		storage:    storage,
		commands:   NewCommands(storage),
		byId:       make(map[SystemId]*systemEntry),
		stage:      -1,
		eventTypes: make(map[reflect.Type]struct{}),
		logger:     zap.NewNop(),
		metrics:    tally.NoopScope,
		runID:      newRunID(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("run_id", s.runID.String()))

	InitResource[Time](s)
	InitResource[Exit](s)
	return s
}

func newRunID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Register adds a system to the scheduler and binds its parameter fields.
// The returned identity is used in ordering constraints and diagnostics.
// The schedule is rebuilt before the next frame.
func (s *Scheduler) Register(system System, opts ...SystemOption) (SystemId, error) {
	if s.state == StateShutdown {
		return "", ErrShutdown
	}
	if system == nil {
		return "", eris.New("cannot register a nil system")
	}

	entry, err := s.newEntry(system, opts)
	if err != nil {
		return "", err
	}
	if _, dup := s.byId[entry.id]; dup {
		return "", &DuplicateSystemError{System: entry.id}
	}

	entry.order = s.nextOrder
	s.nextOrder++
	s.entries = append(s.entries, entry)
	s.byId[entry.id] = entry
	s.dirty = true

	s.logger.Debug("system registered",
		zap.String("system", string(entry.id)),
		zap.Int("claims", entry.fields.Len()),
	)
	return entry.id, nil
}

func (s *Scheduler) newEntry(system System, opts []SystemOption) (*systemEntry, error) {
	var cfg systemConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	name := cfg.name
	if name == "" {
		name = systemName(system)
	}
	if name == "" {
		return nil, eris.Wrapf(ErrConfiguration, "system of type %T has no name", system)
	}
	id := SystemId(name)

	b := &binding{scheduler: s, system: id, access: NewAccess()}
	if err := bindParams(b, system); err != nil {
		return nil, err
	}

	return &systemEntry{
		id:       id,
		system:   system,
		fields:   b.access,
		access:   b.access,
		required: b.required,
		config:   cfg,
		stats:    newSystemStats(),
		logger:   s.logger.With(zap.String("system", name)),
	}, nil
}

// Unregister removes a system. The schedule is rebuilt before the next frame.
func (s *Scheduler) Unregister(id SystemId) bool {
	if _, ok := s.byId[id]; !ok {
		return false
	}
	delete(s.byId, id)
	for i, entry := range s.entries {
		if entry.id == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.dirty = true
	return true
}

// resolveAccess computes the effective descriptor of entry. A declared
// descriptor must cover every claim of the parameter fields.
func resolveAccess(entry *systemEntry) error {
	declarer, ok := entry.system.(AccessDeclarer)
	if !ok {
		entry.access = entry.fields
		return nil
	}
	declared := declarer.Access()
	if declared == nil {
		declared = NewAccess()
	}
	if missing := declared.Uncovered(entry.fields); len(missing) > 0 {
		return &AccessViolationError{System: entry.id, Claim: missing[0]}
	}
	entry.access = declared.Clone()
	return nil
}

// Build constructs the schedule from the registered systems. Failures (cycles,
// unknown ordering targets, undeclared access, missing required resources)
// are configuration errors. Building an unchanged system set yields an
// identical schedule.
func (s *Scheduler) Build() (*Schedule, error) {
	switch s.state {
	case StateShutdown:
		return nil, ErrShutdown
	case StateRunning, StateFlushing:
		return nil, eris.New("cannot build the schedule during a frame")
	}

	for _, entry := range s.entries {
		if err := resolveAccess(entry); err != nil {
			return nil, eris.Wrap(err, "build schedule")
		}
	}

	g, groups, err := buildGraph(s.entries)
	if err != nil {
		return nil, eris.Wrap(err, "build schedule")
	}
	if err := s.checkRequired(); err != nil {
		return nil, eris.Wrap(err, "build schedule")
	}

	s.schedule = newSchedule(g, groups)
	s.dirty = false
	s.state = StateScheduleBuilt

	s.metrics.Gauge("schedule.stages").Update(float64(s.schedule.Len()))
	s.logger.Info("schedule built",
		zap.Int("stages", s.schedule.Len()),
		zap.Int("systems", len(s.entries)),
	)
	return s.schedule, nil
}

// checkRequired reports the first missing required resource with every
// system requiring it.
func (s *Scheduler) checkRequired() error {
	resources := s.storage.resources
	for _, t := range s.required {
		if !resources.Has(t) {
			return &MissingResourceError{Resource: t}
		}
	}
	for _, entry := range s.entries {
		for _, t := range entry.required {
			if resources.Has(t) {
				continue
			}
			missing := &MissingResourceError{Resource: t}
			for _, other := range s.entries {
				for _, ot := range other.required {
					if ot == t {
						missing.Systems = append(missing.Systems, other.id)
						break
					}
				}
			}
			return missing
		}
	}
	return nil
}

// Once executes a single frame with the given delta time in seconds.
// It returns configuration errors, and system errors when the scheduler is
// configured with WithFailOnSystemError.
func (s *Scheduler) Once(dt float64) error {
	if s.state == StateShutdown {
		return ErrShutdown
	}
	if s.schedule == nil || s.dirty {
		if _, err := s.Build(); err != nil {
			return err
		}
	}
	if err := s.checkRequired(); err != nil {
		return eris.Wrapf(err, "frame %d", s.frame)
	}

	start := time.Now()
	t := InitResource[Time](s)
	t.Delta = dt
	t.Elapsed += dt
	t.Frame = s.frame

	var fatal error
	for i, stage := range s.schedule.plan {
		s.state = StateRunning
		s.stage = i
		for _, entry := range stage {
			if err := s.runSystem(entry, dt); err != nil {
				fatal = err
				break
			}
		}

		// Partial commands of a failed system are still applied.
		s.state = StateFlushing
		if err := s.flush(nil); err != nil && fatal == nil {
			fatal = err
		}
		if fatal != nil {
			break
		}
	}
	s.stage = -1

	if fatal != nil {
		s.state = StateScheduleBuilt
		return fatal
	}

	s.swapEvents()
	s.state = StateFrameComplete
	s.frame++
	s.lastFrame = time.Since(start)
	s.metrics.Timer("frame.duration").Record(s.lastFrame)
	return nil
}

func (s *Scheduler) newFrame(entry *systemEntry, dt float64) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     s.frame,
		Commands:  s.commands,
		scheduler: s,
		system:    entry,
	}
}

// runSystem executes one scheduled system and returns an error only when the
// failure must abort the frame.
func (s *Scheduler) runSystem(entry *systemEntry, dt float64) error {
	frame := s.newFrame(entry, dt)
	for _, cond := range entry.config.conditions {
		if !cond(frame) {
			entry.stats.skipCount++
			return nil
		}
	}

	start := time.Now()
	s.commands.origin = entry.id
	err := invoke(entry.system, frame)
	s.commands.origin = ""
	duration := time.Since(start)

	entry.stats.record(duration)
	s.metrics.Tagged(map[string]string{"system": string(entry.id)}).
		Timer("system.duration").Record(duration)

	if err == nil {
		return nil
	}
	return s.handleSystemError(entry, err)
}

// invoke runs the system body, converting panics to errors.
func invoke(system System, frame *UpdateFrame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = eris.Wrap(e, "system panicked")
			} else {
				err = eris.Errorf("system panicked: %v", r)
			}
		}
	}()
	return system.Execute(frame)
}

func (s *Scheduler) handleSystemError(entry *systemEntry, err error) error {
	sysErr := &SystemError{System: entry.id, Frame: s.frame, Err: err}
	entry.stats.errorCount++
	entry.stats.lastError = err
	s.metrics.Tagged(map[string]string{"system": string(entry.id)}).
		Counter("system.errors").Inc(1)

	for _, handler := range entry.config.onError {
		handler(sysErr)
	}
	if s.errorHandler != nil {
		s.errorHandler(sysErr)
	}

	if errors.Is(err, ErrConfiguration) {
		entry.logger.Error("configuration error in system",
			zap.Uint64("frame", s.frame),
			zap.Error(err),
		)
		return sysErr
	}

	entry.logger.Error("system failed",
		zap.Uint64("frame", s.frame),
		zap.Int("stage", s.stage),
		zap.Error(err),
	)
	if s.failOnSystemError {
		return sysErr
	}
	return nil
}

// flush applies pending commands. A command that panicked is reported as a
// failure of the system that queued it; oneShot resolves systems run through
// RunSystem. The returned error is non-nil only when the failure is fatal.
func (s *Scheduler) flush(oneShot *systemEntry) error {
	applied, skipped := s.commands.Flush()
	failures := s.commands.Failures()
	s.commandsApplied += int64(applied)
	s.commandsSkipped += int64(skipped)
	if applied > 0 {
		s.metrics.Counter("commands.applied").Inc(int64(applied))
	}
	if stale := skipped - len(failures); stale > 0 {
		s.logger.Debug("skipped commands for stale entities",
			zap.Int("count", stale),
			zap.Uint64("frame", s.frame),
		)
	}

	var fatal error
	for _, failure := range failures {
		s.metrics.Counter("commands.failed").Inc(1)

		entry := s.byId[failure.System]
		if oneShot != nil && failure.System == oneShot.id {
			entry = oneShot
		}
		if entry != nil {
			if err := s.handleSystemError(entry, failure); err != nil && fatal == nil {
				fatal = err
			}
			continue
		}

		sysErr := &SystemError{System: failure.System, Frame: s.frame, Err: failure}
		s.logger.Error("command failed",
			zap.String("command", failure.Command),
			zap.Uint64("frame", s.frame),
			zap.Error(failure),
		)
		if s.errorHandler != nil {
			s.errorHandler(sysErr)
		}
		if s.failOnSystemError && fatal == nil {
			fatal = sysErr
		}
	}
	return fatal
}

func (s *Scheduler) swapEvents() {
	for _, queue := range s.events {
		queue.swap(s.storage.resources)
	}
}

// Run executes frames at the given interval until the context is cancelled,
// a system requests exit, or a frame fails.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
			if s.ExitRequested() {
				s.logger.Info("exit requested", zap.Uint64("frame", s.frame))
				return nil
			}
		}
	}
}

// ExitRequested reports whether a system asked the loop to stop.
func (s *Scheduler) ExitRequested() bool {
	exit, ok := GetResource[Exit](s.storage.resources)
	return ok && exit.Requested
}

// RunSystem executes system once outside the schedule and applies its
// commands immediately. It is meant for setup and teardown between frames.
func (s *Scheduler) RunSystem(system System, opts ...SystemOption) error {
	switch s.state {
	case StateShutdown:
		return ErrShutdown
	case StateRunning, StateFlushing:
		return eris.New("RunSystem called during a frame")
	}

	entry, err := s.newEntry(system, opts)
	if err != nil {
		return err
	}
	if err := resolveAccess(entry); err != nil {
		return err
	}

	frame := s.newFrame(entry, 0)
	s.commands.origin = entry.id
	err = invoke(system, frame)
	s.commands.origin = ""
	flushErr := s.flush(entry)
	if err != nil {
		return &SystemError{System: entry.id, Frame: s.frame, Err: err}
	}
	return flushErr
}

// Shutdown discards pending commands, tears down every resource (closing
// those implementing io.Closer) and makes the scheduler unusable.
func (s *Scheduler) Shutdown() error {
	if s.state == StateShutdown {
		return nil
	}
	s.commands.discard()
	s.state = StateShutdown
	s.stage = -1

	err := s.storage.resources.Clear()
	s.logger.Info("scheduler shut down", zap.Uint64("frames", s.frame))
	if err != nil {
		return eris.Wrap(err, "close resources")
	}
	return nil
}

// State returns the runner state.
func (s *Scheduler) State() State {
	return s.state
}

// CurrentStage returns the index of the executing stage, or -1 between stages.
func (s *Scheduler) CurrentStage() int {
	return s.stage
}

// Frame returns the number of completed frames.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// RunID identifies this scheduler instance in logs and stats.
func (s *Scheduler) RunID() uuid.UUID {
	return s.runID
}

// Schedule returns the last built schedule, or nil before the first build.
func (s *Scheduler) Schedule() *Schedule {
	return s.schedule
}

// Systems returns the registered system identities in registration order.
func (s *Scheduler) Systems() []SystemId {
	ids := make([]SystemId, len(s.entries))
	for i, entry := range s.entries {
		ids[i] = entry.id
	}
	return ids
}

// Storage returns the storage driven by this scheduler. Hosts may use it
// between frames; systems go through their parameters and Commands.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Resources returns the resource store.
func (s *Scheduler) Resources() *Resources {
	return s.storage.resources
}

// Logger returns the scheduler logger.
func (s *Scheduler) Logger() *zap.Logger {
	return s.logger
}
