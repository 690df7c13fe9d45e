package ecs

import "go.uber.org/zap"

// Time is updated by the Scheduler before every frame.
type Time struct {
	// Delta is the time since the previous frame in seconds.
	Delta float64
	// Elapsed is the sum of all deltas.
	Elapsed float64
	// Frame counts completed frames; it is 0 during the first frame.
	Frame uint64
}

// Exit is inserted by NewScheduler. Setting Requested stops Run after the
// current frame.
type Exit struct {
	Requested bool
}

// FrameStats is maintained by FrameStatsPlugin.
type FrameStats struct {
	Frames     uint64
	AverageFPS float64

	window      uint64
	windowDelta float64
}

type frameStatsSystem struct {
	Stats ResMut[FrameStats] `ecs:"required"`
	Time  Res[Time]
}

func (s *frameStatsSystem) Name() string { return "FrameStats" }

func (s *frameStatsSystem) Execute(frame *UpdateFrame) error {
	stats := s.Stats.Get()
	t, _ := s.Time.Get()

	stats.window++
	stats.windowDelta += t.Delta
	if stats.windowDelta >= 1 {
		stats.AverageFPS = float64(stats.window) / stats.windowDelta
		frame.Logger().Debug("frame stats",
			zap.Float64("fps", stats.AverageFPS),
			zap.Uint64("frames", stats.window),
			zap.Float64("window", stats.windowDelta),
			zap.Float64("last_delta", t.Delta),
		)
		stats.window = 0
		stats.windowDelta = 0
	}
	stats.Frames++
	return nil
}

// FrameStatsPlugin keeps a FrameStats resource with the average frame rate
// over one-second windows.
var FrameStatsPlugin PluginFunc = func(s *Scheduler) error {
	InitResource[FrameStats](s)
	_, err := s.Register(&frameStatsSystem{})
	return err
}
