package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

// PerformanceStats graphs frame times and summarises storage and scheduler
// counters.
type PerformanceStats struct {
	frameHistory []float32
	frameIndex   int
	samples      int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		frameHistory: make([]float32, historyFrames),
	}
}

// Record adds one frame time in seconds to the history.
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % len(ps.frameHistory)
	if ps.samples < len(ps.frameHistory) {
		ps.samples++
	}
}

// AverageFrameTime returns the mean of the recorded frame times in
// milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	if ps.samples == 0 {
		return 0
	}
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.samples)
}

func (ps *PerformanceStats) Render(s *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Record(deltaTime)

	storageStats := s.Storage().CollectStats()
	schedulerStats := s.GetStats()

	imgui.Text(fmt.Sprintf("Run: %s", schedulerStats.RunID))
	imgui.Text(fmt.Sprintf("Frame: %d (last %s)", schedulerStats.Frame, schedulerStats.LastFrame))
	imgui.Text(fmt.Sprintf("Entities: %d / %d slots", storageStats.EntityCount, storageStats.SlotCount))
	imgui.Text(fmt.Sprintf("Components: %d", storageStats.ComponentCount))
	imgui.Text(fmt.Sprintf("Resources: %d", storageStats.ResourceCount))
	imgui.Text(fmt.Sprintf("Commands: %d applied, %d skipped", schedulerStats.CommandsApplied, schedulerStats.CommandsSkipped))
	imgui.Text(fmt.Sprintf("System runs: %d, errors: %d", schedulerStats.TotalExecutions, schedulerStats.TotalErrors))

	avg := ps.AverageFrameTime()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Component Stores") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ComponentStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Type")
			imgui.TableSetupColumn("Count")
			imgui.TableHeadersRow()

			for _, c := range storageStats.Components {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(c.Type)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", c.Count))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Resources") {
		for _, name := range storageStats.ResourceTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

// FrameTimer measures wall-clock time between frames for hosts that drive
// Scheduler.Once themselves.
type FrameTimer struct {
	lastFrameTime time.Time
	now           func() time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
		now:           time.Now,
	}
}

// Tick returns the seconds elapsed since the previous call.
func (ft *FrameTimer) Tick() float64 {
	now := ft.now()
	delta := now.Sub(ft.lastFrameTime).Seconds()
	ft.lastFrameTime = now
	return delta
}
