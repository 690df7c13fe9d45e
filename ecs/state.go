package ecs

// State is the runner's position in its lifecycle.
//
//	Idle -> ScheduleBuilt -> Running(0) -> Flushing -> Running(1) -> ... -> FrameComplete -> Running(0) ...
//
// Shutdown is terminal.
type State uint8

const (
	StateIdle State = iota
	StateScheduleBuilt
	StateRunning
	StateFlushing
	StateFrameComplete
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduleBuilt:
		return "schedule_built"
	case StateRunning:
		return "running"
	case StateFlushing:
		return "flushing"
	case StateFrameComplete:
		return "frame_complete"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
