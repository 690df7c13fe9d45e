// Package debugui provides a Dear ImGui overlay for inspecting a running
// Scheduler: its entities and components, the built schedule and per-system
// execution statistics.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState is a resource tracking whether Dear ImGui is consuming
// mouse or keyboard input this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem updates ImguiInputState and defers every ImguiItem render
// function to the end of its stage.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem `ecs:"read"` }]
	InputState ecs.ResMut[ImguiInputState] `ecs:"required"`
}

func (i *ImguiSystem) Name() string { return "Imgui" }

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) error {
	state := i.InputState.Get()
	io := imgui.CurrentIO()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
	return nil
}

// Install registers the ImGui component, resource and system with s, and
// spawns an ImguiItem drawing a new Overlay. The overlay is returned so hosts
// can toggle its windows.
func Install(s *ecs.Scheduler, opts ...Option) (*Overlay, error) {
	ecs.RegisterComponent[ImguiItem](s.Storage().Registry())
	ecs.InitResource[ImguiInputState](s)

	if _, err := s.Register(&ImguiSystem{}); err != nil {
		return nil, err
	}

	overlay := NewOverlay(s, opts...)
	s.Storage().Spawn(ImguiItem{Render: overlay.Render})
	return overlay, nil
}
