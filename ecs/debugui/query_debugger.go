package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

// QueryDebugger counts the entities holding every selected component type.
type QueryDebugger struct {
	selected map[reflect.Type]bool
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{selected: make(map[reflect.Type]bool)}
}

// Toggle selects or deselects a component type.
func (qd *QueryDebugger) Toggle(t reflect.Type, on bool) {
	if on {
		qd.selected[t] = true
	} else {
		delete(qd.selected, t)
	}
}

func (qd *QueryDebugger) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	imgui.Text("Select Component Types:")
	imgui.Separator()
	if imgui.Button("Clear All") {
		qd.selected = make(map[reflect.Type]bool)
	}

	for _, t := range storage.Registry().Types() {
		on := qd.selected[t]
		if imgui.Checkbox(t.String(), &on) {
			qd.Toggle(t, on)
		}
	}
	imgui.Separator()

	types := qd.selectedTypes(storage)
	if len(types) == 0 {
		imgui.Text("No component types selected")
		return
	}

	matches := matchEntities(storage, types)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Entities") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("All Components")
			imgui.TableHeadersRow()

			for _, e := range matches {
				imgui.TableNextRow()
				imgui.TableSetColumnIndex(0)
				imgui.Text(e.String())
				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", storage.ComponentTypes(e)))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}
}

// selectedTypes returns the selection in registration order.
func (qd *QueryDebugger) selectedTypes(storage *ecs.Storage) []reflect.Type {
	var types []reflect.Type
	for _, t := range storage.Registry().Types() {
		if qd.selected[t] {
			types = append(types, t)
		}
	}
	return types
}

func matchEntities(storage *ecs.Storage, types []reflect.Type) []ecs.Entity {
	var matches []ecs.Entity
	for e := range storage.Entities().All() {
		all := true
		for _, t := range types {
			if !storage.HasComponent(e, t) {
				all = false
				break
			}
		}
		if all {
			matches = append(matches, e)
		}
	}
	return matches
}
