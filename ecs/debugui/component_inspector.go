package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

// ComponentInspector shows and edits the components of one entity. Edits
// write through the component pointer, so they must happen between stages.
type ComponentInspector struct {
	fields *ReflectionCache
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{fields: NewReflectionCache()}
}

func (ci *ComponentInspector) Render(storage *ecs.Storage, entity ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if entity == 0 {
		imgui.Text("No entity selected")
		return
	}
	if !storage.IsAlive(entity) {
		imgui.Text(fmt.Sprintf("Entity %s is no longer alive", entity))
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", entity))
	imgui.Separator()

	for _, compType := range storage.ComponentTypes(entity) {
		component := storage.GetComponent(entity, compType)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(compType.String()) {
			ci.renderValue(reflect.ValueOf(component).Elem())
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspector) renderValue(val reflect.Value) {
	if val.Kind() != reflect.Struct {
		ci.renderField("value", val)
		return
	}
	for _, field := range ci.fields.Fields(val.Type()) {
		fieldVal := val.FieldByIndex(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(field.Name, fieldVal)
	}
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	label := fmt.Sprintf("##%s", name)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		ci.label(name, 150)
		if imgui.InputInt(label, &v) {
			setField(val, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		ci.label(name, 150)
		if imgui.InputInt(label, &v) && v >= 0 {
			setField(val, uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		ci.label(name, 150)
		if imgui.InputFloat(label, &v) {
			setField(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			setField(val, v)
		}

	case reflect.String:
		v := val.String()
		ci.label(name, 200)
		if imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil) {
			setField(val, v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			ci.renderValue(val)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}

func (ci *ComponentInspector) label(name string, width float32) {
	imgui.Text(fmt.Sprintf("%s:", name))
	imgui.SameLine()
	imgui.SetNextItemWidth(width)
}

// setField assigns value to a settable field, converting between the widget
// type and the field's kind. It reports whether the field changed.
func setField(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}
	switch v := value.(type) {
	case int64:
		if !field.CanInt() || field.OverflowInt(v) {
			return false
		}
		field.SetInt(v)
	case uint64:
		if !field.CanUint() || field.OverflowUint(v) {
			return false
		}
		field.SetUint(v)
	case float64:
		if !field.CanFloat() || field.OverflowFloat(v) {
			return false
		}
		field.SetFloat(v)
	case bool:
		if field.Kind() != reflect.Bool {
			return false
		}
		field.SetBool(v)
	case string:
		if field.Kind() != reflect.String {
			return false
		}
		field.SetString(v)
	default:
		return false
	}
	return true
}
