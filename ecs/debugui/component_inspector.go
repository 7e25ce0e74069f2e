package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/planetrun/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

func (ci *ComponentInspectorComponent) Render(storage *ecs.Storage, selectedEntity ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntity = selectedEntity

	if ci.selectedEntity.IsZero() {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	archetype := storage.ArchetypeOf(ci.selectedEntity)
	if archetype == nil {
		imgui.Text(fmt.Sprintf("Entity %s is not alive", ci.selectedEntity))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntity))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", archetype.ID()))
	imgui.Separator()

	for _, compType := range archetype.Types() {
		component := storage.GetComponent(ci.selectedEntity, compType)
		if component == nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			ci.renderComponent(storage, component, compType)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(storage *ecs.Storage, component any, compType reflect.Type) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	fields := globalReflectionCache.GetFields(compType)
	if len(fields) == 0 {
		imgui.Text(fmt.Sprintf("%v", val.Interface()))
		return
	}

	for _, field := range fields {
		ci.renderField(storage, val, field, compType)
	}
}

func (ci *ComponentInspectorComponent) renderField(storage *ecs.Storage, root reflect.Value, field FieldInfo, compType reflect.Type) {
	name := field.Name
	val, err := root.FieldByIndexErr(field.Index)
	if err != nil || !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}
	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	if field.IsStringer {
		imgui.Text(fmt.Sprintf("%s: %s", name, val.Interface().(fmt.Stringer).String()))
		return
	}

	set := func(v any) {
		setField(storage, ci.selectedEntity, compType, field.Index, v)
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s%v", name, field.Index), &v) {
			set(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s%v", name, field.Index), &v) && v >= 0 {
			set(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s%v", name, field.Index), &v) {
			set(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			set(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s%v", name, field.Index), "", &v, imgui.InputTextFlagsNone, nil) {
			set(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nested := range globalReflectionCache.NestedFields(field) {
				ci.renderField(storage, root, nested, compType)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

// setField writes value into the field at path of e's compType component,
// converting between numeric kinds. It reports whether the write happened.
func setField(storage *ecs.Storage, e ecs.Entity, compType reflect.Type, path []int, value any) bool {
	component := storage.GetComponent(e, compType)
	if component == nil {
		return false
	}

	val := reflect.ValueOf(component)
	if val.Kind() != reflect.Ptr {
		return false
	}

	field, err := val.Elem().FieldByIndexErr(path)
	if err != nil || !field.CanSet() {
		return false
	}

	v := reflect.ValueOf(value)
	if v.Kind() != field.Kind() && !(numeric(v.Kind()) && numeric(field.Kind())) {
		return false
	}
	if !v.Type().ConvertibleTo(field.Type()) {
		return false
	}
	field.Set(v.Convert(field.Type()))
	return true
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
