package debugui

import (
	"reflect"
)

// FieldInfo describes one exported field shown by the inspector. Fields of
// embedded structs are flattened, so Index may have more than one element.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     []int
	IsPointer bool
}

// ReflectionCache memoises the visible fields of component types. It is not
// safe for concurrent use.
type ReflectionCache struct {
	fields map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fields: make(map[reflect.Type][]FieldInfo),
	}
}

func (rc *ReflectionCache) Fields(t reflect.Type) []FieldInfo {
	if cached, ok := rc.fields[t]; ok {
		return cached
	}
	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		fields = appendFields(fields, t, nil)
	}
	rc.fields[t] = fields
	return fields
}

func appendFields(fields []FieldInfo, t reflect.Type, prefix []int) []FieldInfo {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			fields = appendFields(fields, field.Type, index)
			continue
		}
		if !field.IsExported() {
			continue
		}

		fieldType := field.Type
		isPointer := fieldType.Kind() == reflect.Ptr
		if isPointer {
			fieldType = fieldType.Elem()
		}
		fields = append(fields, FieldInfo{
			Name:      field.Name,
			Type:      fieldType,
			Index:     index,
			IsPointer: isPointer,
		})
	}
	return fields
}
