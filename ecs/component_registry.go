package ecs

import (
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS worlds to coexist without interference.
type ComponentRegistry struct {
	ids       map[reflect.Type]int
	types     []reflect.Type
	factories []func(id int) componentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids: make(map[reflect.Type]int),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
// Registering the same type twice is a no-op.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.ids[t]; ok {
		return
	}
	validateComponentType(t)

	r.ids[t] = len(r.types)
	r.types = append(r.types, t)
	r.factories = append(r.factories, func(id int) componentStorage {
		return newComponentStore[T](id)
	})
}

// Types returns the registered component types in registration order.
func (r *ComponentRegistry) Types() []reflect.Type {
	return append([]reflect.Type(nil), r.types...)
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.types)
}

// IsRegistered reports whether t has been registered.
func (r *ComponentRegistry) IsRegistered(t reflect.Type) bool {
	_, ok := r.ids[t]
	return ok
}

func (r *ComponentRegistry) lookup(t reflect.Type) (int, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// validateComponentType panics for kinds that cannot be stored as plain values.
func validateComponentType(t reflect.Type) {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		panic("component type " + t.String() + " cannot be a pointer, map, channel, function or interface")
	}
}

// componentTypeOf returns the component type of a value passed to Spawn or
// AddComponent. Pointers are dereferenced.
func componentTypeOf(component any) reflect.Type {
	if component == nil {
		panic("component cannot be nil")
	}
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
