package ecs

import (
	"errors"
	"io"
	"reflect"
	"sort"
)

// Resources maps a type to at most one singleton value of that type. Values
// are stored behind pointers so ResourceMut hands out stable addresses;
// inserting over an existing value overwrites it in place.
type Resources struct {
	values map[reflect.Type]reflect.Value
}

// NewResources creates an empty resource store.
func NewResources() *Resources {
	return &Resources{
		values: make(map[reflect.Type]reflect.Value),
	}
}

// Insert stores value under its dynamic type, replacing any previous value.
func (r *Resources) Insert(value any) {
	if value == nil {
		panic("cannot insert nil resource")
	}
	v := reflect.ValueOf(value)
	r.insertValue(v.Type(), v)
}

func (r *Resources) insertValue(t reflect.Type, v reflect.Value) {
	if existing, ok := r.values[t]; ok {
		existing.Elem().Set(v)
		return
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	r.values[t] = ptr
}

// Get returns a pointer to the resource of type t, or nil.
func (r *Resources) Get(t reflect.Type) any {
	ptr, ok := r.values[t]
	if !ok {
		return nil
	}
	return ptr.Interface()
}

// Has reports whether a resource of type t exists.
func (r *Resources) Has(t reflect.Type) bool {
	_, ok := r.values[t]
	return ok
}

// Remove deletes the resource of type t.
func (r *Resources) Remove(t reflect.Type) bool {
	if _, ok := r.values[t]; !ok {
		return false
	}
	delete(r.values, t)
	return true
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.values)
}

// Types returns the stored resource types sorted by name.
func (r *Resources) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.values))
	for t := range r.values {
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// Clear removes every resource. Resources implementing io.Closer (directly or
// through their pointer) are closed in type-name order; close errors are joined.
func (r *Resources) Clear() error {
	var errs []error
	for _, t := range r.Types() {
		ptr := r.values[t]
		if closer, ok := ptr.Interface().(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		} else if closer, ok := ptr.Elem().Interface().(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		delete(r.values, t)
	}
	return errors.Join(errs...)
}

// InsertResource stores value as the singleton of type T.
func InsertResource[T any](r *Resources, value T) {
	t := reflect.TypeFor[T]()
	if existing, ok := r.values[t]; ok {
		*existing.Interface().(*T) = value
		return
	}
	ptr := new(T)
	*ptr = value
	r.values[t] = reflect.ValueOf(ptr)
}

// GetResource returns a copy of the resource of type T.
func GetResource[T any](r *Resources) (T, bool) {
	if ptr := ResourceMut[T](r); ptr != nil {
		return *ptr, true
	}
	var zero T
	return zero, false
}

// ResourceMut returns a pointer to the resource of type T, or nil.
func ResourceMut[T any](r *Resources) *T {
	ptr, ok := r.values[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return ptr.Interface().(*T)
}

// RemoveResource deletes and returns the resource of type T.
func RemoveResource[T any](r *Resources) (T, bool) {
	t := reflect.TypeFor[T]()
	ptr, ok := r.values[t]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.values, t)
	return *ptr.Interface().(*T), true
}

// HasResource reports whether a resource of type T exists.
func HasResource[T any](r *Resources) bool {
	return r.Has(reflect.TypeFor[T]())
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int      { return len(a) }
func (a byTypeName) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool {
	if a[i].String() != a[j].String() {
		return a[i].String() < a[j].String()
	}
	return a[i].PkgPath() < a[j].PkgPath()
}
