package ecs

import (
	"iter"
	"reflect"
	"strings"
)

// binding collects what a system's parameter fields declare while they are
// bound at registration.
type binding struct {
	scheduler *Scheduler
	system    SystemId
	access    *Access
	required  []reflect.Type
	params    int
}

// systemParam is implemented by every field type the Scheduler binds when a
// system is registered.
type systemParam interface {
	bindParam(b *binding, field reflect.StructField) error
}

var systemParamType = reflect.TypeFor[systemParam]()

// parseTag splits an `ecs:"..."` tag into its options.
func parseTag(field reflect.StructField) map[string]bool {
	tag, ok := field.Tag.Lookup("ecs")
	if !ok || tag == "" {
		return nil
	}
	opts := make(map[string]bool)
	for _, opt := range strings.Split(tag, ",") {
		opts[strings.TrimSpace(opt)] = true
	}
	return opts
}

func checkTag(b *binding, field reflect.StructField, allowed ...string) (map[string]bool, error) {
	opts := parseTag(field)
	for opt := range opts {
		found := false
		for _, a := range allowed {
			if opt == a {
				found = true
				break
			}
		}
		if !found {
			return nil, &InvalidParamError{
				System: b.system,
				Field:  field.Name,
				Reason: "unsupported ecs tag option " + `"` + opt + `"`,
			}
		}
	}
	return opts, nil
}

// bindParams walks the exported fields of system and binds every parameter
// type it finds. Systems that are not structs have no parameters.
func bindParams(b *binding, system System) error {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		fieldType := structType.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		if fieldType.Type.Kind() == reflect.Ptr && fieldType.Type.Implements(systemParamType) {
			return &InvalidParamError{
				System: b.system,
				Field:  fieldType.Name,
				Reason: "parameter fields must not be pointers",
			}
		}
		if !reflect.PointerTo(fieldType.Type).Implements(systemParamType) {
			continue
		}
		if !value.CanAddr() {
			return &InvalidParamError{
				System: b.system,
				Field:  fieldType.Name,
				Reason: "system with parameters must be registered by pointer",
			}
		}

		param := value.Field(i).Addr().Interface().(systemParam)
		if err := param.bindParam(b, fieldType); err != nil {
			return err
		}
		b.params++
	}
	return nil
}

// Read grants read access to components of type T.
type Read[T any] struct {
	store *ComponentStore[T]
}

func (p *Read[T]) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	p.store = Store[T](b.scheduler.storage)
	b.access.Read(ComponentKey[T]())
	return nil
}

// Get returns a copy of the component of e.
func (p *Read[T]) Get(e Entity) (T, bool) {
	return p.store.Get(e)
}

// Has reports whether e has a T.
func (p *Read[T]) Has(e Entity) bool {
	return p.store.Has(e)
}

// Len returns the number of T components.
func (p *Read[T]) Len() int {
	return p.store.Len()
}

// All iterates every entity with a T.
func (p *Read[T]) All() iter.Seq2[Entity, T] {
	return p.store.All()
}

// Write grants read and write access to components of type T.
type Write[T any] struct {
	Read[T]
}

func (p *Write[T]) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	p.store = Store[T](b.scheduler.storage)
	b.access.Write(ComponentKey[T]())
	return nil
}

// GetMut returns a pointer to the component of e, or nil.
func (p *Write[T]) GetMut(e Entity) *T {
	return p.store.GetMut(e)
}

// Set overwrites the component of e if e already has one. Attaching a new
// component is a structural change and goes through Commands.
func (p *Write[T]) Set(e Entity, value T) bool {
	ptr := p.store.GetMut(e)
	if ptr == nil {
		return false
	}
	*ptr = value
	return true
}

// AllMut iterates every entity with a pointer to its T.
func (p *Write[T]) AllMut() iter.Seq2[Entity, *T] {
	return p.store.AllMut()
}

// Res grants read access to the resource of type T. Tag the field
// `ecs:"required"` to make the resource's absence a configuration error.
type Res[T any] struct {
	resources *Resources
}

func (p *Res[T]) bindParam(b *binding, field reflect.StructField) error {
	opts, err := checkTag(b, field, "required")
	if err != nil {
		return err
	}
	p.resources = b.scheduler.storage.resources
	b.access.Read(ResourceKey[T]())
	if opts["required"] {
		b.required = append(b.required, reflect.TypeFor[T]())
	}
	return nil
}

// Get returns a copy of the resource.
func (p *Res[T]) Get() (T, bool) {
	return GetResource[T](p.resources)
}

// Exists reports whether the resource is present.
func (p *Res[T]) Exists() bool {
	return HasResource[T](p.resources)
}

// ResMut grants read and write access to the resource of type T.
type ResMut[T any] struct {
	resources *Resources
}

func (p *ResMut[T]) bindParam(b *binding, field reflect.StructField) error {
	opts, err := checkTag(b, field, "required")
	if err != nil {
		return err
	}
	p.resources = b.scheduler.storage.resources
	b.access.Write(ResourceKey[T]())
	if opts["required"] {
		b.required = append(b.required, reflect.TypeFor[T]())
	}
	return nil
}

// Get returns a pointer to the resource, or nil if it is absent.
func (p *ResMut[T]) Get() *T {
	return ResourceMut[T](p.resources)
}

// Set replaces the resource value in place.
func (p *ResMut[T]) Set(value T) {
	InsertResource(p.resources, value)
}

// Exists reports whether the resource is present.
func (p *ResMut[T]) Exists() bool {
	return HasResource[T](p.resources)
}

// EventReader reads events of type T published during the previous frame.
type EventReader[T any] struct {
	resources *Resources
}

func (p *EventReader[T]) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	AddEvent[T](b.scheduler)
	p.resources = b.scheduler.storage.resources
	b.access.Read(EventKey[T]())
	return nil
}

// Read yields the readable events.
func (p *EventReader[T]) Read() iter.Seq[T] {
	events := ResourceMut[Events[T]](p.resources)
	if events == nil {
		return func(func(T) bool) {}
	}
	return events.Read()
}

// Len returns the number of readable events.
func (p *EventReader[T]) Len() int {
	events := ResourceMut[Events[T]](p.resources)
	if events == nil {
		return 0
	}
	return events.Len()
}

// EventWriter publishes events of type T for the next frame.
type EventWriter[T any] struct {
	resources *Resources
}

func (p *EventWriter[T]) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	AddEvent[T](b.scheduler)
	p.resources = b.scheduler.storage.resources
	b.access.Write(EventKey[T]())
	return nil
}

// Send queues an event.
func (p *EventWriter[T]) Send(event T) {
	if events := ResourceMut[Events[T]](p.resources); events != nil {
		events.Send(event)
	}
}

// Entities is a liveness view over the entity registry. It touches no
// component data and carries no claim.
type Entities struct {
	registry *EntityRegistry
}

func (p *Entities) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	p.registry = b.scheduler.storage.entities
	return nil
}

// IsAlive reports whether e is alive.
func (p *Entities) IsAlive(e Entity) bool {
	return p.registry.IsAlive(e)
}

// Len returns the number of live entities.
func (p *Entities) Len() int {
	return p.registry.Len()
}

// All yields live entities in index order.
func (p *Entities) All() iter.Seq[Entity] {
	return p.registry.All()
}
