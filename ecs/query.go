package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityType = reflect.TypeFor[Entity]()

type queryField struct {
	typ      reflect.Type
	offset   uintptr
	optional bool
}

// Query iterates entities holding a combination of components. S is a struct
// whose fields are pointers to component types:
//
//	type Movers struct {
//		ecs.Entity
//		Pos *Position
//		Vel *Velocity `ecs:"read"`
//		Tag *Frozen   `ecs:"read,optional"`
//	}
//
// Fields claim write access unless tagged `ecs:"read"`. Optional fields are
// nil when the entity lacks the component. An Entity field receives the
// entity identifier. Component types must be registered before the system is.
type Query[S any] struct {
	storage      *Storage
	fields       []queryField
	entityOffset uintptr
	hasEntity    bool
}

// NewQuery creates a query bound directly to storage, for use by hosts and
// tooling outside of systems.
func NewQuery[S any](storage *Storage) (*Query[S], error) {
	q := &Query[S]{}
	if err := q.init(storage, &binding{access: NewAccess()}, "Query"); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Query[S]) bindParam(b *binding, field reflect.StructField) error {
	if _, err := checkTag(b, field); err != nil {
		return err
	}
	return q.init(b.scheduler.storage, b, field.Name)
}

func (q *Query[S]) init(storage *Storage, b *binding, fieldName string) error {
	invalid := func(reason string) error {
		return &InvalidParamError{System: b.system, Field: fieldName, Reason: reason}
	}

	structType := reflect.TypeFor[S]()
	if structType.Kind() != reflect.Struct {
		return invalid("query type parameter must be a struct")
	}

	q.storage = storage
	q.fields = q.fields[:0]
	q.hasEntity = false

	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if f.Type == entityType {
			q.entityOffset = f.Offset
			q.hasEntity = true
			continue
		}
		if f.Type.Kind() != reflect.Ptr {
			return invalid("query field " + f.Name + " must be a pointer to a component")
		}

		opts, err := checkTag(b, f, "read", "optional")
		if err != nil {
			return err
		}
		componentType := f.Type.Elem()
		if !storage.registry.IsRegistered(componentType) {
			return &UnregisteredComponentError{Type: componentType}
		}

		key := TypeKey{Kind: KindComponent, Type: componentType}
		if opts["read"] {
			b.access.Read(key)
		} else {
			b.access.Write(key)
		}
		q.fields = append(q.fields, queryField{
			typ:      componentType,
			offset:   f.Offset,
			optional: opts["optional"],
		})
	}
	if len(q.fields) == 0 {
		return invalid("query has no component fields")
	}
	return nil
}

// stores resolves the component stores for this call. A required store that
// does not exist yet means nothing can match.
func (q *Query[S]) stores() ([]componentStorage, componentStorage, bool) {
	stores := make([]componentStorage, len(q.fields))
	var driver componentStorage
	for i, f := range q.fields {
		store := q.storage.existingStore(f.typ)
		stores[i] = store
		if f.optional {
			continue
		}
		if store == nil {
			return nil, nil, false
		}
		if driver == nil || store.Len() < driver.Len() {
			driver = store
		}
	}
	return stores, driver, true
}

func (q *Query[S]) fill(result *S, e Entity, stores []componentStorage) bool {
	base := unsafe.Pointer(result)
	for i, f := range q.fields {
		fieldPtr := unsafe.Add(base, f.offset)
		var component unsafe.Pointer
		if stores[i] != nil {
			component = stores[i].ptr(e)
		}
		if component == nil && !f.optional {
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = component
	}
	if q.hasEntity {
		*(*Entity)(unsafe.Add(base, q.entityOffset)) = e
	}
	return true
}

// Iter yields every matching entity with its populated view struct. The
// driving store is the smallest required one.
func (q *Query[S]) Iter() iter.Seq2[Entity, S] {
	return func(yield func(Entity, S) bool) {
		if q.storage == nil {
			panic("Query used before the system was registered")
		}
		stores, driver, ok := q.stores()
		if !ok {
			return
		}

		var result S
		if driver == nil {
			// Every field is optional: walk all live entities.
			for e := range q.storage.entities.All() {
				if q.fill(&result, e, stores) && !yield(e, result) {
					return
				}
			}
			return
		}

		owners := driver.owners()
		for i := 0; i < len(owners); i++ {
			e := owners[i]
			if !q.fill(&result, e, stores) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values yields the view structs only.
func (q *Query[S]) Values() iter.Seq[S] {
	return func(yield func(S) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Get returns the view struct for e, or false if e does not match.
func (q *Query[S]) Get(e Entity) (S, bool) {
	var result S
	if q.storage == nil || !q.storage.entities.IsAlive(e) {
		return result, false
	}
	stores, _, ok := q.stores()
	if !ok {
		return result, false
	}
	if !q.fill(&result, e, stores) {
		var zero S
		return zero, false
	}
	return result, true
}

// Len counts the matching entities.
func (q *Query[S]) Len() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}
