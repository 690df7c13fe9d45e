package ecs

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// componentStorage is the type-erased view of a ComponentStore used by Storage,
// Query and the command buffer.
type componentStorage interface {
	Type() reflect.Type
	Len() int
	Has(e Entity) bool
	getAny(e Entity) any
	insertAny(e Entity, value any) bool
	removeEntity(e Entity) bool
	ptr(e Entity) unsafe.Pointer
	owners() []Entity
	componentId() int
}

// ComponentStore is a sparse set holding every component of type T.
// Values live in a dense slice, keyed by entity index through an intmap.
// Removal swaps the last element into the hole, so iteration order is
// insertion order perturbed only by removals.
type ComponentStore[T any] struct {
	id       int
	typ      reflect.Type
	dense    []T
	entities []Entity
	sparse   *intmap.Map[uint32, int32]
}

func newComponentStore[T any](id int) *ComponentStore[T] {
	return &ComponentStore[T]{
		id:     id,
		typ:    reflect.TypeFor[T](),
		sparse: intmap.New[uint32, int32](64),
	}
}

// Type returns the component type held by this store.
func (cs *ComponentStore[T]) Type() reflect.Type {
	return cs.typ
}

// Len returns the number of stored components.
func (cs *ComponentStore[T]) Len() int {
	return len(cs.dense)
}

func (cs *ComponentStore[T]) position(e Entity) (int, bool) {
	pos, ok := cs.sparse.Get(e.Index())
	if !ok || cs.entities[pos] != e {
		return 0, false
	}
	return int(pos), true
}

// Insert stores value for e, overwriting any previous value.
func (cs *ComponentStore[T]) Insert(e Entity, value T) {
	if pos, ok := cs.sparse.Get(e.Index()); ok {
		// Either the same entity or a stale generation left behind; both
		// are overwritten in place.
		cs.entities[pos] = e
		cs.dense[pos] = value
		return
	}
	cs.sparse.Put(e.Index(), int32(len(cs.dense)))
	cs.dense = append(cs.dense, value)
	cs.entities = append(cs.entities, e)
}

// Remove deletes and returns the component of e.
func (cs *ComponentStore[T]) Remove(e Entity) (T, bool) {
	var zero T
	pos, ok := cs.position(e)
	if !ok {
		return zero, false
	}
	value := cs.dense[pos]

	last := len(cs.dense) - 1
	if pos != last {
		cs.dense[pos] = cs.dense[last]
		cs.entities[pos] = cs.entities[last]
		cs.sparse.Put(cs.entities[pos].Index(), int32(pos))
	}
	cs.dense[last] = zero
	cs.dense = cs.dense[:last]
	cs.entities = cs.entities[:last]
	cs.sparse.Del(e.Index())

	return value, true
}

// Get returns a copy of the component of e.
func (cs *ComponentStore[T]) Get(e Entity) (T, bool) {
	pos, ok := cs.position(e)
	if !ok {
		var zero T
		return zero, false
	}
	return cs.dense[pos], true
}

// GetMut returns a pointer to the component of e, or nil if absent. The
// pointer is valid until the next structural change to this store.
func (cs *ComponentStore[T]) GetMut(e Entity) *T {
	pos, ok := cs.position(e)
	if !ok {
		return nil
	}
	return &cs.dense[pos]
}

// Has checks if e has a component in this store.
func (cs *ComponentStore[T]) Has(e Entity) bool {
	_, ok := cs.position(e)
	return ok
}

// All returns an iterator over entities and copies of their components.
func (cs *ComponentStore[T]) All() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for i := range cs.dense {
			if !yield(cs.entities[i], cs.dense[i]) {
				return
			}
		}
	}
}

// AllMut returns an iterator over entities and pointers to their components.
func (cs *ComponentStore[T]) AllMut() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range cs.dense {
			if !yield(cs.entities[i], &cs.dense[i]) {
				return
			}
		}
	}
}

func (cs *ComponentStore[T]) getAny(e Entity) any {
	ptr := cs.GetMut(e)
	if ptr == nil {
		return nil
	}
	return ptr
}

func (cs *ComponentStore[T]) insertAny(e Entity, value any) bool {
	if ptr, ok := value.(*T); ok {
		cs.Insert(e, *ptr)
		return true
	}
	if val, ok := value.(T); ok {
		cs.Insert(e, val)
		return true
	}
	return false
}

func (cs *ComponentStore[T]) removeEntity(e Entity) bool {
	_, ok := cs.Remove(e)
	return ok
}

func (cs *ComponentStore[T]) ptr(e Entity) unsafe.Pointer {
	pos, ok := cs.position(e)
	if !ok {
		return nil
	}
	return unsafe.Pointer(&cs.dense[pos])
}

func (cs *ComponentStore[T]) owners() []Entity {
	return cs.entities
}

func (cs *ComponentStore[T]) componentId() int {
	return cs.id
}
