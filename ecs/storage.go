package ecs

import (
	"reflect"
	"sort"
)

// Storage owns every entity, component and resource of one ECS world.
// Systems never mutate its shape directly; they go through Commands, which the
// Scheduler flushes between stages.
type Storage struct {
	registry  *ComponentRegistry
	entities  *EntityRegistry
	stores    []componentStorage
	resources *Resources
}

// NewStorage creates a new ECS storage with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:  registry,
		entities:  NewEntityRegistry(),
		resources: NewResources(),
	}
}

// Registry returns the component registry backing this storage.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Entities returns the entity registry.
func (s *Storage) Entities() *EntityRegistry {
	return s.entities
}

// Resources returns the resource store.
func (s *Storage) Resources() *Resources {
	return s.resources
}

// Spawn creates a live entity with the provided components.
func (s *Storage) Spawn(components ...any) Entity {
	e := s.entities.Create()
	for _, component := range components {
		s.insert(e, component)
	}
	return e
}

// spawnReserved makes a reserved entity alive and attaches its components.
func (s *Storage) spawnReserved(e Entity, components []any) bool {
	if !s.entities.activate(e) {
		return false
	}
	for _, component := range components {
		s.insert(e, component)
	}
	return true
}

// Despawn removes e and all of its components. It returns false for stale
// or unknown entities.
func (s *Storage) Despawn(e Entity) bool {
	if !s.entities.IsAlive(e) {
		// Reserved entities can be cancelled before they are spawned.
		return s.entities.Destroy(e)
	}
	s.entities.eachComponent(e, func(id int) {
		if store := s.stores[id]; store != nil {
			store.removeEntity(e)
		}
	})
	return s.entities.Destroy(e)
}

// AddComponent attaches component to e, overwriting an existing component of
// the same type. It returns false if e is not alive.
func (s *Storage) AddComponent(e Entity, component any) bool {
	if !s.entities.IsAlive(e) {
		return false
	}
	s.insert(e, component)
	return true
}

func (s *Storage) insert(e Entity, component any) {
	store := s.storeFor(componentTypeOf(component))
	if !store.insertAny(e, component) {
		panic("component value does not match store type " + store.Type().String())
	}
	s.entities.markComponent(e, store.componentId(), true)
}

// RemoveComponent detaches the component of type compType from e.
func (s *Storage) RemoveComponent(e Entity, compType reflect.Type) bool {
	if !s.entities.IsAlive(e) {
		return false
	}
	id, ok := s.registry.lookup(compType)
	if !ok || id >= len(s.stores) || s.stores[id] == nil {
		return false
	}
	if !s.stores[id].removeEntity(e) {
		return false
	}
	s.entities.markComponent(e, id, false)
	return true
}

// GetComponent returns a pointer to the component for the given entity and
// component type, or nil.
func (s *Storage) GetComponent(e Entity, compType reflect.Type) any {
	store := s.existingStore(compType)
	if store == nil {
		return nil
	}
	return store.getAny(e)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(e Entity, compType reflect.Type) bool {
	store := s.existingStore(compType)
	return store != nil && store.Has(e)
}

// ComponentTypes returns the component types currently attached to e, in
// registration order.
func (s *Storage) ComponentTypes(e Entity) []reflect.Type {
	var types []reflect.Type
	s.entities.eachComponent(e, func(id int) {
		types = append(types, s.registry.types[id])
	})
	return types
}

// IsAlive reports whether e is a live entity.
func (s *Storage) IsAlive(e Entity) bool {
	return s.entities.IsAlive(e)
}

func (s *Storage) existingStore(t reflect.Type) componentStorage {
	id, ok := s.registry.lookup(t)
	if !ok || id >= len(s.stores) {
		return nil
	}
	return s.stores[id]
}

// storeFor returns the store for t, creating it on first use. Unregistered
// types panic with *UnregisteredComponentError.
func (s *Storage) storeFor(t reflect.Type) componentStorage {
	id, ok := s.registry.lookup(t)
	if !ok {
		panic(&UnregisteredComponentError{Type: t})
	}
	for len(s.stores) <= id {
		s.stores = append(s.stores, nil)
	}
	if s.stores[id] == nil {
		s.stores[id] = s.registry.factories[id](id)
	}
	return s.stores[id]
}

// Store returns the typed component store for T, registering T if needed.
func Store[T any](s *Storage) *ComponentStore[T] {
	RegisterComponent[T](s.registry)
	return s.storeFor(reflect.TypeFor[T]()).(*ComponentStore[T])
}

type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent returns the component of type T for e, or nil.
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	component := reader.GetComponent(e, reflect.TypeFor[T]())
	if component == nil {
		return nil
	}
	return component.(*T)
}

// StorageStats summarises storage contents for diagnostics.
type StorageStats struct {
	EntityCount    int
	SlotCount      int
	ComponentCount int
	Components     []ComponentStats
	ResourceCount  int
	ResourceTypes  []string
}

// ComponentStats describes one component store.
type ComponentStats struct {
	Type  string
	Count int
}

// CollectStats gathers entity, component and resource counts.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		EntityCount: s.entities.Len(),
		SlotCount:   s.entities.Capacity(),
	}

	for _, store := range s.stores {
		if store == nil {
			continue
		}
		stats.Components = append(stats.Components, ComponentStats{
			Type:  store.Type().String(),
			Count: store.Len(),
		})
		stats.ComponentCount += store.Len()
	}
	sort.Slice(stats.Components, func(i, j int) bool {
		return stats.Components[i].Type < stats.Components[j].Type
	})

	for _, t := range s.resources.Types() {
		stats.ResourceTypes = append(stats.ResourceTypes, t.String())
	}
	stats.ResourceCount = len(stats.ResourceTypes)

	return stats
}
