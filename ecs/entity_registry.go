package ecs

import (
	"container/heap"
	"iter"
)

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotAlive
)

type entitySlot struct {
	generation  uint32
	state       slotState
	pins        int32
	pendingFree bool
	components  bitset
}

// freeIndices is a min-heap so Create always reuses the lowest free index.
type freeIndices []uint32

func (f freeIndices) Len() int           { return len(f) }
func (f freeIndices) Less(i, j int) bool { return f[i] < f[j] }
func (f freeIndices) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *freeIndices) Push(x any)        { *f = append(*f, x.(uint32)) }
func (f *freeIndices) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}

// EntityRegistry allocates and recycles generational entity identifiers and
// tracks which component types each live entity currently has.
type EntityRegistry struct {
	slots []entitySlot
	free  freeIndices
	alive int
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		slots: make([]entitySlot, 0, 1024),
		free:  make(freeIndices, 0, 256),
	}
}

// Create allocates a live entity, reusing the lowest free index.
func (r *EntityRegistry) Create() Entity {
	e := r.allocate()
	r.slots[e.Index()].state = slotAlive
	r.alive++
	return e
}

// Reserve allocates an identifier that is not alive until it is activated by a
// command buffer flush. Reserved identifiers fail IsAlive.
func (r *EntityRegistry) Reserve() Entity {
	e := r.allocate()
	r.slots[e.Index()].state = slotReserved
	return e
}

func (r *EntityRegistry) allocate() Entity {
	if r.free.Len() > 0 {
		idx := heap.Pop(&r.free).(uint32)
		return NewEntity(idx, r.slots[idx].generation)
	}
	idx := uint32(len(r.slots))
	r.slots = append(r.slots, entitySlot{generation: 1})
	return NewEntity(idx, 1)
}

func (r *EntityRegistry) activate(e Entity) bool {
	slot := r.slot(e)
	if slot == nil || slot.state != slotReserved {
		return false
	}
	slot.state = slotAlive
	r.alive++
	return true
}

// Destroy invalidates e. It returns false without side effects when e is stale
// or was never allocated. The index is not recycled while a pending command
// still references it.
func (r *EntityRegistry) Destroy(e Entity) bool {
	slot := r.slot(e)
	if slot == nil || slot.state == slotFree {
		return false
	}
	if slot.state == slotAlive {
		r.alive--
	}
	slot.state = slotFree
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	slot.components.reset()

	if slot.pins > 0 {
		slot.pendingFree = true
	} else {
		heap.Push(&r.free, e.Index())
	}
	return true
}

// IsAlive reports whether e refers to a live entity.
func (r *EntityRegistry) IsAlive(e Entity) bool {
	slot := r.slot(e)
	return slot != nil && slot.state == slotAlive
}

// Len returns the number of live entities.
func (r *EntityRegistry) Len() int {
	return r.alive
}

// Capacity returns the number of slots ever allocated.
func (r *EntityRegistry) Capacity() int {
	return len(r.slots)
}

// All yields live entities in index order.
func (r *EntityRegistry) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for idx := range r.slots {
			slot := &r.slots[idx]
			if slot.state != slotAlive {
				continue
			}
			if !yield(NewEntity(uint32(idx), slot.generation)) {
				return
			}
		}
	}
}

// componentCount returns how many component types e carries.
func (r *EntityRegistry) componentCount(e Entity) int {
	slot := r.slot(e)
	if slot == nil {
		return 0
	}
	return slot.components.count()
}

func (r *EntityRegistry) slot(e Entity) *entitySlot {
	idx := e.Index()
	if int(idx) >= len(r.slots) {
		return nil
	}
	slot := &r.slots[idx]
	if slot.generation != e.Generation() {
		return nil
	}
	return slot
}

func (r *EntityRegistry) markComponent(e Entity, componentId int, present bool) {
	slot := r.slot(e)
	if slot == nil {
		return
	}
	if present {
		slot.components.set(componentId)
	} else {
		slot.components.unset(componentId)
	}
}

func (r *EntityRegistry) eachComponent(e Entity, fn func(componentId int)) {
	slot := r.slot(e)
	if slot == nil {
		return
	}
	slot.components.each(fn)
}

// pin marks the index of e as referenced by a pending command.
func (r *EntityRegistry) pin(e Entity) {
	idx := e.Index()
	if int(idx) >= len(r.slots) {
		return
	}
	r.slots[idx].pins++
}

// unpin releases a reference taken by pin and recycles the index if it was
// destroyed while pinned.
func (r *EntityRegistry) unpin(e Entity) {
	idx := e.Index()
	if int(idx) >= len(r.slots) {
		return
	}
	slot := &r.slots[idx]
	if slot.pins == 0 {
		return
	}
	slot.pins--
	if slot.pins == 0 && slot.pendingFree {
		slot.pendingFree = false
		heap.Push(&r.free, idx)
	}
}
