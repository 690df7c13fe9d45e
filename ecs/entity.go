package ecs

import "strconv"

// Entity encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. The generation increments on destroy so stale handles are
// detectably invalid. Generations start at 1, so the zero Entity is never alive.
type Entity uint64

// NewEntity creates an Entity from a slot index and generation
func NewEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation from the entity
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// IsZero reports whether e is the zero (never valid) entity
func (e Entity) IsZero() bool {
	return e == 0
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.Index()), 10) + "v" + strconv.FormatUint(uint64(e.Generation()), 10)
}
