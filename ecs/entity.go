package ecs

import "fmt"

// Entity identifies an entity for its whole lifetime.
// The upper 32 bits hold the slot generation, the lower 32 bits the slot index.
// Generations start at 1, so the zero Entity never refers to a live entity.
type Entity uint64

func newEntity(slot uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(slot))
}

// Slot returns the storage slot of the entity.
func (e Entity) Slot() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation returns how many times the slot had been reused when the entity was created.
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// IsZero reports whether e is the zero Entity.
func (e Entity) IsZero() bool {
	return e == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.Slot(), e.Generation())
}

// entityRecord locates a live entity's row inside its archetype.
type entityRecord struct {
	archetype  *Archetype
	row        uint32
	generation uint32
	alive      bool
}
