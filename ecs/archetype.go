package ecs

import (
	"iter"
	"reflect"
	"slices"
	"sort"

	"github.com/kamstrup/intmap"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }
func (a byTypeName) sort()              { sort.Sort(a) }

// Archetype holds every entity that has exactly the same set of component types.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
	owners   *intmap.Map[uint32, Entity]
}

// NewArchetype creates a new archetype with the given ID and sorted component types.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]iComponentStorage, len(types)),
		owners:   intmap.New[uint32, Entity](64),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[idx] = factory()
	}

	return a
}

// insert appends one row and returns its index.
// components must hold exactly one value for each of the archetype's types.
func (a *Archetype) insert(owner Entity, components []any) uint32 {
	row := -1
	for _, comp := range components {
		idx := a.column(componentType(comp))
		if idx < 0 {
			panic("component " + componentType(comp).String() + " does not belong to archetype")
		}
		row = a.storages[idx].Append(comp)
	}
	a.owners.Put(uint32(row), owner)
	return uint32(row)
}

func (a *Archetype) remove(row uint32) {
	for _, storage := range a.storages {
		storage.Delete(int(row))
	}
	a.owners.Del(row)
}

func (a *Archetype) column(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

// GetComponent returns a pointer to the component of the given type stored at row, or nil.
func (a *Archetype) GetComponent(row uint32, compType reflect.Type) any {
	idx := a.column(compType)
	if idx < 0 {
		return nil
	}
	return a.storages[idx].Get(int(row))
}

// HasComponent checks if this archetype has the given component type.
func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

// ID returns the archetype's hash identifier.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types for this archetype.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities in the archetype.
func (a *Archetype) Len() int {
	return a.owners.Len()
}

// Iter yields each live entity together with its row.
func (a *Archetype) Iter() iter.Seq2[Entity, uint32] {
	return func(yield func(Entity, uint32) bool) {
		if len(a.storages) == 0 {
			return
		}
		for row := range a.storages[0].Iter() {
			owner, ok := a.owners.Get(uint32(row))
			if !ok {
				continue
			}
			if !yield(owner, uint32(row)) {
				return
			}
		}
	}
}
