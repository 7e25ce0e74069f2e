package ecs

import (
	"iter"
	"math/bits"
	"reflect"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent worlds to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return &pagedColumn[T]{}
	}
}

// Registered reports whether the component type has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const pageSize = 64

type page[T any] struct {
	values   [pageSize]T
	occupied uint64
}

// pagedColumn stores components of type T in fixed-size pages.
// Pages are allocated individually so a pointer returned by Get stays valid
// while other rows are appended.
type pagedColumn[T any] struct {
	pages     []*page[T]
	freeSlots []int
	nextIndex int
}

func (c *pagedColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(c.freeSlots); n > 0 {
		index = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		index = c.nextIndex
		c.nextIndex++
		if index/pageSize >= len(c.pages) {
			c.pages = append(c.pages, &page[T]{})
		}
	}

	p := c.pages[index/pageSize]
	slot := index % pageSize
	p.values[slot] = value
	p.occupied |= 1 << slot
	return index
}

func (c *pagedColumn[T]) Get(index int) any {
	if !c.Has(index) {
		return nil
	}
	return &c.pages[index/pageSize].values[index%pageSize]
}

func (c *pagedColumn[T]) Has(index int) bool {
	if index < 0 || index/pageSize >= len(c.pages) {
		return false
	}
	return c.pages[index/pageSize].occupied&(1<<(index%pageSize)) != 0
}

func (c *pagedColumn[T]) Delete(index int) {
	if !c.Has(index) {
		return
	}
	p := c.pages[index/pageSize]
	slot := index % pageSize
	var zero T
	p.values[slot] = zero
	p.occupied &^= 1 << slot
	c.freeSlots = append(c.freeSlots, index)
}

func (c *pagedColumn[T]) Len() int {
	return c.nextIndex - len(c.freeSlots)
}

func (c *pagedColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for pi, p := range c.pages {
			mask := p.occupied
			for mask != 0 {
				slot := bits.TrailingZeros64(mask)
				mask &= mask - 1
				if !yield(pi*pageSize + slot) {
					return
				}
			}
		}
	}
}
