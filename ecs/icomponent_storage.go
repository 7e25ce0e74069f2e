package ecs

import "iter"

// iComponentStorage is a type-erased column of one component type.
// All columns of an archetype are mutated in lockstep, so a row index
// means the same entity in every column.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Iter() iter.Seq[int]
}
