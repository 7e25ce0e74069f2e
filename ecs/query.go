package ecs

import "iter"

// Query wraps a View and caches the archetypes that match it.
// The cache is rebuilt whenever the storage has created new archetypes.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	lastArchetypeCount int
}

// NewQuery creates a new Query with archetype-level caching.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.lastArchetypeCount = -1
}

func (q *Query[T]) refresh() {
	if q.view == nil {
		panic("Query used before Init")
	}
	ordered := q.storage.ordered
	if len(ordered) == q.lastArchetypeCount {
		return
	}
	// Archetypes are append-only, so only the new tail needs matching.
	start := max(q.lastArchetypeCount, 0)
	for _, archetype := range ordered[start:] {
		if q.view.matchesArchetype(archetype) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
		}
	}
	q.lastArchetypeCount = len(ordered)
}

// Iter returns an iterator over entities and their component data.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	q.refresh()
	archetypes := q.cachedArchetypes
	return func(yield func(Entity, T) bool) {
		for _, archetype := range archetypes {
			for e, item := range q.view.iterArchetype(archetype) {
				if !yield(e, item) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Get returns the view struct for a single entity, or nil if it does not match.
func (q *Query[T]) Get(e Entity) *T {
	if q.view == nil {
		panic("Query used before Init")
	}
	return q.view.Get(e)
}

// Count returns the number of entities currently matching the query.
func (q *Query[T]) Count() int {
	q.refresh()
	n := 0
	for _, archetype := range q.cachedArchetypes {
		for range q.view.iterArchetype(archetype) {
			n++
		}
	}
	return n
}
