package ecs

import "reflect"

// StorageStats is a point-in-time summary of what a Storage holds.
type StorageStats struct {
	ArchetypeCount     int
	TotalEntityCount   int
	SingletonCount     int
	ArchetypeBreakdown []ArchetypeStats
	SingletonTypes     []reflect.Type
}

// ArchetypeStats describes one archetype.
type ArchetypeStats struct {
	ID          uint32
	Types       []reflect.Type
	EntityCount int
}

// CollectStats walks the storage and summarizes archetypes and singletons.
// Archetypes that are currently empty are still listed.
func (s *Storage) CollectStats() *StorageStats {
	stats := &StorageStats{
		ArchetypeCount:     len(s.ordered),
		TotalEntityCount:   s.live,
		SingletonCount:     len(s.singletons),
		ArchetypeBreakdown: make([]ArchetypeStats, 0, len(s.ordered)),
		SingletonTypes:     make([]reflect.Type, 0, len(s.singletons)),
	}

	for _, archetype := range s.ordered {
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, ArchetypeStats{
			ID:          archetype.id,
			Types:       archetype.types,
			EntityCount: archetype.Len(),
		})
	}

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t)
	}
	byTypeName(stats.SingletonTypes).sort()

	return stats
}
