package ecs

import (
	"reflect"
	"slices"
	"unsafe"
)

// Storage is the main ECS storage.
// It owns the archetypes, the entity table and the singleton components.
type Storage struct {
	archetypes map[uint32]*Archetype
	ordered    []*Archetype
	registry   *ComponentRegistry
	records    []entityRecord
	free       []uint32
	live       int
	singletons map[reflect.Type]*singletonEntry
	onDespawn  []func(Entity)
}

type singletonEntry struct {
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// NewStorage creates a new ECS storage with the given component registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry the storage was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Spawn creates a new entity with the provided components.
func (s *Storage) Spawn(components ...any) Entity {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	archetype := s.archetypeFor(types)

	entity := s.allocate()
	row := archetype.insert(entity, components)
	rec := &s.records[entity.Slot()]
	rec.archetype = archetype
	rec.row = row
	return entity
}

func (s *Storage) allocate() Entity {
	var slot uint32
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		slot = uint32(len(s.records))
		s.records = append(s.records, entityRecord{})
	}
	rec := &s.records[slot]
	rec.generation++
	rec.alive = true
	s.live++
	return newEntity(slot, rec.generation)
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypesToUint32(types)
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = NewArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
		s.ordered = append(s.ordered, archetype)
	}
	return archetype
}

func (s *Storage) record(e Entity) *entityRecord {
	slot := e.Slot()
	if e.IsZero() || int(slot) >= len(s.records) {
		return nil
	}
	rec := &s.records[slot]
	if !rec.alive || rec.generation != e.Generation() {
		return nil
	}
	return rec
}

// Alive reports whether e refers to an entity that has not been despawned.
func (s *Storage) Alive(e Entity) bool {
	return s.record(e) != nil
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return s.live
}

// OnDespawn registers a hook that runs before an entity's components are dropped.
func (s *Storage) OnDespawn(fn func(Entity)) {
	s.onDespawn = append(s.onDespawn, fn)
}

// Despawn removes the entity and all of its components.
// It returns false if the entity was not alive.
func (s *Storage) Despawn(e Entity) bool {
	rec := s.record(e)
	if rec == nil {
		return false
	}
	for _, fn := range s.onDespawn {
		fn(e)
	}
	rec.archetype.remove(rec.row)
	rec.archetype = nil
	rec.alive = false
	s.free = append(s.free, e.Slot())
	s.live--
	return true
}

// AddComponent adds or replaces a component on a live entity.
func (s *Storage) AddComponent(e Entity, component any) bool {
	rec := s.record(e)
	if rec == nil {
		return false
	}

	compType := componentType(component)
	if rec.archetype.HasComponent(compType) {
		dst := rec.archetype.GetComponent(rec.row, compType)
		reflect.ValueOf(dst).Elem().Set(componentValue(component))
		return true
	}

	newTypes := make([]reflect.Type, 0, len(rec.archetype.types)+1)
	newTypes = append(newTypes, rec.archetype.types...)
	newTypes = append(newTypes, compType)
	byTypeName(newTypes).sort()

	components := make([]any, 0, len(newTypes))
	for _, typ := range rec.archetype.types {
		components = append(components, rec.archetype.GetComponent(rec.row, typ))
	}
	components = append(components, component)

	s.move(e, rec, s.archetypeFor(newTypes), components)
	return true
}

// RemoveComponent removes a component type from a live entity.
// Removing the last component despawns the entity.
func (s *Storage) RemoveComponent(e Entity, compType reflect.Type) bool {
	rec := s.record(e)
	if rec == nil || !rec.archetype.HasComponent(compType) {
		return false
	}
	if len(rec.archetype.types) == 1 {
		return s.Despawn(e)
	}

	newTypes := make([]reflect.Type, 0, len(rec.archetype.types)-1)
	components := make([]any, 0, len(rec.archetype.types)-1)
	for _, typ := range rec.archetype.types {
		if typ == compType {
			continue
		}
		newTypes = append(newTypes, typ)
		components = append(components, rec.archetype.GetComponent(rec.row, typ))
	}

	s.move(e, rec, s.archetypeFor(newTypes), components)
	return true
}

// move copies the entity's components into another archetype.
// components hold pointers into the old archetype, so they are read before the old row is freed.
func (s *Storage) move(e Entity, rec *entityRecord, to *Archetype, components []any) {
	row := to.insert(e, components)
	rec.archetype.remove(rec.row)
	rec.archetype = to
	rec.row = row
}

// GetComponent returns a pointer to the entity's component of the given type, or nil.
func (s *Storage) GetComponent(e Entity, compType reflect.Type) any {
	rec := s.record(e)
	if rec == nil {
		return nil
	}
	return rec.archetype.GetComponent(rec.row, compType)
}

// HasComponent checks if an entity has a specific component type.
func (s *Storage) HasComponent(e Entity, compType reflect.Type) bool {
	rec := s.record(e)
	return rec != nil && rec.archetype.HasComponent(compType)
}

// ArchetypeOf returns the archetype currently holding the entity.
func (s *Storage) ArchetypeOf(e Entity) *Archetype {
	rec := s.record(e)
	if rec == nil {
		return nil
	}
	return rec.archetype
}

// Archetypes returns every archetype in creation order.
func (s *Storage) Archetypes() []*Archetype {
	return s.ordered
}

// GetArchetype returns the archetype for exactly the given component values, if one exists.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[hashTypesToUint32(extractComponentTypes(components))]
}

// AddSingleton stores a component that is not attached to any entity.
// Adding a second value of the same type overwrites the first in place.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	if entry, ok := s.singletons[t]; ok {
		entry.value.Elem().Set(reflect.ValueOf(value))
		return
	}
	v := reflect.New(t)
	v.Elem().Set(reflect.ValueOf(value))
	s.singletons[t] = &singletonEntry{value: v, dataPtr: v.UnsafePointer()}
}

// ReadSingleton points *out at the stored singleton of the matching type.
// out must be a **T. It returns false if no such singleton exists.
func (s *Storage) ReadSingleton(out any) bool {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton expects a pointer to a pointer")
	}
	entry := s.singletons[v.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	v.Elem().Set(entry.value)
	return true
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func componentValue(component any) reflect.Value {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v
}

// extractComponentTypes extracts and sorts component types from a slice of components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := componentType(comp)

		// Components are value types: structs or named primitives.
		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}
		if slices.Contains(types, compType) {
			panic("duplicate component type " + compType.String())
		}

		types = append(types, compType)
	}
	byTypeName(types).sort()
	return types
}

// hashTypesToUint32 generates an FNV-1a hash over the identities of a sorted slice of types.
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := uintptr(dataPointer(t))
		val := uint32(ptr)
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}
		h ^= val
		h *= prime
	}

	return h
}

// ComponentReader is anything that can look up an entity's component by type.
type ComponentReader interface {
	GetComponent(Entity, reflect.Type) any
}

// ReadComponent returns a typed pointer to the entity's component, or nil if it is missing.
func ReadComponent[T any](reader ComponentReader, e Entity) *T {
	c, _ := reader.GetComponent(e, reflect.TypeFor[T]()).(*T)
	return c
}
