package debugui

import (
	"fmt"
	"reflect"
	"sync"
)

var stringerType = reflect.TypeFor[fmt.Stringer]()

type FieldInfo struct {
	Name string
	Type reflect.Type
	// Index is the path from the component root, usable with reflect.Value.FieldByIndex.
	Index     []int
	IsPointer bool
	IsStruct  bool
	IsSlice   bool
	IsMap     bool
	// IsStringer fields are opaque values shown with their String method and
	// never edited. Structs with exported fields are expanded instead.
	IsStringer bool
}

type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

// GetFields returns the exported fields of t with root-relative index paths.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	return rc.fields(t, nil)
}

// NestedFields returns the exported fields of parent's struct type with index
// paths that continue from parent.
func (rc *ReflectionCache) NestedFields(parent FieldInfo) []FieldInfo {
	return rc.fields(parent.Type, parent.Index)
}

func (rc *ReflectionCache) fields(t reflect.Type, prefix []int) []FieldInfo {
	base := rc.lookup(t)
	if len(prefix) == 0 {
		return base
	}
	out := make([]FieldInfo, len(base))
	for i, f := range base {
		f.Index = append(append([]int(nil), prefix...), f.Index...)
		out[i] = f
	}
	return out
}

func (rc *ReflectionCache) lookup(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:       field.Name,
				Type:       fieldType,
				Index:      []int{i},
				IsPointer:  isPointer,
				IsStruct:   fieldType.Kind() == reflect.Struct,
				IsSlice:    fieldType.Kind() == reflect.Slice,
				IsMap:      fieldType.Kind() == reflect.Map,
				IsStringer: fieldType.Implements(stringerType) && !hasExportedFields(fieldType),
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

func hasExportedFields(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

var globalReflectionCache = NewReflectionCache()
