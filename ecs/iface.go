package ecs

import "unsafe"

// iface mirrors the runtime layout of an interface value.
// Component storages return pointers boxed in `any`; the data word is that pointer.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

func dataPointer(v any) unsafe.Pointer {
	return (*iface)(unsafe.Pointer(&v)).data
}
