package physics

import (
	"errors"
	"fmt"
)

// ErrStaleHandle is returned when a handle no longer refers to a live object.
var ErrStaleHandle = errors.New("stale physics handle")

// Handle refers to an object in a World.
// Slots are reused, so a handle also carries the slot generation; a handle
// whose object has been removed never resolves again.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle, which never resolves.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("handle(%d#%d)", h.index, h.generation)
}

func staleHandle(h Handle) error {
	return fmt.Errorf("%w: %s", ErrStaleHandle, h)
}
