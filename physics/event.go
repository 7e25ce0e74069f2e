package physics

import "github.com/jakecoffman/cp"

type EventKind int

const (
	Started EventKind = iota
	Stopped
)

func (k EventKind) String() string {
	if k == Started {
		return "started"
	}
	return "stopped"
}

// Event reports a change in contact between two objects.
// Started events carry the manifold captured when the contact began;
// Stopped events carry none.
type Event struct {
	Kind   EventKind
	A, B   Handle
	Normal cp.Vector
	Points []cp.Vector
}
