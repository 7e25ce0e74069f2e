package sim

import (
	"reflect"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// Motion holds kinematic deltas. Acceleration is scratch space that is
// zero at every tick boundary.
type Motion struct {
	Velocity     cp.Vector
	Acceleration cp.Vector
}

// Mass marks an entity as affected by gravity sources.
type Mass struct{}

// Gravity marks an entity with a Collider as a gravity source.
// Force is a strength coefficient; sources add up.
type Gravity struct {
	Force float64
}

// Player is the state of the single player entity.
type Player struct {
	OnGround bool
	Jumping  bool
	// Run is the tangential run input in [-1, 1].
	Run float64
	// Velocity is the integrated tangential run speed.
	Velocity        float64
	RunAcceleration float64
	// MaxRunSpeed clamps Velocity when positive.
	MaxRunSpeed float64
	// Ground is the gravity body the player walks on. Zero means none yet.
	Ground ecs.Entity
}

// Collider links an entity to its object in the physics world.
type Collider struct {
	Handle physics.Handle
}

type MeshKind int

const (
	MeshPlanet MeshKind = iota
	MeshPlayer
	MeshObstacle
	MeshBody
)

func (k MeshKind) String() string {
	switch k {
	case MeshPlanet:
		return "planet"
	case MeshPlayer:
		return "player"
	case MeshObstacle:
		return "obstacle"
	case MeshBody:
		return "body"
	}
	return "unknown"
}

// Mesh tells renderers what to draw for an entity.
type Mesh struct {
	Kind       MeshKind
	Radius     float64
	HalfWidth  float64
	HalfHeight float64
}

// Obstacle marks static obstacles.
type Obstacle struct{}

// Bounce carries the "currently colliding" flag used in bounce mode.
type Bounce struct {
	Colliding bool
}

// Camera is where renderers should center the view.
type Camera struct {
	Focus cp.Vector
}

// Diagnostics counts conditions the tick recovered from, plus contact traffic.
type Diagnostics struct {
	DegenerateDistances uint64
	EmptyManifolds      uint64
	FreeFallTicks       uint64
	ContactsStarted     uint64
	ContactsStopped     uint64
}

var gravityType = reflect.TypeFor[Gravity]()

func newRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Motion](registry)
	ecs.RegisterComponent[Mass](registry)
	ecs.RegisterComponent[Gravity](registry)
	ecs.RegisterComponent[Player](registry)
	ecs.RegisterComponent[Collider](registry)
	ecs.RegisterComponent[Mesh](registry)
	ecs.RegisterComponent[Obstacle](registry)
	ecs.RegisterComponent[Bounce](registry)
	return registry
}
