package sim

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// minGravityDistance guards against the singularity when an entity sits on a source.
const minGravityDistance = 0.1

// GravitySystem accumulates the pull of every gravity source into the
// acceleration of every massive body. It never touches the physics world.
type GravitySystem struct {
	Sources ecs.Query[struct {
		*Collider
		*Gravity
	}]
	Bodies ecs.Query[struct {
		*Motion
		*Collider
		*Mass
	}]
	Diagnostics ecs.Singleton[Diagnostics]

	physics *physics.World
	logger  *log.Logger
	sources []gravitySource
}

type gravitySource struct {
	entity   ecs.Entity
	position cp.Vector
	force    float64
}

func (s *GravitySystem) Execute(frame *ecs.UpdateFrame) error {
	s.sources = s.sources[:0]
	for e, src := range s.Sources.Iter() {
		pose, err := s.physics.Pose(src.Collider.Handle)
		if err != nil {
			return fmt.Errorf("gravity source %s: %w", e, err)
		}
		s.sources = append(s.sources, gravitySource{entity: e, position: pose.Position, force: src.Gravity.Force})
	}
	if len(s.sources) == 0 {
		return nil
	}

	for e, body := range s.Bodies.Iter() {
		pose, err := s.physics.Pose(body.Collider.Handle)
		if err != nil {
			return fmt.Errorf("gravity body %s: %w", e, err)
		}
		for _, src := range s.sources {
			if src.entity == e {
				continue
			}
			offset := src.position.Sub(pose.Position)
			distance := offset.Length()
			if math.IsNaN(distance) || distance <= minGravityDistance {
				s.Diagnostics.Get().DegenerateDistances++
				s.logger.Printf("gravity: skipping source %s for %s at distance %v", src.entity, e, distance)
				continue
			}
			body.Motion.Acceleration = body.Motion.Acceleration.Add(offset.Mult(src.force / (distance * distance)))
		}
	}
	return nil
}
