package sim

import (
	"fmt"

	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// IntegratorSystem folds acceleration into velocity and moves every collider
// by its velocity. The player is integrated but not moved: locomotion owns
// the player's pose.
type IntegratorSystem struct {
	Bodies ecs.Query[struct {
		*Collider
		*Motion
		Player *Player `ecs:"optional"`
	}]

	physics *physics.World
}

func (s *IntegratorSystem) Execute(frame *ecs.UpdateFrame) error {
	for e, body := range s.Bodies.Iter() {
		m := body.Motion
		m.Velocity = m.Velocity.Add(m.Acceleration)
		m.Acceleration = zero
		if body.Player != nil {
			continue
		}
		if err := s.physics.Translate(body.Collider.Handle, m.Velocity); err != nil {
			return fmt.Errorf("integrate %s: %w", e, err)
		}
	}
	return nil
}
