package sim

import (
	"fmt"
	"log"

	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// DebugPrinterSystem logs the pose and velocity of every moving collider.
type DebugPrinterSystem struct {
	Bodies ecs.Query[struct {
		*Collider
		*Motion
	}]

	physics *physics.World
	logger  *log.Logger
}

func (s *DebugPrinterSystem) Execute(frame *ecs.UpdateFrame) error {
	for e, body := range s.Bodies.Iter() {
		pose, err := s.physics.Pose(body.Collider.Handle)
		if err != nil {
			return fmt.Errorf("debug %s: %w", e, err)
		}
		s.logger.Printf("tick %d: object %s position %v angle %.4f, velocity <%g,%g>",
			frame.Tick, e, pose.Position, pose.Angle, body.Motion.Velocity.X, body.Motion.Velocity.Y)
	}
	return nil
}
