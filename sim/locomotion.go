package sim

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

var zero cp.Vector

// LocomotionSystem walks the player along the surface of its ground body.
// It reads two entities' poses and writes the player's pose, so it runs as
// its own step before gravity.
type LocomotionSystem struct {
	Players ecs.Query[struct {
		*Player
		*Motion
		*Collider
	}]
	Camera      ecs.Singleton[Camera]
	Diagnostics ecs.Singleton[Diagnostics]

	physics *physics.World
}

func (s *LocomotionSystem) Execute(frame *ecs.UpdateFrame) error {
	for e, p := range s.Players.Iter() {
		pose, err := s.physics.Pose(p.Collider.Handle)
		if err != nil {
			return fmt.Errorf("player %s: %w", e, err)
		}

		offset, grounded, err := s.groundOffset(frame.Storage, p.Player, pose.Position)
		if err != nil {
			return fmt.Errorf("player %s ground: %w", e, err)
		}

		next := pose
		if grounded {
			radial := offset.Normalize()
			if p.Player.OnGround {
				lockToSurface(p.Player, p.Motion, radial)
			}
			next.Angle = math.Atan2(offset.X, -offset.Y)
		} else {
			s.Diagnostics.Get().FreeFallTicks++
		}

		p.Motion.Velocity = p.Motion.Velocity.Add(p.Motion.Acceleration)
		p.Motion.Acceleration = zero
		next.Position = pose.Position.Add(p.Motion.Velocity)

		if err := s.physics.SetPose(p.Collider.Handle, next); err != nil {
			return fmt.Errorf("player %s: %w", e, err)
		}
		s.Camera.Get().Focus = next.Position
	}
	return nil
}

// groundOffset returns the offset from the player's ground body to the player.
// ok is false when there is no usable ground reference.
func (s *LocomotionSystem) groundOffset(storage *ecs.Storage, player *Player, position cp.Vector) (offset cp.Vector, ok bool, err error) {
	if player.Ground.IsZero() || !storage.Alive(player.Ground) {
		return zero, false, nil
	}
	collider := ecs.ReadComponent[Collider](storage, player.Ground)
	if collider == nil {
		return zero, false, nil
	}
	ground, err := s.physics.Pose(collider.Handle)
	if err != nil {
		return zero, false, err
	}
	offset = position.Sub(ground.Position)
	if offset.LengthSq() == 0 {
		return zero, false, nil
	}
	return offset, true, nil
}

// lockToSurface removes the radial part of the velocity and applies jump and run input.
func lockToSurface(player *Player, motion *Motion, radial cp.Vector) {
	motion.Velocity = motion.Velocity.Sub(radial.Mult(motion.Velocity.Dot(radial)))

	motion.Acceleration = zero
	if player.Jumping {
		motion.Acceleration = motion.Acceleration.Add(radial)
		player.OnGround = false
	}

	player.Velocity += player.Run * player.RunAcceleration
	if player.MaxRunSpeed > 0 {
		player.Velocity = max(-player.MaxRunSpeed, min(player.MaxRunSpeed, player.Velocity))
	}
	motion.Acceleration = motion.Acceleration.Add(radial.Perp().Mult(player.Velocity * player.RunAcceleration))
}
