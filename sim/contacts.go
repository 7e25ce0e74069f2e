package sim

import (
	"fmt"

	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// Mode selects how contacts change gameplay state.
type Mode int

const (
	// ModeGround drives the player's on-ground flag.
	ModeGround Mode = iota
	// ModeBounce reflects velocities across the contact normal.
	ModeBounce
)

func (m Mode) String() string {
	switch m {
	case ModeGround:
		return "ground"
	case ModeBounce:
		return "bounce"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "ground" or "bounce". The empty string means ground.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "ground":
		return ModeGround, nil
	case "bounce":
		return ModeBounce, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// RefreshSystem runs contact detection against the poses written so far this tick.
type RefreshSystem struct {
	physics *physics.World
}

func (s *RefreshSystem) Execute(frame *ecs.UpdateFrame) error {
	s.physics.Update()
	return nil
}

// ResolverSystem turns the contact events of the last refresh into gameplay state.
type ResolverSystem struct {
	Diagnostics ecs.Singleton[Diagnostics]

	physics *physics.World
	mode    Mode
}

func (s *ResolverSystem) Execute(frame *ecs.UpdateFrame) error {
	for _, ev := range s.physics.Events() {
		if err := s.resolve(frame.Storage, ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResolverSystem) resolve(storage *ecs.Storage, ev physics.Event) error {
	a, err := s.owner(storage, ev.A)
	if err != nil {
		return fmt.Errorf("%s contact: %w", ev.Kind, err)
	}
	b, err := s.owner(storage, ev.B)
	if err != nil {
		return fmt.Errorf("%s contact: %w", ev.Kind, err)
	}

	diag := s.Diagnostics.Get()
	switch ev.Kind {
	case physics.Started:
		diag.ContactsStarted++
		if len(ev.Points) == 0 {
			diag.EmptyManifolds++
			return nil
		}
		s.started(storage, ev, a, b)
	case physics.Stopped:
		diag.ContactsStopped++
		s.stopped(storage, [2]ecs.Entity{a, b}, [2]physics.Handle{ev.A, ev.B})
	}
	return nil
}

// owner resolves a handle and checks the owner still points back at it.
func (s *ResolverSystem) owner(storage *ecs.Storage, h physics.Handle) (ecs.Entity, error) {
	e, err := s.physics.Owner(h)
	if err != nil {
		return 0, err
	}
	collider := ecs.ReadComponent[Collider](storage, e)
	if collider == nil || collider.Handle != h {
		return 0, fmt.Errorf("%w: %s is owned by %s which does not collide through it", physics.ErrStaleHandle, h, e)
	}
	return e, nil
}

func (s *ResolverSystem) started(storage *ecs.Storage, ev physics.Event, a, b ecs.Entity) {
	pairs := [2][2]ecs.Entity{{a, b}, {b, a}}
	switch s.mode {
	case ModeGround:
		for _, pair := range pairs {
			player := ecs.ReadComponent[Player](storage, pair[0])
			if player == nil {
				continue
			}
			player.OnGround = true
			if storage.HasComponent(pair[1], gravityType) {
				player.Ground = pair[1]
			}
		}
	case ModeBounce:
		n := ev.Normal
		for _, pair := range pairs {
			if m := ecs.ReadComponent[Motion](storage, pair[0]); m != nil {
				m.Velocity = m.Velocity.Sub(n.Mult(2 * m.Velocity.Dot(n)))
			}
			if bounce := ecs.ReadComponent[Bounce](storage, pair[0]); bounce != nil {
				bounce.Colliding = true
			}
		}
	}
}

// stopped clears the ground flag only once the player touches nothing else,
// since a contact that outlives this one never reports a new start.
func (s *ResolverSystem) stopped(storage *ecs.Storage, parties [2]ecs.Entity, handles [2]physics.Handle) {
	for i, e := range parties {
		switch s.mode {
		case ModeGround:
			if player := ecs.ReadComponent[Player](storage, e); player != nil && s.physics.Contacts(handles[i]) == 0 {
				player.OnGround = false
			}
		case ModeBounce:
			if bounce := ecs.ReadComponent[Bounce](storage, e); bounce != nil {
				bounce.Colliding = false
			}
		}
	}
}
