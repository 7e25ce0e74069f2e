package sim

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
)

// Config configures a World.
type Config struct {
	Mode Mode
	// Logger receives diagnostics. Defaults to log.Default().
	Logger *log.Logger
	// Debug appends a pass that logs every moving collider each tick.
	Debug bool
}

// PlayerSpec describes the player to spawn.
type PlayerSpec struct {
	HalfWidth       float64
	HalfHeight      float64
	RunAcceleration float64
	MaxRunSpeed     float64
	Velocity        cp.Vector
	// Ground is the gravity body the player starts out walking on, if any.
	Ground ecs.Entity
}

// Input is what an input collaborator writes into the player before a tick.
type Input struct {
	Jump bool
	Run  float64
}

// Renderable is one drawable entity with its current pose.
type Renderable struct {
	Entity ecs.Entity
	Mesh   Mesh
	Pose   physics.Pose
}

// World owns the component store, the physics world and the tick pipeline.
type World struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	physics   *physics.World
	logger    *log.Logger
	mode      Mode

	player      ecs.Entity
	drawables   *ecs.Query[struct{ *Collider; *Mesh }]
	colliders   *ecs.Query[struct{ *Collider }]
	camera      *ecs.Singleton[Camera]
	diagnostics *ecs.Singleton[Diagnostics]
}

// NewWorld creates an empty world with the tick pipeline registered in order:
// locomotion, gravity, integration, contact refresh, contact resolution.
func NewWorld(cfg Config) *World {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	storage := ecs.NewStorage(newRegistry())
	pw := physics.NewWorld()

	w := &World{
		storage:     storage,
		scheduler:   ecs.NewScheduler(storage),
		physics:     pw,
		logger:      logger,
		mode:        cfg.Mode,
		drawables:   ecs.NewQuery[struct{ *Collider; *Mesh }](storage),
		colliders:   ecs.NewQuery[struct{ *Collider }](storage),
		camera:      ecs.NewSingleton[Camera](storage),
		diagnostics: ecs.NewSingleton[Diagnostics](storage),
	}
	storage.OnDespawn(w.onDespawn)

	w.scheduler.Register(&LocomotionSystem{physics: pw})
	w.scheduler.Register(&GravitySystem{physics: pw, logger: logger})
	w.scheduler.Register(&IntegratorSystem{physics: pw})
	w.scheduler.Register(&RefreshSystem{physics: pw})
	w.scheduler.Register(&ResolverSystem{physics: pw, mode: cfg.Mode})
	if cfg.Debug {
		w.scheduler.Register(&DebugPrinterSystem{physics: pw, logger: logger})
	}
	return w
}

// Advance runs one tick. An error means the collider bijection is broken;
// the tick stops where it failed and its deferred commands are dropped.
func (w *World) Advance() error {
	return w.scheduler.Once()
}

// Mode returns the contact mode the world was created with.
func (w *World) Mode() Mode {
	return w.mode
}

// Storage exposes the component store.
func (w *World) Storage() *ecs.Storage {
	return w.storage
}

// Physics exposes the physics world.
func (w *World) Physics() *physics.World {
	return w.physics
}

func validPose(p physics.Pose) bool {
	for _, v := range []float64{p.Position.X, p.Position.Y, p.Angle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// spawn creates the entity and its physics object together. On failure
// nothing is left behind.
func (w *World) spawn(pose physics.Pose, shape physics.Shape, group physics.Group, components ...any) (ecs.Entity, error) {
	if !validPose(pose) {
		return 0, fmt.Errorf("%w: pose %v", ErrInvalidSpawn, pose)
	}
	if err := shape.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSpawn, err)
	}

	e := w.storage.Spawn(append(components, Collider{})...)
	h, err := w.physics.Insert(e, pose, shape, group)
	if err != nil {
		w.storage.Despawn(e)
		return 0, fmt.Errorf("%w: %w", ErrInvalidSpawn, err)
	}
	ecs.ReadComponent[Collider](w.storage, e).Handle = h
	return e, nil
}

// SpawnGravitySource spawns a planet of the given radius pulling with force.
func (w *World) SpawnGravitySource(pose physics.Pose, radius, force float64) (ecs.Entity, error) {
	if !finite(force) {
		return 0, fmt.Errorf("%w: gravity force %v", ErrInvalidSpawn, force)
	}
	return w.spawn(pose, physics.Circle(radius), physics.GroupTerrain,
		Gravity{Force: force},
		Mesh{Kind: MeshPlanet, Radius: radius},
	)
}

// SpawnPlayer spawns the player. Only one player may be alive at a time.
func (w *World) SpawnPlayer(pose physics.Pose, spec PlayerSpec) (ecs.Entity, error) {
	if w.storage.Alive(w.player) {
		return 0, ErrPlayerExists
	}
	if !finite(spec.RunAcceleration) || !finite(spec.MaxRunSpeed) || spec.MaxRunSpeed < 0 {
		return 0, fmt.Errorf("%w: run acceleration %v, max run speed %v", ErrInvalidSpawn, spec.RunAcceleration, spec.MaxRunSpeed)
	}
	if !finite(spec.Velocity.X) || !finite(spec.Velocity.Y) {
		return 0, fmt.Errorf("%w: velocity %v", ErrInvalidSpawn, spec.Velocity)
	}
	if !spec.Ground.IsZero() && !w.storage.HasComponent(spec.Ground, gravityType) {
		return 0, fmt.Errorf("%w: ground %s is not a gravity source", ErrInvalidSpawn, spec.Ground)
	}

	e, err := w.spawn(pose, physics.Box(spec.HalfWidth, spec.HalfHeight), physics.GroupPlayer,
		Player{
			RunAcceleration: spec.RunAcceleration,
			MaxRunSpeed:     spec.MaxRunSpeed,
			Ground:          spec.Ground,
		},
		Motion{Velocity: spec.Velocity},
		Mass{},
		Bounce{},
		Mesh{Kind: MeshPlayer, HalfWidth: spec.HalfWidth, HalfHeight: spec.HalfHeight},
	)
	if err != nil {
		return 0, err
	}
	w.player = e
	w.camera.Get().Focus = pose.Position
	return e, nil
}

// SpawnObstacle spawns a square static obstacle.
func (w *World) SpawnObstacle(pose physics.Pose, halfWidth float64) (ecs.Entity, error) {
	return w.spawn(pose, physics.Box(halfWidth, halfWidth), physics.GroupObstacle,
		Obstacle{},
		Mesh{Kind: MeshObstacle, HalfWidth: halfWidth, HalfHeight: halfWidth},
	)
}

// SpawnBody spawns a free round body that falls toward gravity sources.
func (w *World) SpawnBody(pose physics.Pose, radius float64, velocity cp.Vector) (ecs.Entity, error) {
	if !finite(velocity.X) || !finite(velocity.Y) {
		return 0, fmt.Errorf("%w: velocity %v", ErrInvalidSpawn, velocity)
	}
	return w.spawn(pose, physics.Circle(radius), physics.GroupBody,
		Motion{Velocity: velocity},
		Mass{},
		Bounce{},
		Mesh{Kind: MeshBody, Radius: radius},
	)
}

// Despawn removes the entity together with its physics object.
// Systems should queue frame.Commands.Despawn instead.
func (w *World) Despawn(e ecs.Entity) bool {
	return w.storage.Despawn(e)
}

func (w *World) onDespawn(e ecs.Entity) {
	if collider := ecs.ReadComponent[Collider](w.storage, e); collider != nil && !collider.Handle.IsZero() {
		if err := w.physics.Remove(collider.Handle); err != nil {
			w.logger.Printf("despawn %s: %v", e, err)
		}
	}
	if e == w.player {
		w.player = 0
		return
	}
	player := ecs.ReadComponent[Player](w.storage, w.player)
	if player == nil {
		return
	}
	if player.Ground == e {
		player.Ground = 0
		player.OnGround = false
	}
	// Removal ends contacts without a Stopped event.
	if h, ok := w.physics.HandleOf(w.player); ok && w.physics.Contacts(h) == 0 {
		player.OnGround = false
	}
}

// Player returns the live player entity.
func (w *World) Player() (ecs.Entity, error) {
	if !w.storage.Alive(w.player) {
		return 0, ErrNoPlayer
	}
	return w.player, nil
}

// SetInput writes jump and run input into the player for the next tick.
func (w *World) SetInput(in Input) error {
	player := ecs.ReadComponent[Player](w.storage, w.player)
	if player == nil {
		return ErrNoPlayer
	}
	player.Jumping = in.Jump
	player.Run = max(-1, min(1, in.Run))
	return nil
}

// PlayerState returns a copy of the player component.
func (w *World) PlayerState() (Player, error) {
	player := ecs.ReadComponent[Player](w.storage, w.player)
	if player == nil {
		return Player{}, ErrNoPlayer
	}
	return *player, nil
}

// Motion returns a copy of the entity's Motion, if it has one.
func (w *World) Motion(e ecs.Entity) (Motion, bool) {
	m := ecs.ReadComponent[Motion](w.storage, e)
	if m == nil {
		return Motion{}, false
	}
	return *m, true
}

// Pose returns the current pose of an entity with a Collider.
func (w *World) Pose(e ecs.Entity) (physics.Pose, error) {
	collider := ecs.ReadComponent[Collider](w.storage, e)
	if collider == nil {
		return physics.Pose{}, fmt.Errorf("entity %s has no collider", e)
	}
	return w.physics.Pose(collider.Handle)
}

// Renderables returns every entity with a Collider and a Mesh along with its pose.
func (w *World) Renderables() ([]Renderable, error) {
	var out []Renderable
	for e, item := range w.drawables.Iter() {
		pose, err := w.physics.Pose(item.Collider.Handle)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", e, err)
		}
		out = append(out, Renderable{Entity: e, Mesh: *item.Mesh, Pose: pose})
	}
	return out, nil
}

// Camera returns the current camera focus.
func (w *World) Camera() Camera {
	return *w.camera.Get()
}

// Diagnostics returns the recovered-condition counters.
func (w *World) Diagnostics() Diagnostics {
	return *w.diagnostics.Get()
}

// Stats returns per-pass timing statistics.
func (w *World) Stats() *ecs.SchedulerStats {
	return w.scheduler.Stats()
}

// CheckBijection verifies that colliders and physics objects pair up one to one.
func (w *World) CheckBijection() error {
	var errs []error
	count := 0
	for e, item := range w.colliders.Iter() {
		count++
		owner, err := w.physics.Owner(item.Collider.Handle)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e, err))
			continue
		}
		if owner != e {
			errs = append(errs, fmt.Errorf("entity %s: %s is owned by %s", e, item.Collider.Handle, owner))
		}
	}
	for h, obj := range w.physics.Objects() {
		collider := ecs.ReadComponent[Collider](w.storage, obj.Owner)
		if collider == nil || collider.Handle != h {
			errs = append(errs, fmt.Errorf("%s: owner %s does not point back", h, obj.Owner))
		}
	}
	if count != w.physics.Len() {
		errs = append(errs, fmt.Errorf("%d colliders but %d physics objects", count, w.physics.Len()))
	}
	return errors.Join(errs...)
}
