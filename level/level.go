// Package level describes a planet run level in YAML and builds it into a sim.World.
package level

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
	"github.com/plus3/planetrun/sim"
	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("invalid level")

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// Planet is a round gravity source.
type Planet struct {
	Position Vec     `yaml:"position"`
	Radius   float64 `yaml:"radius"`
	Gravity  float64 `yaml:"gravity"`
}

// Player is placed straight "above" the main planet, Altitude past its surface.
type Player struct {
	HalfWidth       float64 `yaml:"half_width"`
	HalfHeight      float64 `yaml:"half_height"`
	RunAcceleration float64 `yaml:"run_acceleration"`
	MaxRunSpeed     float64 `yaml:"max_run_speed"`
	Altitude        float64 `yaml:"altitude"`
	Velocity        Vec     `yaml:"velocity"`
}

// Obstacles are square blocks resting on the main planet, spaced by angle.
type Obstacles struct {
	Count      int     `yaml:"count"`
	HalfWidth  float64 `yaml:"half_width"`
	StartAngle float64 `yaml:"start_angle"`
	Spacing    float64 `yaml:"spacing"`
}

// Body is a free massive body.
type Body struct {
	Position Vec     `yaml:"position"`
	Radius   float64 `yaml:"radius"`
	Velocity Vec     `yaml:"velocity"`
}

type Level struct {
	Mode      string    `yaml:"mode"`
	Planet    Planet    `yaml:"planet"`
	Moons     []Planet  `yaml:"moons"`
	Player    Player    `yaml:"player"`
	Obstacles Obstacles `yaml:"obstacles"`
	Bodies    []Body    `yaml:"bodies"`
}

// Default returns the stock level: one planet, the player above it and ten obstacles.
func Default() Level {
	return Level{
		Mode: "ground",
		Planet: Planet{
			Radius:  2000,
			Gravity: 200,
		},
		Player: Player{
			HalfWidth:       10,
			HalfHeight:      20,
			RunAcceleration: 0.01,
			Altitude:        60,
			Velocity:        Vec{X: 1.5},
		},
		Obstacles: Obstacles{
			Count:      10,
			HalfWidth:  10,
			StartAngle: math.Pi,
			Spacing:    0.2,
		},
	}
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (Level, error) {
	l := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return Level{}, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	if err := l.Validate(); err != nil {
		return Level{}, err
	}
	return l, nil
}

// Load reads and parses a level file.
func Load(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("level: load %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return Level{}, fmt.Errorf("level: %s: %w", path, err)
	}
	return l, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidLevel, fmt.Sprintf(format, args...))
}

func (p Planet) validate(name string) error {
	if !finite(p.Position.X, p.Position.Y, p.Radius, p.Gravity) {
		return invalid("%s has a non-finite value", name)
	}
	if p.Radius <= 0 {
		return invalid("%s radius %v must be positive", name, p.Radius)
	}
	return nil
}

// Validate checks every value Build relies on.
func (l Level) Validate() error {
	if _, err := sim.ParseMode(l.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	if err := l.Planet.validate("planet"); err != nil {
		return err
	}
	for i, m := range l.Moons {
		if err := m.validate(fmt.Sprintf("moon %d", i)); err != nil {
			return err
		}
	}

	p := l.Player
	if !finite(p.HalfWidth, p.HalfHeight, p.RunAcceleration, p.MaxRunSpeed, p.Altitude, p.Velocity.X, p.Velocity.Y) {
		return invalid("player has a non-finite value")
	}
	if p.HalfWidth <= 0 || p.HalfHeight <= 0 {
		return invalid("player half extents %vx%v must be positive", p.HalfWidth, p.HalfHeight)
	}
	if p.MaxRunSpeed < 0 {
		return invalid("player max run speed %v is negative", p.MaxRunSpeed)
	}

	o := l.Obstacles
	if o.Count < 0 {
		return invalid("obstacle count %d is negative", o.Count)
	}
	if !finite(o.HalfWidth, o.StartAngle, o.Spacing) {
		return invalid("obstacles have a non-finite value")
	}
	if o.Count > 0 && o.HalfWidth <= 0 {
		return invalid("obstacle half width %v must be positive", o.HalfWidth)
	}

	for i, b := range l.Bodies {
		if !finite(b.Position.X, b.Position.Y, b.Radius, b.Velocity.X, b.Velocity.Y) {
			return invalid("body %d has a non-finite value", i)
		}
		if b.Radius <= 0 {
			return invalid("body %d radius %v must be positive", i, b.Radius)
		}
	}
	return nil
}

// Scene lists the entities Build created.
type Scene struct {
	Planet    ecs.Entity
	Player    ecs.Entity
	Moons     []ecs.Entity
	Obstacles []ecs.Entity
	Bodies    []ecs.Entity
}

func (s Scene) entities() []ecs.Entity {
	out := []ecs.Entity{s.Planet, s.Player}
	out = append(out, s.Moons...)
	out = append(out, s.Obstacles...)
	out = append(out, s.Bodies...)
	return slices.DeleteFunc(out, ecs.Entity.IsZero)
}

// PlayerPose is where Build puts the player.
func (l Level) PlayerPose() physics.Pose {
	offset := l.Planet.Radius + l.Player.Altitude
	return physics.Pose{Position: l.Planet.Position.vector().Add(cp.Vector{Y: -offset})}
}

// ObstaclePose is where Build puts obstacle i.
func (l Level) ObstaclePose(i int) physics.Pose {
	angle := l.Obstacles.StartAngle + float64(i)*l.Obstacles.Spacing
	offset := l.Planet.Radius + l.Obstacles.HalfWidth
	return physics.Pose{
		Position: l.Planet.Position.vector().Add(cp.ForAngle(angle).Mult(offset)),
		Angle:    angle,
	}
}

// Build spawns the level into w. The player starts out walking on the main planet.
// If a spawn fails, everything Build already spawned is despawned again.
func (l Level) Build(w *sim.World) (_ Scene, err error) {
	if err := l.Validate(); err != nil {
		return Scene{}, err
	}

	var scene Scene
	defer func() {
		if err != nil {
			for _, e := range scene.entities() {
				w.Despawn(e)
			}
		}
	}()

	scene.Planet, err = w.SpawnGravitySource(physics.Pose{Position: l.Planet.Position.vector()}, l.Planet.Radius, l.Planet.Gravity)
	if err != nil {
		return Scene{}, fmt.Errorf("planet: %w", err)
	}

	for i, m := range l.Moons {
		e, err := w.SpawnGravitySource(physics.Pose{Position: m.Position.vector()}, m.Radius, m.Gravity)
		if err != nil {
			return Scene{}, fmt.Errorf("moon %d: %w", i, err)
		}
		scene.Moons = append(scene.Moons, e)
	}

	p := l.Player
	scene.Player, err = w.SpawnPlayer(l.PlayerPose(), sim.PlayerSpec{
		HalfWidth:       p.HalfWidth,
		HalfHeight:      p.HalfHeight,
		RunAcceleration: p.RunAcceleration,
		MaxRunSpeed:     p.MaxRunSpeed,
		Velocity:        p.Velocity.vector(),
		Ground:          scene.Planet,
	})
	if err != nil {
		return Scene{}, fmt.Errorf("player: %w", err)
	}

	for i := range l.Obstacles.Count {
		e, err := w.SpawnObstacle(l.ObstaclePose(i), l.Obstacles.HalfWidth)
		if err != nil {
			return Scene{}, fmt.Errorf("obstacle %d: %w", i, err)
		}
		scene.Obstacles = append(scene.Obstacles, e)
	}

	for i, b := range l.Bodies {
		e, err := w.SpawnBody(physics.Pose{Position: b.Position.vector()}, b.Radius, b.Velocity.vector())
		if err != nil {
			return Scene{}, fmt.Errorf("body %d: %w", i, err)
		}
		scene.Bodies = append(scene.Bodies, e)
	}
	return scene, nil
}

// NewWorld creates a world in the level's mode and builds the level into it.
func (l Level) NewWorld(cfg sim.Config) (*sim.World, Scene, error) {
	mode, err := sim.ParseMode(l.Mode)
	if err != nil {
		return nil, Scene{}, fmt.Errorf("%w: %w", ErrInvalidLevel, err)
	}
	cfg.Mode = mode
	w := sim.NewWorld(cfg)
	scene, err := l.Build(w)
	if err != nil {
		return nil, Scene{}, err
	}
	return w, scene, nil
}
