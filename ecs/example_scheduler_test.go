package ecs_test

import (
	"errors"
	"fmt"

	"github.com/plus3/planetrun/ecs"
)

type Transform struct {
	X, Y float32
}

type Speed struct {
	DX, DY float32
}

type Hitpoints struct {
	Current, Max int
}

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Transform
		*Speed
	}]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) error {
	for _, entity := range s.Entities.Iter() {
		entity.Transform.X += entity.Speed.DX
		entity.Transform.Y += entity.Speed.DY
	}
	return nil
}

type HealingSystem struct {
	Entities  ecs.Query[struct{ *Hitpoints }]
	RegenRate int
}

func (s *HealingSystem) Execute(frame *ecs.UpdateFrame) error {
	for entity := range s.Entities.Values() {
		entity.Hitpoints.Current = min(entity.Hitpoints.Current+s.RegenRate, entity.Hitpoints.Max)
	}
	return nil
}

// ExampleScheduler demonstrates building a simulation loop with multiple systems.
// The Scheduler initializes Query and Singleton fields on registration, runs the
// systems in registration order and flushes the command buffer after the last one.
func ExampleScheduler() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	ecs.RegisterComponent[Hitpoints](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(
		Transform{X: 0, Y: 0},
		Speed{DX: 10, DY: 5},
		Hitpoints{Current: 80, Max: 100},
	)
	storage.Spawn(
		Transform{X: 100, Y: 100},
		Speed{DX: -5, DY: -5},
		Hitpoints{Current: 95, Max: 100},
	)

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{})
	scheduler.Register(&HealingSystem{RegenRate: 10})

	if err := scheduler.Once(); err != nil {
		fmt.Println(err)
	}

	view := ecs.NewView[struct {
		*Transform
		*Hitpoints
	}](storage)

	fmt.Println("After one tick:")
	for _, item := range view.Iter() {
		fmt.Printf("Position: (%.0f, %.0f), Health: %d/%d\n",
			item.Transform.X, item.Transform.Y,
			item.Hitpoints.Current, item.Hitpoints.Max)
	}

	// Output:
	// After one tick:
	// Position: (10, 5), Health: 90/100
	// Position: (95, 95), Health: 100/100
}

var errOutOfBounds = errors.New("out of bounds")

type BoundsSystem struct {
	Entities ecs.Query[struct{ *Transform }]
}

func (s *BoundsSystem) Execute(frame *ecs.UpdateFrame) error {
	for e, item := range s.Entities.Iter() {
		if item.Transform.X > 50 {
			return fmt.Errorf("entity %s: %w", e, errOutOfBounds)
		}
	}
	return nil
}

// ExampleScheduler_errors shows that a failing system aborts the tick.
// Systems after it do not run and the returned error names the system.
func ExampleScheduler_errors() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Speed](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Transform{X: 45}, Speed{DX: 10})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{})
	scheduler.Register(&BoundsSystem{})
	scheduler.Register(&MovementSystem{})

	err := scheduler.Once()
	fmt.Println(err)
	fmt.Println(errors.Is(err, errOutOfBounds))

	stats := scheduler.Stats()
	for _, sys := range stats.Systems {
		fmt.Printf("%s ran %d time(s)\n", sys.Name, sys.ExecutionCount)
	}

	// Output:
	// system BoundsSystem: entity 0#1: out of bounds
	// true
	// MovementSystem ran 1 time(s)
	// BoundsSystem ran 1 time(s)
	// MovementSystem ran 0 time(s)
}

type TickCounter struct {
	Ticks uint64
}

type ScoreTracker struct {
	Points int
}

type TickSystem struct {
	Counter ecs.Singleton[TickCounter]
}

func (s *TickSystem) Execute(frame *ecs.UpdateFrame) error {
	s.Counter.Get().Ticks = frame.Tick
	return nil
}

type ScoreSystem struct {
	Entities ecs.Query[struct{ *Transform }]
	Score    ecs.Singleton[ScoreTracker]
}

func (s *ScoreSystem) Execute(frame *ecs.UpdateFrame) error {
	s.Score.Get().Points += s.Entities.Count() * 10
	return nil
}

// ExampleScheduler_withSingletons demonstrates using singleton components in systems.
// Singleton fields are initialized by the Scheduler, just like Query fields.
func ExampleScheduler_withSingletons() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Transform](registry)
	storage := ecs.NewStorage(registry)

	ecs.NewSingleton[TickCounter](storage)
	ecs.NewSingleton[ScoreTracker](storage, ScoreTracker{Points: 0})

	storage.Spawn(Transform{X: 0, Y: 0})
	storage.Spawn(Transform{X: 10, Y: 10})
	storage.Spawn(Transform{X: 20, Y: 20})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&TickSystem{})
	scheduler.Register(&ScoreSystem{})

	for range 3 {
		if err := scheduler.Once(); err != nil {
			fmt.Println(err)
		}
	}

	var counter *TickCounter
	storage.ReadSingleton(&counter)
	fmt.Printf("Ticks: %d\n", counter.Ticks)

	var score *ScoreTracker
	storage.ReadSingleton(&score)
	fmt.Printf("Score: %d points\n", score.Points)

	// Output:
	// Ticks: 3
	// Score: 90 points
}
