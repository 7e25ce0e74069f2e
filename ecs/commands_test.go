package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/planetrun/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSpawnSystem struct{}

func (s *testSpawnSystem) Execute(frame *ecs.UpdateFrame) error {
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
	return nil
}

type testDespawnSystem struct {
	target ecs.Entity
}

func (s *testDespawnSystem) Execute(frame *ecs.UpdateFrame) error {
	frame.Commands.Despawn(s.target)
	return nil
}

type testCountSystem struct {
	Entities ecs.Query[struct{ *Position }]
	counts   []int
}

func (s *testCountSystem) Execute(frame *ecs.UpdateFrame) error {
	s.counts = append(s.counts, s.Entities.Count())
	return nil
}

func TestCommandsSpawnAppliesAfterTick(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	counter := &testCountSystem{}
	scheduler.Register(&testSpawnSystem{})
	scheduler.Register(counter)

	require.NoError(t, scheduler.Once())
	assert.Equal(t, 2, storage.Len())
	assert.Equal(t, []int{0}, counter.counts, "spawns are not visible during the tick")

	require.NoError(t, scheduler.Once())
	assert.Equal(t, []int{0, 2}, counter.counts)
}

func TestCommandsDespawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	e := storage.Spawn(Position{})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&testDespawnSystem{target: e})
	scheduler.Register(&testDespawnSystem{target: e})

	require.NoError(t, scheduler.Once())
	assert.False(t, storage.Alive(e))
	assert.Equal(t, 0, storage.Len())
}

func TestCommandsDropOperationsOnDespawnedEntities(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	e := storage.Spawn(Position{})

	commands := ecs.NewCommands()
	commands.AddComponent(e, Velocity{DX: 1})
	commands.RemoveComponent(e, reflect.TypeFor[Position]())
	commands.Despawn(e)
	assert.Equal(t, 3, commands.Len())

	commands.Flush(storage)

	assert.False(t, storage.Alive(e))
	assert.Equal(t, 0, storage.Len())
	assert.Equal(t, 0, commands.Len())
}

func TestCommandsAddRemoveAndDefer(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	e := storage.Spawn(Position{}, Health{Current: 1})

	var order []string
	commands := ecs.NewCommands()
	commands.Defer(func() {
		order = append(order, "defer")
		assert.True(t, storage.HasComponent(e, reflect.TypeFor[Velocity]()))
	})
	commands.AddComponent(e, Velocity{DX: 3})
	commands.RemoveComponent(e, reflect.TypeFor[Health]())
	commands.SpawnThen(func(spawned ecs.Entity) {
		order = append(order, "spawned")
		assert.True(t, storage.Alive(spawned))
	}, Name{Value: "late"})

	commands.Flush(storage)

	assert.Equal(t, []string{"spawned", "defer"}, order)
	assert.Equal(t, float32(3), ecs.ReadComponent[Velocity](storage, e).DX)
	assert.Nil(t, ecs.ReadComponent[Health](storage, e))
	assert.Equal(t, 2, storage.Len())
}
