package ecs_test

import (
	"testing"

	"github.com/plus3/planetrun/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movingView struct {
	*Position
	*Velocity
}

type optionalHealthView struct {
	*Position
	Health *Health `ecs:"optional"`
}

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[movingView](storage)

	moving := storage.Spawn(Position{X: 1}, Velocity{DX: 2})
	still := storage.Spawn(Position{X: 3})

	item := view.Get(moving)
	require.NotNil(t, item)
	assert.Equal(t, float32(1), item.Position.X)
	assert.Equal(t, float32(2), item.Velocity.DX)

	item.Position.X = 10
	assert.Equal(t, float32(10), ecs.ReadComponent[Position](storage, moving).X, "view fields alias storage")

	assert.Nil(t, view.Get(still), "missing required component")

	storage.Despawn(moving)
	assert.Nil(t, view.Get(moving), "dead entity")
}

func TestViewOptionalFields(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[optionalHealthView](storage)

	healthy := storage.Spawn(Position{X: 1}, Health{Current: 5, Max: 5})
	plain := storage.Spawn(Position{X: 2})
	storage.Spawn(Health{Current: 1})

	item := view.Get(healthy)
	require.NotNil(t, item)
	require.NotNil(t, item.Health)
	assert.Equal(t, 5, item.Health.Current)

	item = view.Get(plain)
	require.NotNil(t, item)
	assert.Nil(t, item.Health)

	count := 0
	for range view.Iter() {
		count++
	}
	assert.Equal(t, 2, count, "entities without Position are excluded")
}

func TestViewOptionalFieldIsClearedBetweenRows(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[optionalHealthView](storage)

	storage.Spawn(Position{X: 1}, Health{Current: 5})
	storage.Spawn(Position{X: 2})

	withHealth := map[float32]bool{}
	for _, item := range view.Iter() {
		withHealth[item.Position.X] = item.Health != nil
	}
	assert.Equal(t, map[float32]bool{1: true, 2: false}, withHealth)
}

func TestViewIterFollowsArchetypeCreationOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)

	a := storage.Spawn(Position{X: 1})
	b := storage.Spawn(Position{X: 2}, Velocity{})
	c := storage.Spawn(Position{X: 3})

	var order []ecs.Entity
	for e := range view.Iter() {
		order = append(order, e)
	}
	assert.Equal(t, []ecs.Entity{a, c, b}, order)
}

func TestViewIterStopsEarly(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[struct{ *Position }](storage)
	for i := range 10 {
		storage.Spawn(Position{X: float32(i)})
	}

	seen := 0
	for range view.Values() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[optionalHealthView](storage)

	e := view.Spawn(optionalHealthView{Position: &Position{X: 4, Y: 5}})
	assert.True(t, storage.Alive(e))
	assert.Equal(t, Position{X: 4, Y: 5}, *ecs.ReadComponent[Position](storage, e))
	assert.Nil(t, ecs.ReadComponent[Health](storage, e))

	e = view.Spawn(optionalHealthView{Position: &Position{}, Health: &Health{Current: 1, Max: 2}})
	assert.Equal(t, Health{Current: 1, Max: 2}, *ecs.ReadComponent[Health](storage, e))

	assert.Panics(t, func() { view.Spawn(optionalHealthView{}) })
}

func TestNewViewRejectsBadTypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[Position](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ P Position }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"sometimes"`
		}](storage)
	})
}
