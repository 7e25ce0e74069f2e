package physics_test

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// owners hands out distinct non-zero entities without needing a Storage.
func owners(t *testing.T, n int) []ecs.Entity {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[int](registry)
	storage := ecs.NewStorage(registry)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = storage.Spawn(i)
	}
	return out
}

func at(x, y float64) physics.Pose {
	return physics.Pose{Position: cp.Vector{X: x, Y: y}}
}

func TestInsertAndResolve(t *testing.T) {
	world := physics.NewWorld()
	e := owners(t, 1)[0]

	h, err := world.Insert(e, physics.Pose{Position: cp.Vector{X: 1, Y: 2}, Angle: 0.5}, physics.Circle(3), physics.GroupTerrain)
	require.NoError(t, err)
	assert.False(t, h.IsZero())
	assert.Equal(t, 1, world.Len())

	owner, err := world.Owner(h)
	require.NoError(t, err)
	assert.Equal(t, e, owner)

	pose, err := world.Pose(h)
	require.NoError(t, err)
	assert.InDelta(t, 1, pose.Position.X, 1e-9)
	assert.InDelta(t, 2, pose.Position.Y, 1e-9)
	assert.InDelta(t, 0.5, pose.Angle, 1e-9)

	byOwner, ok := world.HandleOf(e)
	require.True(t, ok)
	assert.Equal(t, h, byOwner)
}

func TestInsertRejectsInvalidArguments(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 2)

	_, err := world.Insert(es[0], at(0, 0), physics.Circle(0), physics.GroupTerrain)
	assert.ErrorIs(t, err, physics.ErrInvalidShape)
	_, err = world.Insert(es[0], at(0, 0), physics.Box(1, -1), physics.GroupTerrain)
	assert.ErrorIs(t, err, physics.ErrInvalidShape)
	_, err = world.Insert(0, at(0, 0), physics.Circle(1), physics.GroupTerrain)
	assert.Error(t, err)
	_, err = world.Insert(es[0], at(0, 0), physics.Circle(1), 0)
	assert.Error(t, err)

	_, err = world.Insert(es[0], at(0, 0), physics.Circle(1), physics.GroupTerrain)
	require.NoError(t, err)
	_, err = world.Insert(es[0], at(5, 5), physics.Circle(1), physics.GroupTerrain)
	assert.Error(t, err, "one object per owner")
	assert.Equal(t, 1, world.Len())
}

func TestRemovedHandleIsStale(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 2)

	old, err := world.Insert(es[0], at(0, 0), physics.Circle(1), physics.GroupTerrain)
	require.NoError(t, err)
	require.NoError(t, world.Remove(old))

	_, err = world.Pose(old)
	assert.ErrorIs(t, err, physics.ErrStaleHandle)
	assert.ErrorIs(t, world.Remove(old), physics.ErrStaleHandle)
	_, ok := world.HandleOf(es[0])
	assert.False(t, ok)

	fresh, err := world.Insert(es[1], at(0, 0), physics.Circle(1), physics.GroupTerrain)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh, "reused slot gets a new generation")
	_, err = world.Owner(old)
	assert.ErrorIs(t, err, physics.ErrStaleHandle)

	var zero physics.Handle
	_, err = world.Get(zero)
	assert.ErrorIs(t, err, physics.ErrStaleHandle)
}

func TestTranslateKeepsOrientation(t *testing.T) {
	world := physics.NewWorld()
	h, err := world.Insert(owners(t, 1)[0], physics.Pose{Angle: 1.25}, physics.Box(1, 2), physics.GroupPlayer)
	require.NoError(t, err)

	require.NoError(t, world.Translate(h, cp.Vector{X: 3, Y: -4}))
	pose, err := world.Pose(h)
	require.NoError(t, err)
	assert.InDelta(t, 3, pose.Position.X, 1e-9)
	assert.InDelta(t, -4, pose.Position.Y, 1e-9)
	assert.InDelta(t, 1.25, pose.Angle, 1e-9)
}

func TestContactStartedAndStopped(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 2)

	ground, err := world.Insert(es[0], at(0, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	player, err := world.Insert(es[1], at(0, -30), physics.Box(2, 4), physics.GroupPlayer)
	require.NoError(t, err)

	world.Update()
	assert.Empty(t, world.Events(), "apart")

	require.NoError(t, world.SetPose(player, at(0, -12)))
	world.Update()
	require.Len(t, world.Events(), 1)
	ev := world.Events()[0]
	assert.Equal(t, physics.Started, ev.Kind)
	assert.ElementsMatch(t, []physics.Handle{ground, player}, []physics.Handle{ev.A, ev.B})
	assert.NotEmpty(t, ev.Points)
	assert.InDelta(t, 1, ev.Normal.Length(), 1e-6)
	assert.InDelta(t, 0, ev.Normal.X, 1e-6, "contact normal points along the vertical axis")

	world.Update()
	assert.Empty(t, world.Events(), "persisting contact reports nothing new")

	require.NoError(t, world.SetPose(player, at(0, -30)))
	world.Update()
	require.Len(t, world.Events(), 1)
	ev = world.Events()[0]
	assert.Equal(t, physics.Stopped, ev.Kind)
	assert.Empty(t, ev.Points)
}

func TestGroupsWithoutInteractionNeverTouch(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 3)

	_, err := world.Insert(es[0], at(0, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	_, err = world.Insert(es[1], at(5, 0), physics.Box(2, 2), physics.GroupObstacle)
	require.NoError(t, err)

	assert.False(t, world.Interacts(physics.GroupTerrain, physics.GroupObstacle))
	assert.True(t, world.Interacts(physics.GroupPlayer, physics.GroupObstacle))
	assert.True(t, world.Interacts(physics.GroupObstacle, physics.GroupPlayer))

	world.Update()
	assert.Empty(t, world.Events())

	world.SetInteraction(physics.GroupTerrain, physics.GroupObstacle, true)
	world.Update()
	require.Len(t, world.Events(), 1)
	assert.Equal(t, physics.Started, world.Events()[0].Kind)

	world.SetInteraction(physics.GroupTerrain, physics.GroupObstacle, false)
	world.Update()
	require.Len(t, world.Events(), 1)
	assert.Equal(t, physics.Stopped, world.Events()[0].Kind)
}

func TestRemoveDuringContactEmitsNothing(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 2)

	_, err := world.Insert(es[0], at(0, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	player, err := world.Insert(es[1], at(0, -11), physics.Box(2, 2), physics.GroupPlayer)
	require.NoError(t, err)

	world.Update()
	require.Len(t, world.Events(), 1)

	require.NoError(t, world.Remove(player))
	assert.Empty(t, world.Events(), "pending events about the removed object are dropped")

	world.Update()
	assert.Empty(t, world.Events())
}

func TestStoppedEventsComeFirst(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 3)

	_, err := world.Insert(es[0], at(0, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	_, err = world.Insert(es[1], at(100, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	player, err := world.Insert(es[2], at(0, -11), physics.Box(2, 2), physics.GroupPlayer)
	require.NoError(t, err)

	world.Update()
	require.Len(t, world.Events(), 1)

	require.NoError(t, world.SetPose(player, at(100, -11)))
	world.Update()
	require.Len(t, world.Events(), 2)
	assert.Equal(t, physics.Stopped, world.Events()[0].Kind)
	assert.Equal(t, physics.Started, world.Events()[1].Kind)
}

func TestObjectsIteratesLiveObjects(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 3)

	var handles []physics.Handle
	for i, e := range es {
		h, err := world.Insert(e, at(float64(i)*100, 0), physics.Circle(1), physics.GroupBody)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	require.NoError(t, world.Remove(handles[1]))

	seen := map[physics.Handle]ecs.Entity{}
	for h, obj := range world.Objects() {
		seen[h] = obj.Owner
	}
	assert.Equal(t, map[physics.Handle]ecs.Entity{handles[0]: es[0], handles[2]: es[2]}, seen)
}

func TestContactCountsFollowOverlaps(t *testing.T) {
	world := physics.NewWorld()
	es := owners(t, 3)

	ground, err := world.Insert(es[0], at(0, 0), physics.Circle(10), physics.GroupTerrain)
	require.NoError(t, err)
	obstacle, err := world.Insert(es[1], at(0, -12), physics.Box(2, 2), physics.GroupObstacle)
	require.NoError(t, err)
	player, err := world.Insert(es[2], at(0, -12), physics.Box(2, 4), physics.GroupPlayer)
	require.NoError(t, err)

	world.Update()
	assert.Equal(t, 2, world.Contacts(player))
	assert.Equal(t, 1, world.Contacts(ground))
	assert.True(t, world.Touching(obstacle, player))
	assert.True(t, world.Touching(player, ground))

	require.NoError(t, world.SetPose(obstacle, at(50, 0)))
	world.Update()
	assert.Equal(t, 1, world.Contacts(player), "the ground contact outlives the obstacle")
	assert.False(t, world.Touching(obstacle, player))

	require.NoError(t, world.Remove(ground))
	assert.Equal(t, 0, world.Contacts(player), "removal ends contacts without events")
	assert.Equal(t, 0, world.Contacts(ground))
}
