package level_test

import (
	"bytes"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietConfig() sim.Config {
	return sim.Config{Logger: log.New(&bytes.Buffer{}, "", 0)}
}

func TestDefaultLevel(t *testing.T) {
	l := level.Default()
	require.NoError(t, l.Validate())

	assert.Equal(t, 2000.0, l.Planet.Radius)
	assert.Equal(t, 200.0, l.Planet.Gravity)
	assert.Equal(t, 10, l.Obstacles.Count)

	pose := l.PlayerPose()
	assert.InDelta(t, 0, pose.Position.X, 1e-9)
	assert.InDelta(t, -2060, pose.Position.Y, 1e-9)

	first := l.ObstaclePose(0)
	assert.InDelta(t, -2010, first.Position.X, 1e-9)
	assert.InDelta(t, 0, first.Position.Y, 1e-9)
	assert.InDelta(t, math.Pi, first.Angle, 1e-12)

	last := l.ObstaclePose(9)
	assert.InDelta(t, math.Pi+1.8, last.Angle, 1e-12)
	assert.InDelta(t, 2010, last.Position.Length(), 1e-9)
}

func TestParseOverridesDefaults(t *testing.T) {
	l, err := level.Parse([]byte("planet:\n  gravity: 50\nplayer:\n  velocity: {x: 0, y: 0}\n"))
	require.NoError(t, err)
	assert.Equal(t, 50.0, l.Planet.Gravity)
	assert.Equal(t, 2000.0, l.Planet.Radius, "unset keys keep their defaults")
	assert.Zero(t, l.Player.Velocity.X)
	assert.Equal(t, 10.0, l.Player.HalfWidth)

	empty, err := level.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, level.Default(), empty)
}

func TestParseRejectsBadLevels(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":      "planet:\n  size: 3\n",
		"bad yaml":         "planet: [\n",
		"unknown mode":     "mode: sideways\n",
		"negative radius":  "planet:\n  radius: -1\n",
		"flat player":      "player:\n  half_height: 0\n",
		"negative count":   "obstacles:\n  count: -2\n",
		"zero body radius": "bodies:\n  - radius: 0\n",
		"bad moon":         "moons:\n  - radius: 0\n",
		"max run speed":    "player:\n  max_run_speed: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := level.Parse([]byte(doc))
			assert.ErrorIs(t, err, level.ErrInvalidLevel)
		})
	}
}

func TestLoad(t *testing.T) {
	l, err := level.Load(filepath.Join("testdata", "moons.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bounce", l.Mode)
	require.Len(t, l.Moons, 1)
	assert.Equal(t, 1200.0, l.Moons[0].Position.X)
	require.Len(t, l.Bodies, 1)
	assert.Equal(t, 4, l.Obstacles.Count)
	assert.Equal(t, 10.0, l.Obstacles.HalfWidth)

	_, err = level.Load(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildDefaultLevel(t *testing.T) {
	w, scene, err := level.Default().NewWorld(quietConfig())
	require.NoError(t, err)
	assert.Equal(t, sim.ModeGround, w.Mode())
	assert.Len(t, scene.Obstacles, 10)
	assert.Equal(t, 12, w.Storage().Len())
	assert.Equal(t, 12, w.Physics().Len())
	require.NoError(t, w.CheckBijection())

	state, err := w.PlayerState()
	require.NoError(t, err)
	assert.Equal(t, scene.Planet, state.Ground)

	for range 120 {
		require.NoError(t, w.Advance())
	}
	require.NoError(t, w.CheckBijection())
	assert.NotZero(t, w.Diagnostics().ContactsStarted, "the player reaches the surface")

	for _, e := range scene.Obstacles {
		pose, err := w.Pose(e)
		require.NoError(t, err)
		assert.InDelta(t, 2010, pose.Position.Length(), 1e-9, "obstacles do not move")
	}
}

func TestDefaultLevelPlayerStaysOnSurface(t *testing.T) {
	w, scene, err := level.Default().NewWorld(quietConfig())
	require.NoError(t, err)

	// The run passes over the obstacle row, so the player lands on an obstacle,
	// drops to the planet and walks through the rest of them.
	for tick := range 1000 {
		require.NoError(t, w.Advance())
		pose, err := w.Pose(scene.Player)
		require.NoError(t, err)
		r := pose.Position.Length()
		require.True(t, r > 2010 && r < 2070, "tick %d: player at radius %.2f", tick, r)
	}

	state, err := w.PlayerState()
	require.NoError(t, err)
	assert.True(t, state.OnGround)
	assert.Equal(t, scene.Planet, state.Ground)
	assert.NotZero(t, w.Diagnostics().ContactsStopped, "the player left an obstacle on the way")
	pose, err := w.Pose(scene.Player)
	require.NoError(t, err)
	assert.InDelta(t, 2020, pose.Position.Length(), 3)
}

func TestFailedBuildLeavesNothingBehind(t *testing.T) {
	l := level.Default()
	w, _, err := l.NewWorld(quietConfig())
	require.NoError(t, err)
	require.Equal(t, 12, w.Storage().Len())

	_, err = l.Build(w)
	require.ErrorIs(t, err, sim.ErrPlayerExists)
	assert.Equal(t, 12, w.Storage().Len())
	assert.Equal(t, 12, w.Physics().Len())
	require.NoError(t, w.CheckBijection())
}

func TestBuildMoonsLevel(t *testing.T) {
	l, err := level.Load(filepath.Join("testdata", "moons.yaml"))
	require.NoError(t, err)
	w, scene, err := l.NewWorld(quietConfig())
	require.NoError(t, err)
	assert.Equal(t, sim.ModeBounce, w.Mode())
	assert.Len(t, scene.Moons, 1)
	assert.Len(t, scene.Bodies, 1)
	assert.Len(t, scene.Obstacles, 4)

	for range 60 {
		require.NoError(t, w.Advance())
	}
	require.NoError(t, w.CheckBijection())
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("mode: ground\n"), 0o644))

	w, err := level.NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("mode: bounce\n"), 0o644))

	select {
	case name := <-w.Events:
		abs, err := filepath.Abs(path)
		require.NoError(t, err)
		assert.Equal(t, abs, name)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the level file")
	}

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func BenchmarkAdvanceDefaultLevel(b *testing.B) {
	w, _, err := level.Default().NewWorld(quietConfig())
	if err != nil {
		b.Fatal(err)
	}
	if err := w.SetInput(sim.Input{Run: 1}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Advance(); err != nil {
			b.Fatal(err)
		}
	}
}
