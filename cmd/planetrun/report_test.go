package main

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3, 1, 2}}
	s.Finalize()
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(3), s.Max)
	assert.Equal(t, time.Duration(2), s.Avg)
}

func TestReportGenerate(t *testing.T) {
	world, _, err := level.Default().NewWorld(sim.Config{Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)
	require.NoError(t, world.Advance())

	report := &Report{
		Mode:         world.Mode(),
		Ticks:        1,
		TotalUpdates: 1,
		Diagnostics:  world.Diagnostics(),
		Scheduler:    world.Stats(),
		Storage:      world.Storage().CollectStats(),
	}
	report.Player, err = world.PlayerState()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "**Level:** default")
	assert.Contains(t, out, "**Mode:** ground")
	assert.Contains(t, out, "- LocomotionSystem: 1 runs")
	assert.Contains(t, out, "- ResolverSystem: 1 runs")
	assert.Contains(t, out, "Entities: 12 in")
}
