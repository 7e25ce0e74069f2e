package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/physics"
	"github.com/plus3/planetrun/sim"
)

type Report struct {
	// Configuration
	Level string
	Mode  sim.Mode
	Ticks int

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	GroundedTicks  int
	Player         sim.Player
	PlayerPose     physics.Pose
	Diagnostics    sim.Diagnostics
	Scheduler      *ecs.SchedulerStats
	Storage        *ecs.StorageStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Planet Run Report

## Configuration
- **Level:** {{if .Level}}{{.Level}}{{else}}default{{end}}
- **Mode:** {{.Mode}}
- **Ticks:** {{.Ticks}}

## Player
- **Position:** {{.PlayerPose.Position}}
- **Angle:** {{printf "%.4f" .PlayerPose.Angle}}
- **On ground:** {{.Player.OnGround}} ({{.GroundedTicks}} of {{.TotalUpdates}} ticks)
- **Run velocity:** {{printf "%.4f" .Player.Velocity}}

## Diagnostics
- Contacts started:     {{.Diagnostics.ContactsStarted}}
- Contacts stopped:     {{.Diagnostics.ContactsStopped}}
- Empty manifolds:      {{.Diagnostics.EmptyManifolds}}
- Degenerate distances: {{.Diagnostics.DegenerateDistances}}
- Free fall ticks:      {{.Diagnostics.FreeFallTicks}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Time:** {{.TotalTime}}
- **Update Time (Tick):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
{{with .Scheduler}}
## Passes
{{range .Systems}}- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}, errors {{.ErrorCount}}
{{end}}{{end}}{{with .Storage}}
## Storage
- Entities: {{.TotalEntityCount}} in {{.ArchetypeCount}} archetypes, {{.SingletonCount}} singletons
{{range .ArchetypeBreakdown}}- {{.EntityCount}} x {{.Types}}
{{end}}{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
