package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/sim"
)

func main() {
	levelPath := flag.String("level", "", "Level file to run. Empty runs the default level.")
	ticks := flag.Int("ticks", 600, "The number of ticks to simulate.")
	jumpEvery := flag.Int("jump-every", 0, "Press jump every N ticks. Zero never jumps.")
	run := flag.Float64("run", 0, "Run input held for the whole run, in [-1, 1].")
	debug := flag.Bool("debug", false, "Log pose and velocity of every moving collider each tick.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	lvl := level.Default()
	if *levelPath != "" {
		var err error
		if lvl, err = level.Load(*levelPath); err != nil {
			log.Fatalf("Failed to load level: %v", err)
		}
	}

	world, scene, err := lvl.NewWorld(sim.Config{Logger: log.Default(), Debug: *debug})
	if err != nil {
		log.Fatalf("Failed to build level: %v", err)
	}
	log.Printf("Built level: %d obstacles, %d moons, %d bodies, mode %s\n",
		len(scene.Obstacles), len(scene.Moons), len(scene.Bodies), world.Mode())

	report := &Report{
		Level:          *levelPath,
		Mode:           world.Mode(),
		Ticks:          *ticks,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running %d ticks...\n", *ticks)
	startTime := time.Now()
	for tick := 1; tick <= *ticks; tick++ {
		in := sim.Input{Run: *run, Jump: *jumpEvery > 0 && tick%*jumpEvery == 0}
		if err := world.SetInput(in); err != nil {
			log.Fatalf("tick %d: %v", tick, err)
		}

		updateStart := time.Now()
		err := world.Advance()
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		if err != nil {
			log.Fatalf("tick %d: %v", tick, err)
		}
		report.TotalUpdates++

		state, _ := world.PlayerState()
		if state.OnGround {
			report.GroundedTicks++
		}
	}
	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := world.CheckBijection(); err != nil {
		log.Fatalf("Collider bijection broken: %v", err)
	}

	player, err := world.Player()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if report.PlayerPose, err = world.Pose(player); err != nil {
		log.Fatalf("%v", err)
	}
	report.Player, _ = world.PlayerState()
	report.Diagnostics = world.Diagnostics()
	report.Scheduler = world.Stats()
	report.Storage = world.Storage().CollectStats()

	fmt.Println("\n--- Planet Run Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}
