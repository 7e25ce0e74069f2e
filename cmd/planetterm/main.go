package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/sim"
)

// runHold is how many ticks one arrow key press keeps the run input held.
// Terminals report key presses but not releases.
const runHold = 10

type Game struct {
	screen    tcell.Screen
	world     *sim.World
	lvl       level.Level
	config    sim.Config
	scale     float64
	input     sim.Input
	runTicks  int
	err       error
	lastError string
}

func main() {
	levelPath := flag.String("level", "", "Level file to play. Empty plays the default level.")
	scale := flag.Float64("scale", 8, "World units per terminal column.")
	tick := flag.Duration("tick", 16*time.Millisecond, "Wall time between simulation ticks.")
	logPath := flag.String("log", "", "Write log output to this file instead of discarding it.")
	flag.Parse()

	// The terminal belongs to tcell while the game runs.
	logger := log.New(io.Discard, "", log.LstdFlags)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			log.Fatalf("Failed to open log: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	lvl := level.Default()
	if *levelPath != "" {
		var err error
		if lvl, err = level.Load(*levelPath); err != nil {
			log.Fatalf("Failed to load level: %v", err)
		}
	}

	g := &Game{lvl: lvl, config: sim.Config{Logger: logger}, scale: *scale}
	if err := g.restart(); err != nil {
		log.Fatalf("Failed to build level: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to init screen: %v", err)
	}
	g.screen = screen
	defer screen.Fini()

	g.run(*tick)
}

func (g *Game) restart() error {
	world, _, err := g.lvl.NewWorld(g.config)
	if err != nil {
		return err
	}
	g.world = world
	g.err = nil
	g.input = sim.Input{}
	g.runTicks = 0
	return nil
}

func (g *Game) run(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			g.update()
			g.draw()
		}
	}
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			g.input.Run, g.runTicks = -1, runHold
		case tcell.KeyRight:
			g.input.Run, g.runTicks = 1, runHold
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'z', ' ':
				g.input.Jump = true
			case 'r':
				if err := g.restart(); err != nil {
					g.lastError = err.Error()
				}
			case '+':
				g.scale = max(0.5, g.scale/1.25)
			case '-':
				g.scale *= 1.25
			}
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) update() {
	if g.err != nil {
		return
	}
	if err := g.world.SetInput(g.input); err != nil {
		g.err = err
		return
	}
	if err := g.world.Advance(); err != nil {
		g.err = err
		return
	}

	// Jump is one tick per key press.
	g.input.Jump = false
	if g.runTicks > 0 {
		g.runTicks--
		if g.runTicks == 0 {
			g.input.Run = 0
		}
	}
}

func (g *Game) draw() {
	g.screen.Clear()
	w, h := g.screen.Size()
	if h < 2 {
		g.screen.Show()
		return
	}

	items, err := g.world.Renderables()
	if err != nil {
		g.err = err
	} else {
		grid := newGrid(g.world.Camera().Focus, w, h-1, g.scale)
		grid.rasterize(items)
		for row := range h - 1 {
			for col := range w {
				r, style := grid.rune(col, row)
				g.screen.SetContent(col, row+1, r, nil, style)
			}
		}
	}

	hud := "No player"
	if state, err := g.world.PlayerState(); err == nil {
		hud = fmt.Sprintf("On ground: %v  Velocity: %.3f  Tick: %d", state.OnGround, state.Velocity, g.world.Stats().Ticks)
	}
	if g.err != nil {
		hud += "  Stopped: " + g.err.Error() + " (r restarts)"
	} else if g.lastError != "" {
		hud += "  " + g.lastError
	}
	for i, r := range []rune(hud) {
		if i >= w {
			break
		}
		g.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}
	g.screen.Show()
}
