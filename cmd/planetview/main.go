package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/sim"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

func main() {
	levelPath := flag.String("level", "", "Level file to play. Empty plays the default level.")
	watch := flag.Bool("watch", false, "Reload the level whenever its file changes.")
	zoom := flag.Float64("zoom", 1, "Initial zoom. The mouse wheel changes it.")
	rotate := flag.Bool("rotate", false, "Keep the player upright on screen.")
	debug := flag.Bool("debug", false, "Log pose and velocity of every moving collider each tick.")
	inspect := flag.Bool("inspect", false, "Start with the ImGui inspector open. F1 toggles it.")
	flag.Parse()

	game, err := newGame(*levelPath, sim.Config{Logger: log.Default(), Debug: *debug}, *zoom, *rotate)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}

	if *watch {
		if *levelPath == "" {
			log.Fatal("-watch needs -level")
		}
		watcher, err := level.NewWatcher(*levelPath)
		if err != nil {
			log.Fatalf("Failed to watch %s: %v", *levelPath, err)
		}
		defer watcher.Close()
		game.watcher = watcher
	}

	// The ImGui backend creates the window.
	game.overlay = newOverlay(game, "Planet Run")
	game.overlay.visible = *inspect
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
