package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/planetrun/ecs"
	"github.com/plus3/planetrun/ecs/debugui"
	debugui_ebiten "github.com/plus3/planetrun/ecs/debugui/ebiten"
)

// overlay is the ImGui inspector drawn over the game. Its panels live in
// their own Storage and look at whatever world the game currently runs.
type overlay struct {
	scheduler *ecs.Scheduler
	backend   *ecs.Singleton[debugui_ebiten.ImguiBackend]
	input     *ecs.Singleton[debugui.ImguiInputState]
	visible   bool
}

func newOverlay(g *Game, title string) *overlay {
	registry := ecs.NewComponentRegistry()
	debugui.RegisterDebugUIComponents(registry)
	storage := ecs.NewStorage(registry)

	o := &overlay{
		scheduler: ecs.NewScheduler(storage),
		backend:   ecs.NewSingleton[debugui_ebiten.ImguiBackend](storage, debugui_ebiten.NewImguiBackend(title, ScreenWidth, ScreenHeight)),
		input:     ecs.NewSingleton[debugui.ImguiInputState](storage),
	}

	debugui.SpawnDebugUI(storage, debugui.Target{
		Storage: func() *ecs.Storage { return g.world.Storage() },
		Stats:   func() *ecs.SchedulerStats { return g.world.Stats() },
		Focus: func() ecs.Entity {
			player, _ := g.world.Player()
			return player
		},
	})
	o.scheduler.Register(&debugui.ImguiSystem{})
	return o
}

// update builds this frame's widgets. Render functions run when the
// scheduler flushes its deferred commands, inside the ImGui frame.
func (o *overlay) update() error {
	if !o.visible {
		return nil
	}
	o.backend.Get().BeginFrame()
	defer o.backend.Get().EndFrame()
	return o.scheduler.Once()
}

func (o *overlay) draw(screen *ebiten.Image) {
	if o.visible {
		o.backend.Get().Draw(screen)
	}
}

func (o *overlay) layout(w, h int) {
	o.backend.Get().Layout(w, h)
}

// capturesInput reports whether ImGui wanted the keyboard or mouse last frame.
func (o *overlay) capturesInput() bool {
	state := o.input.Get()
	return o.visible && (state.WantCaptureKeyboard || state.WantCaptureMouse)
}
