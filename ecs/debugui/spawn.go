package debugui

import "github.com/plus3/planetrun/ecs"

// Target is the world the panels inspect. It usually lives in a different
// Storage from the panels themselves, and may be swapped between frames.
type Target struct {
	Storage func() *ecs.Storage
	// Stats feeds the system latency table. Optional.
	Stats func() *ecs.SchedulerStats
	// Focus is inspected while nothing is selected in the entity browser. Optional.
	Focus func() ecs.Entity
}

// SpawnDebugUI spawns one ImguiItem entity per panel into ui.
func SpawnDebugUI(ui *ecs.Storage, target Target) {
	browser := spawnPanel(ui, NewEntityBrowserComponent(100), func(eb *EntityBrowserComponent) {
		eb.Render(target.Storage())
	})
	spawnPanel(ui, NewComponentInspectorComponent(), func(ci *ComponentInspectorComponent) {
		selected := ecs.ReadComponent[EntityBrowserComponent](ui, browser).GetSelectedEntity()
		if selected.IsZero() && target.Focus != nil {
			selected = target.Focus()
		}
		ci.Render(target.Storage(), selected)
	})
	spawnPanel(ui, NewArchetypeViewerComponent(), func(av *ArchetypeViewerComponent) {
		av.Render(target.Storage())
	})
	spawnPanel(ui, NewPerformanceStatsComponent(120), func(ps *PerformanceStatsComponent) {
		var stats *ecs.SchedulerStats
		if target.Stats != nil {
			stats = target.Stats()
		}
		ps.Render(target.Storage(), stats)
	})
	spawnPanel(ui, NewQueryDebuggerComponent(), func(qd *QueryDebuggerComponent) {
		qd.Render(target.Storage())
	})
}

// spawnPanel stores panel next to an ImguiItem that renders it in place.
func spawnPanel[T any](ui *ecs.Storage, panel T, render func(*T)) ecs.Entity {
	e := ui.Spawn(panel, ImguiItem{})
	ecs.ReadComponent[ImguiItem](ui, e).Render = func() {
		if p := ecs.ReadComponent[T](ui, e); p != nil {
			render(p)
		}
	}
	return e
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
	ecs.RegisterComponent[EntityBrowserComponent](registry)
	ecs.RegisterComponent[ComponentInspectorComponent](registry)
	ecs.RegisterComponent[ArchetypeViewerComponent](registry)
	ecs.RegisterComponent[PerformanceStatsComponent](registry)
	ecs.RegisterComponent[QueryDebuggerComponent](registry)
}
