package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/planetrun/ecs"
)

type QueryDebuggerCache struct {
	componentTypes     []string
	lastArchetypeCount int
}

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{
		selectedComponentTypes: make(map[string]bool),
		cache: &QueryDebuggerCache{
			lastArchetypeCount: -1,
		},
	}
}

func (qd *QueryDebuggerComponent) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(storage)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		clear(qd.selectedComponentTypes)
	}

	for _, compType := range qd.cache.componentTypes {
		selected := qd.selectedComponentTypes[compType]
		if imgui.Checkbox(compType, &selected) {
			if selected {
				qd.selectedComponentTypes[compType] = true
			} else {
				delete(qd.selectedComponentTypes, compType)
			}
		}
	}

	imgui.Separator()

	if len(qd.selectedComponentTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matchingArchetypes := matchArchetypes(storage, qd.selectedComponentTypes)
	totalEntities := 0
	for _, arch := range matchingArchetypes {
		totalEntities += arch.Len()
	}

	imgui.Text(fmt.Sprintf("Matching Archetypes: %d", len(matchingArchetypes)))
	imgui.Text(fmt.Sprintf("Matching Entities: %d", totalEntities))

	if imgui.TreeNodeStr("Archetype Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryArchTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype ID")
			imgui.TableSetupColumn("All Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range matchingArchetypes {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("0x%X", arch.ID()))

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%v", typeNames(arch)))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", arch.Len()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebuggerComponent) rebuildCacheIfNeeded(storage *ecs.Storage) {
	currentArchetypeCount := len(storage.Archetypes())
	if qd.cache.lastArchetypeCount == currentArchetypeCount {
		return
	}
	qd.cache.lastArchetypeCount = currentArchetypeCount
	qd.cache.componentTypes = componentTypeNames(storage)
}

// componentTypeNames lists every component type present in some archetype, sorted.
func componentTypeNames(storage *ecs.Storage) []string {
	seen := make(map[string]bool)
	var names []string
	for _, archetype := range storage.Archetypes() {
		for _, name := range typeNames(archetype) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// matchArchetypes returns the archetypes carrying every selected type name.
func matchArchetypes(storage *ecs.Storage, selected map[string]bool) []*ecs.Archetype {
	var matching []*ecs.Archetype
	for _, archetype := range storage.Archetypes() {
		names := typeNames(archetype)
		all := true
		for name := range selected {
			if !slices.Contains(names, name) {
				all = false
				break
			}
		}
		if all {
			matching = append(matching, archetype)
		}
	}
	return matching
}
