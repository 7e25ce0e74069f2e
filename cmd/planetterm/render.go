package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/sim"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2

var glyphs = map[sim.MeshKind]rune{
	sim.MeshPlanet:   '.',
	sim.MeshBody:     'o',
	sim.MeshObstacle: '#',
	sim.MeshPlayer:   '@',
}

var styles = map[sim.MeshKind]tcell.Style{
	sim.MeshPlanet:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	sim.MeshBody:     tcell.StyleDefault.Foreground(tcell.ColorBlue),
	sim.MeshObstacle: tcell.StyleDefault.Foreground(tcell.ColorRed),
	sim.MeshPlayer:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
}

// drawOrder puts planets underneath everything else.
var drawOrder = []sim.MeshKind{sim.MeshPlanet, sim.MeshBody, sim.MeshObstacle, sim.MeshPlayer}

// grid maps world space onto a w×h block of terminal cells centered on focus.
// scale is world units per cell column.
type grid struct {
	focus cp.Vector
	w, h  int
	scale float64
	cells []sim.MeshKind
	set   []bool
}

func newGrid(focus cp.Vector, w, h int, scale float64) *grid {
	return &grid{focus: focus, w: w, h: h, scale: scale, cells: make([]sim.MeshKind, w*h), set: make([]bool, w*h)}
}

// center returns the world position at the middle of a cell.
func (g *grid) center(col, row int) cp.Vector {
	return cp.Vector{
		X: g.focus.X + (float64(col)+0.5-float64(g.w)/2)*g.scale,
		Y: g.focus.Y + (float64(row)+0.5-float64(g.h)/2)*g.scale*cellAspect,
	}
}

func (g *grid) cellOf(p cp.Vector) (int, int, bool) {
	col := int(math.Floor((p.X-g.focus.X)/g.scale + float64(g.w)/2))
	row := int(math.Floor((p.Y-g.focus.Y)/(g.scale*cellAspect) + float64(g.h)/2))
	return col, row, col >= 0 && col < g.w && row >= 0 && row < g.h
}

func (g *grid) mark(col, row int, kind sim.MeshKind) {
	g.cells[row*g.w+col] = kind
	g.set[row*g.w+col] = true
}

func covers(item sim.Renderable, p cp.Vector) bool {
	d := p.Sub(item.Pose.Position)
	switch item.Mesh.Kind {
	case sim.MeshPlanet, sim.MeshBody:
		return d.LengthSq() <= item.Mesh.Radius*item.Mesh.Radius
	default:
		local := d.Rotate(cp.ForAngle(-item.Pose.Angle))
		return math.Abs(local.X) <= item.Mesh.HalfWidth && math.Abs(local.Y) <= item.Mesh.HalfHeight
	}
}

// rasterize draws every renderable into the grid. Meshes smaller than a cell
// still mark the cell holding their center.
func (g *grid) rasterize(items []sim.Renderable) {
	for _, kind := range drawOrder {
		for _, item := range items {
			if item.Mesh.Kind != kind {
				continue
			}
			for row := range g.h {
				for col := range g.w {
					if covers(item, g.center(col, row)) {
						g.mark(col, row, kind)
					}
				}
			}
			if col, row, ok := g.cellOf(item.Pose.Position); ok {
				g.mark(col, row, kind)
			}
		}
	}
}

// rune returns the glyph for a cell, or a space.
func (g *grid) rune(col, row int) (rune, tcell.Style) {
	i := row*g.w + col
	if !g.set[i] {
		return ' ', tcell.StyleDefault
	}
	return glyphs[g.cells[i]], styles[g.cells[i]]
}
