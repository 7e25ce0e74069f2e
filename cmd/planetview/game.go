package main

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/plus3/planetrun/level"
	"github.com/plus3/planetrun/physics"
	"github.com/plus3/planetrun/sim"
)

var meshColors = map[sim.MeshKind]color.RGBA{
	sim.MeshPlanet:   {120, 170, 120, 255},
	sim.MeshPlayer:   {255, 223, 186, 255},
	sim.MeshObstacle: {255, 179, 186, 255},
	sim.MeshBody:     {179, 229, 252, 255},
}

// Game drives a sim.World from ebiten's fixed 60 TPS update loop.
type Game struct {
	world      *sim.World
	levelPath  string
	watcher    *level.Watcher
	config     sim.Config
	zoom       float64
	rotate     bool
	paused     bool
	err        error
	screenW    int
	screenH    int
	lastReload string
	overlay    *overlay
}

func newGame(levelPath string, cfg sim.Config, zoom float64, rotate bool) (*Game, error) {
	g := &Game{levelPath: levelPath, config: cfg, zoom: zoom, rotate: rotate}
	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

// load builds a fresh world from the level file. The current world is kept on failure.
func (g *Game) load() error {
	lvl := level.Default()
	if g.levelPath != "" {
		var err error
		if lvl, err = level.Load(g.levelPath); err != nil {
			return err
		}
	}
	world, _, err := lvl.NewWorld(g.config)
	if err != nil {
		return err
	}
	g.world = world
	g.err = nil
	return nil
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if err := g.load(); err != nil {
				log.Printf("reload %s: %v", name, err)
				g.lastReload = "reload failed: " + err.Error()
				continue
			}
			log.Printf("reloaded %s", name)
			g.lastReload = "reloaded " + name
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	typing := false
	if g.overlay != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
			g.overlay.visible = !g.overlay.visible
		}
		typing = g.overlay.capturesInput()
	}
	if !typing && (ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape)) {
		return ebiten.Termination
	}
	g.pollReload()
	g.step(!typing)
	if g.overlay != nil {
		return g.overlay.update()
	}
	return nil
}

// step advances the world one tick. Keys are ignored while the inspector
// has focus and the player gets no input.
func (g *Game) step(keys bool) {
	if keys {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			if err := g.load(); err != nil {
				log.Printf("restart: %v", err)
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			g.paused = !g.paused
		}
		if _, dy := ebiten.Wheel(); dy != 0 {
			g.zoom = max(0.01, g.zoom*math.Pow(1.1, dy))
		}
	}
	if g.paused || g.err != nil {
		return
	}

	var in sim.Input
	if keys {
		in.Jump = ebiten.IsKeyPressed(ebiten.KeyZ) || ebiten.IsKeyPressed(ebiten.KeySpace)
		if ebiten.IsKeyPressed(ebiten.KeyLeft) {
			in.Run--
		}
		if ebiten.IsKeyPressed(ebiten.KeyRight) {
			in.Run++
		}
	}
	if err := g.world.SetInput(in); err != nil {
		g.err = err
		return
	}
	if err := g.world.Advance(); err != nil {
		// A broken world stays on screen frozen until it is restarted or reloaded.
		log.Printf("tick: %v", err)
		g.err = err
	}
}

// camera maps world coordinates to screen coordinates centered on the camera focus.
type camera struct {
	focus   cp.Vector
	angle   float64
	zoom    float64
	centerX float64
	centerY float64
}

func (c camera) point(p cp.Vector) (float32, float32) {
	d := p.Sub(c.focus).Rotate(cp.ForAngle(-c.angle)).Mult(c.zoom)
	return float32(c.centerX + d.X), float32(c.centerY + d.Y)
}

func (g *Game) camera() camera {
	c := camera{
		focus:   g.world.Camera().Focus,
		zoom:    g.zoom,
		centerX: float64(g.screenW) / 2,
		centerY: float64(g.screenH) / 2,
	}
	if g.rotate {
		if player, err := g.world.Player(); err == nil {
			if pose, err := g.world.Pose(player); err == nil {
				c.angle = pose.Angle
			}
		}
	}
	return c
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{24, 24, 32, 255})
	g.screenW, g.screenH = screen.Bounds().Dx(), screen.Bounds().Dy()

	items, err := g.world.Renderables()
	if err != nil {
		ebitenutil.DebugPrint(screen, err.Error())
		return
	}
	cam := g.camera()
	for _, item := range items {
		drawMesh(screen, cam, item.Mesh, item.Pose)
	}

	hud := "No player"
	if state, err := g.world.PlayerState(); err == nil {
		hud = fmt.Sprintf("On ground: %v\nVelocity: %.3f", state.OnGround, state.Velocity)
	}
	if g.paused {
		hud += "\nPaused"
	}
	if g.err != nil {
		hud += "\nStopped: " + g.err.Error()
	}
	if g.lastReload != "" {
		hud += "\n" + g.lastReload
	}
	ebitenutil.DebugPrint(screen, hud)

	if g.overlay != nil {
		g.overlay.draw(screen)
	}
}

func drawMesh(screen *ebiten.Image, cam camera, mesh sim.Mesh, pose physics.Pose) {
	clr := meshColors[mesh.Kind]
	switch mesh.Kind {
	case sim.MeshPlanet, sim.MeshBody:
		x, y := cam.point(pose.Position)
		vector.DrawFilledCircle(screen, x, y, float32(mesh.Radius*cam.zoom), clr, true)
	default:
		rot := cp.ForAngle(pose.Angle)
		corners := [4]cp.Vector{
			{X: -mesh.HalfWidth, Y: -mesh.HalfHeight},
			{X: mesh.HalfWidth, Y: -mesh.HalfHeight},
			{X: mesh.HalfWidth, Y: mesh.HalfHeight},
			{X: -mesh.HalfWidth, Y: mesh.HalfHeight},
		}
		for i := range corners {
			a := pose.Position.Add(corners[i].Rotate(rot))
			b := pose.Position.Add(corners[(i+1)%4].Rotate(rot))
			x0, y0 := cam.point(a)
			x1, y1 := cam.point(b)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
		}
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.overlay != nil {
		g.overlay.layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
