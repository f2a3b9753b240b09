//go:build ebiten

package app

import (
	"image/color"
	"time"

	"traffic-ca/internal/core"
	"traffic-ca/internal/render"
	"traffic-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	pacer   *core.FixedStep
	palette []color.RGBA

	scale    int
	tps      int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale, tps int, seed int64) *Game {
	gp := render.NewGridPainter(sim.Size().W, sim.Size().H)
	return &Game{
		sim:     sim,
		painter: gp,
		overlay: ui.NewOverlay(sim),
		pacer:   core.NewFixedStep(tps),
		palette: paletteFor(sim),
		scale:   scale,
		tps:     tps,
		seed:    seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation at the
// configured tick rate.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.tps++
		g.pacer.SetTPS(g.tps)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) && g.tps > 1 {
		g.tps--
		g.pacer.SetTPS(g.tps)
	}

	g.overlay.Update()

	if g.tickOnce || (!g.paused && g.pacer.ShouldStep()) {
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

// Draw renders the space-time diagram of the road.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W * g.scale, s.H * g.scale
}
