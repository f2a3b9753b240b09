//go:build ebiten

package ui

import (
	"traffic-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay prints road statistics on top of the space-time diagram.
type Overlay struct {
	sim     core.Sim
	visible bool
	text    string
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim) *Overlay {
	return &Overlay{sim: sim, visible: true}
}

// Update toggles visibility with H and refreshes the text.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.visible = !o.visible
	}
	if o.visible {
		o.text = StatsText(o.sim)
	}
}

// Draw prints the current text in the top-left corner.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.visible || screen == nil {
		return
	}
	ebitenutil.DebugPrint(screen, o.text)
}
