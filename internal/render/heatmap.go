package render

import (
	"image"

	icore "traffic-ca/internal/core"
	"traffic-ca/internal/road"
)

// Raster lays a series of states out as a grid with one column per tick and
// one row per cell; position 0 is the bottom row.
func Raster(cfg road.Config, states []*road.State) *icore.ByteGrid {
	grid := icore.NewByteGrid(len(states), cfg.Length)
	for t, st := range states {
		if st == nil {
			continue
		}
		for i, v := range st.Cells() {
			grid.Set(t, grid.H-1-i, DisplayValue(v))
		}
	}
	return grid
}

// Heatmap renders position against tick, coloured by speed. Each cell becomes
// a scale×scale block.
func Heatmap(cfg road.Config, states []*road.State, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	grid := Raster(cfg, states)
	palette := SpeedPalette(cfg.SpeedLimit)

	small := image.NewRGBA(image.Rect(0, 0, grid.W, grid.H))
	fillPaletteRGBA(small.Pix, grid.Cells(), palette)
	if scale == 1 {
		return small
	}

	img := image.NewRGBA(image.Rect(0, 0, grid.W*scale, grid.H*scale))
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			img.SetRGBA(x, y, small.RGBAAt(x/scale, y/scale))
		}
	}
	return img
}
