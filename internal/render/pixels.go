package render

import "image/color"

// Background is the colour of empty cells.
var Background = color.RGBA{R: 18, G: 20, B: 34, A: 255}

// SpeedPalette returns the colours for display values 0..limit+1: index 0 is
// an empty cell and index s+1 a car at speed s, coloured along the "hot"
// colour map from black (stopped) towards white (at the limit).
func SpeedPalette(limit int) []color.RGBA {
	if limit < 1 {
		limit = 1
	}
	palette := make([]color.RGBA, limit+2)
	palette[0] = Background
	for s := 0; s <= limit; s++ {
		palette[s+1] = hot(float64(s) / float64(limit))
	}
	return palette
}

// DisplayValue encodes a cell for the palette: 0 when empty, speed+1 otherwise.
func DisplayValue(cell int) uint8 {
	if cell < 0 {
		return 0
	}
	return uint8(min(cell+1, 255))
}

// hot maps t in [0,1] through black, red, yellow and white. Stopped cars are
// lifted slightly off pure black so they stay visible on the background.
func hot(t float64) color.RGBA {
	t = 0.08 + 0.92*clamp01(t)
	r := clamp01(3 * t)
	g := clamp01(3*t - 1)
	b := clamp01(3*t - 2)
	return color.RGBA{R: uint8(r*255 + 0.5), G: uint8(g*255 + 0.5), B: uint8(b*255 + 0.5), A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
