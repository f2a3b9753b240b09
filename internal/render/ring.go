package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"traffic-ca/internal/road"
)

var (
	ringColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	carColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	paper     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Positions draws the road as a circle with a dot for every occupied cell.
// Cell i sits at angle 2πi/Length, counter-clockwise from the right.
func Positions(cfg road.Config, st *road.State, size int) *image.RGBA {
	if size < 16 {
		size = 16
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)

	c := float64(size) / 2
	radius := float64(size) / 2.5
	steps := int(2 * math.Pi * radius)
	for k := 0; k < steps; k++ {
		theta := 2 * math.Pi * float64(k) / float64(steps)
		img.SetRGBA(int(c+radius*math.Cos(theta)), int(c-radius*math.Sin(theta)), ringColor)
	}

	n := cfg.Length
	if n <= 0 || st == nil {
		return img
	}
	dot := max(2, size/80)
	positions, _ := st.Positions()
	for _, i := range positions {
		theta := 2 * math.Pi * float64(i) / float64(n)
		fillDisc(img, int(c+radius*math.Cos(theta)), int(c-radius*math.Sin(theta)), dot, carColor)
	}
	return img
}

func fillDisc(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	b := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			if image.Pt(x, y).In(b) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}
