package app

import (
	"image/color"
	"strconv"

	"traffic-ca/internal/core"
	"traffic-ca/internal/render"
)

// paletteFor picks the speed palette matching a sim's speed limit.
func paletteFor(sim core.Sim) []color.RGBA {
	limit := 1
	if provider, ok := sim.(core.ParameterProvider); ok {
		if p, found := provider.Parameters().Lookup("limit"); found {
			if v, err := strconv.Atoi(p.Value); err == nil && v > 0 {
				limit = v
			}
		}
	}
	return render.SpeedPalette(limit)
}
