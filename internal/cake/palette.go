package cake

import (
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the neon color set, indexed cyclically.
var Palette = []colorful.Color{
	{R: 0, G: 1, B: 1},   // cyan
	{R: 1, G: 0, B: 1},   // magenta
	{R: 1, G: 0.5, B: 0}, // orange
	{R: 1, G: 1, B: 0},   // yellow
	{R: 0.5, G: 0, B: 1}, // purple
	{R: 1, G: 0, B: 0.5}, // pink
}

// Fixed candle colors.
var (
	CandleColor = colorful.Color{R: 1, G: 1, B: 0.5}
	flameLow    = colorful.Color{R: 1, G: 0.5, B: 0}
	flameHigh   = colorful.Color{R: 1, G: 1, B: 0}
)

// PaletteIndex picks the palette entry for a layer and point index.
// Successive points drift through the palette every ten indices.
func PaletteIndex(layer, index int) int {
	v := float64(layer) + float64(index)*0.1
	return int(math.Floor(math.Mod(v, float64(len(Palette)))))
}

// NeonColor returns the palette entry for (layer, index) with each channel
// independently scaled by a random factor in [0.8, 1.2).
func NeonColor(r *rand.Rand, layer, index int) colorful.Color {
	base := Palette[PaletteIndex(layer, index)]
	return colorful.Color{
		R: base.R * (0.8 + r.Float64()*0.4),
		G: base.G * (0.8 + r.Float64()*0.4),
		B: base.B * (0.8 + r.Float64()*0.4),
	}
}

// FlameColor returns an orange-to-yellow flame color.
func FlameColor(r *rand.Rand) colorful.Color {
	return flameLow.BlendRgb(flameHigh, r.Float64())
}

// brighten scales every channel by k without clamping.
func brighten(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}
