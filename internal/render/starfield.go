package render

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultStars is the number of background stars.
const DefaultStars = 200

// Star is one background star falling down the viewport.
type Star struct {
	X, Y    float64
	Radius  float64
	Speed   float64
	Opacity float64
}

// Starfield is the decorative background layer. It is independent of the
// point cloud and advances once per rendered frame.
type Starfield struct {
	rng           *rand.Rand
	stars         []Star
	width, height float64
}

// NewStarfield scatters n stars over a width x height area.
func NewStarfield(rng *rand.Rand, n int, width, height float64) *Starfield {
	s := &Starfield{rng: rng, width: width, height: height}
	s.stars = make([]Star, n)
	for i := range s.stars {
		s.stars[i] = Star{
			X:       rng.Float64() * width,
			Y:       rng.Float64() * height,
			Radius:  rng.Float64() * 1.5,
			Speed:   rng.Float64()*0.5 + 0.2,
			Opacity: rng.Float64(),
		}
	}
	return s
}

// Stars returns the current stars.
func (s *Starfield) Stars() []Star {
	return s.stars
}

// Resize rescales star positions into a new area.
func (s *Starfield) Resize(width, height float64) {
	if width <= 0 || height <= 0 || s.width <= 0 || s.height <= 0 {
		return
	}
	sx, sy := width/s.width, height/s.height
	for i := range s.stars {
		s.stars[i].X *= sx
		s.stars[i].Y *= sy
	}
	s.width, s.height = width, height
}

// Step moves every star down by its speed, wrapping back to the top at a
// random column, and lets its opacity wander within [0.3, 1].
func (s *Starfield) Step() {
	for i := range s.stars {
		st := &s.stars[i]
		st.Y += st.Speed
		if st.Y > s.height {
			st.Y = 0
			st.X = s.rng.Float64() * s.width
		}
		st.Opacity += (s.rng.Float64() - 0.5) * 0.02
		st.Opacity = min(1, max(0.3, st.Opacity))
	}
}

// Background is the backdrop color at viewport position (x, y), both in
// [0, 1]: near-black with a slowly pulsing cyan to magenta radial glow.
func Background(x, y float64, now time.Time) colorful.Color {
	base := colorful.Color{R: 0x0a / 255.0, G: 0x0a / 255.0, B: 0x0a / 255.0}
	t := float64(now.UnixMilli()) * 0.0005

	d := math.Hypot(x-0.5, y-0.5) * 2
	if d >= 1 {
		return base
	}

	inner := colorful.Color{R: 0, G: 1, B: 1}
	outer := colorful.Color{R: 1, G: 0, B: 1}
	innerAlpha := 0.1 + math.Sin(t)*0.05
	outerAlpha := 0.05 + math.Cos(t*1.2)*0.03

	var glow colorful.Color
	var alpha float64
	if d < 0.5 {
		k := d / 0.5
		glow = inner.BlendRgb(outer, k)
		alpha = innerAlpha + (outerAlpha-innerAlpha)*k
	} else {
		k := (d - 0.5) / 0.5
		glow = outer
		alpha = outerAlpha * (1 - k)
	}
	return base.BlendRgb(glow, alpha)
}
