package render

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// PointSize is the world-space particle size; screen size attenuates with distance.
const PointSize = 0.1

// Splat is one particle projected onto a viewport.
type Splat struct {
	Index int
	X, Y  float64 // viewport coordinates, origin top left
	Depth float64 // normalized device depth, -1 near to 1 far
	Size  float64 // diameter in viewport units
	Color colorful.Color
}

// Projector maps frame points onto a width x height viewport.
type Projector struct {
	width, height int
	splats        []Splat
}

// NewProjector returns a Projector for the given viewport.
func NewProjector(width, height int) *Projector {
	p := &Projector{}
	p.Resize(width, height)
	return p
}

// Resize changes the viewport.
func (p *Projector) Resize(width, height int) {
	p.width = max(width, 1)
	p.height = max(height, 1)
}

// Size returns the viewport size.
func (p *Projector) Size() (int, int) {
	return p.width, p.height
}

// Project returns the visible points of f, sorted far to near so that later
// splats are drawn over earlier ones. The camera aspect is taken from the
// viewport. The returned slice is reused by the next call.
func (p *Projector) Project(f *Frame) []Splat {
	cam := f.Camera
	cam.SetViewport(p.width, p.height)
	model := f.Model()
	viewProj := cam.Projection().Mul4(cam.View())
	mvp := viewProj.Mul4(model)

	focal := float64(p.height) / (2 * math.Tan(mgl64.DegToRad(cam.FOV)/2))

	p.splats = p.splats[:0]
	n := f.Len()
	for i := 0; i < n; i++ {
		local := mgl64.Vec4{
			float64(f.Positions[3*i]),
			float64(f.Positions[3*i+1]),
			float64(f.Positions[3*i+2]),
			1,
		}
		clip := mvp.Mul4x1(local)
		w := clip.W()
		if w <= 0 {
			continue
		}
		ndc := clip.Vec3().Mul(1 / w)
		if math.Abs(ndc.X()) > 1 || math.Abs(ndc.Y()) > 1 || math.Abs(ndc.Z()) > 1 {
			continue
		}

		world := model.Mul4x1(local).Vec3()
		p.splats = append(p.splats, Splat{
			Index: i,
			X:     (ndc.X() + 1) / 2 * float64(p.width),
			Y:     (1 - ndc.Y()) / 2 * float64(p.height),
			Depth: ndc.Z(),
			Size:  PointSize * focal / w,
			Color: Shade(f, i, world),
		})
	}

	sort.SliceStable(p.splats, func(a, b int) bool {
		return p.splats[a].Depth > p.splats[b].Depth
	})
	return p.splats
}

// Shade returns the display color of point i at world position pos: the
// point's own color tinted by nearby lights, clamped to [0, 1].
func Shade(f *Frame, i int, pos mgl64.Vec3) colorful.Color {
	c := colorful.Color{
		R: float64(f.Colors[3*i]),
		G: float64(f.Colors[3*i+1]),
		B: float64(f.Colors[3*i+2]),
	}
	c = addLight(c, f.Ambient.Color, f.Ambient.Intensity*0.1)
	for _, l := range f.Lights {
		d := pos.Sub(l.Position).Len()
		c = addLight(c, l.Color, l.Intensity*0.15/(1+d*d*0.05))
	}
	return c.Clamped()
}

func addLight(c, light colorful.Color, k float64) colorful.Color {
	return colorful.Color{
		R: c.R + light.R*k,
		G: c.G + light.G*k,
		B: c.B + light.B*k,
	}
}
