// Package cloud holds the particle point cloud and its per-frame radial deformation.
package cloud

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// MaxExplosion is the outward displacement applied at full openness.
const MaxExplosion = 3.0

// Point is one particle. Origin and Color are fixed at creation;
// Position is recomputed every frame.
type Point struct {
	Origin   mgl64.Vec3
	Position mgl64.Vec3
	Color    colorful.Color
}

// PointCloud owns a fixed, ordered set of points. A point's index is its
// identity for the lifetime of the cloud.
type PointCloud struct {
	points    []Point
	positions []float32
	colors    []float32
}

// Builder accumulates points before the cloud is sealed.
type Builder struct {
	points []Point
}

// NewBuilder returns a Builder with room for n points.
func NewBuilder(n int) *Builder {
	return &Builder{points: make([]Point, 0, n)}
}

// Add appends a point at origin with color c.
func (b *Builder) Add(origin mgl64.Vec3, c colorful.Color) {
	b.points = append(b.points, Point{Origin: origin, Position: origin, Color: c})
}

// Len reports how many points have been added so far.
func (b *Builder) Len() int {
	return len(b.points)
}

// Build seals the builder into a PointCloud. The builder must not be reused.
func (b *Builder) Build() *PointCloud {
	c := &PointCloud{
		points:    b.points,
		positions: make([]float32, 3*len(b.points)),
		colors:    make([]float32, 3*len(b.points)),
	}
	for i, p := range c.points {
		c.colors[3*i] = float32(p.Color.R)
		c.colors[3*i+1] = float32(p.Color.G)
		c.colors[3*i+2] = float32(p.Color.B)
	}
	c.syncPositions()
	b.points = nil
	return c
}

// Len returns the number of points.
func (c *PointCloud) Len() int {
	return len(c.points)
}

// Point returns a copy of the i-th point.
func (c *PointCloud) Point(i int) Point {
	return c.points[i]
}

// Positions returns the flat position buffer (x, y, z per point).
// The slice is owned by the cloud and rewritten by Deform.
func (c *PointCloud) Positions() []float32 {
	return c.positions
}

// Colors returns the flat color buffer (r, g, b per point).
// Channels are not clamped; frosting and swirl points may exceed 1.
func (c *PointCloud) Colors() []float32 {
	return c.colors
}

func (c *PointCloud) syncPositions() {
	for i, p := range c.points {
		c.positions[3*i] = float32(p.Position[0])
		c.positions[3*i+1] = float32(p.Position[1])
		c.positions[3*i+2] = float32(p.Position[2])
	}
}
