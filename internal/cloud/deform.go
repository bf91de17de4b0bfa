package cloud

import "github.com/go-gl/mathgl/mgl64"

// Direction returns the unit vector from the center toward origin, or the
// zero vector when origin is exactly the center.
func Direction(origin mgl64.Vec3) mgl64.Vec3 {
	length := origin.Len()
	if length == 0 {
		return mgl64.Vec3{}
	}
	return origin.Mul(1 / length)
}

// Displace returns origin pushed outward along its direction by openness*MaxExplosion.
func Displace(origin mgl64.Vec3, openness float64) mgl64.Vec3 {
	return origin.Add(Direction(origin).Mul(openness * MaxExplosion))
}

// Deform recomputes every point's position from its origin for the given
// openness and refreshes the flat position buffer. Openness 0 restores the
// origins exactly.
func (c *PointCloud) Deform(openness float64) {
	factor := openness * MaxExplosion
	for i := range c.points {
		p := &c.points[i]
		if factor == 0 {
			p.Position = p.Origin
			continue
		}
		p.Position = p.Origin.Add(Direction(p.Origin).Mul(factor))
	}
	c.syncPositions()
}
