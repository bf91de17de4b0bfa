package render

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// LightOrbit is the radius of the two orbiting lights.
const LightOrbit = 5.0

// DefaultAmbient is the cyan fill light.
func DefaultAmbient() Light {
	return Light{Color: colorful.Color{R: 0, G: 1, B: 1}, Intensity: 0.3}
}

// DefaultLights returns the magenta and cyan orbiting lights followed by a
// static yellow back light.
func DefaultLights() []Light {
	return []Light{
		{Position: mgl64.Vec3{5, 5, 5}, Color: colorful.Color{R: 1, G: 0, B: 1}, Intensity: 1.5},
		{Position: mgl64.Vec3{-5, -5, 5}, Color: colorful.Color{R: 0, G: 1, B: 1}, Intensity: 1.5},
		{Position: mgl64.Vec3{0, 5, -5}, Color: colorful.Color{R: 1, G: 1, B: 0}, Intensity: 1},
	}
}

// AnimateLights moves the first two lights around their orbit for wall-clock
// time now. Z and any further lights are left alone.
func AnimateLights(lights []Light, now time.Time) {
	t := float64(now.UnixMilli()) * 0.001
	if len(lights) > 0 {
		lights[0].Position[0] = math.Sin(t) * LightOrbit
		lights[0].Position[1] = math.Cos(t) * LightOrbit
	}
	if len(lights) > 1 {
		lights[1].Position[0] = math.Cos(t) * -LightOrbit
		lights[1].Position[1] = math.Sin(t) * -LightOrbit
	}
}
