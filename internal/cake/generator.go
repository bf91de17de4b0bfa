// Package cake generates the neon cake point cloud: tapered layers with a
// frosting rim, top sprinkles, candles with flames, and side swirls.
package cake

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/neoncake/internal/cloud"
)

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds the cake point cloud. Equal params and equally seeded
// sources produce identical clouds.
func Generate(p Params, r *rand.Rand) *cloud.PointCloud {
	counts := p.Counts()
	b := cloud.NewBuilder(counts.Total())

	for i := 0; i < p.Layers; i++ {
		layer := p.Layer(i)

		for j := 0; j < counts.Body[i]; j++ {
			pos := SampleBody(r, p, layer)
			b.Add(pos, NeonColor(r, layer.Index, j))
		}

		for j := 0; j < counts.Frosting[i]; j++ {
			pos := SampleFrosting(r, p, layer)
			b.Add(pos, brighten(NeonColor(r, layer.Index+1, j), p.FrostBright))
		}
	}

	for j := 0; j < counts.Sprinkles; j++ {
		pos := SampleSprinkle(r, p)
		b.Add(pos, NeonColor(r, r.IntN(len(Palette)), j))
	}

	for c := 0; c < p.Candles; c++ {
		tip := CandleTip(r, p, c)
		for j := 0; j < p.CandleBasePoints; j++ {
			b.Add(SampleCandleBase(r, p, tip), CandleColor)
		}
		for j := 0; j < p.FlamePoints; j++ {
			pos := SampleFlame(r, p, tip)
			b.Add(pos, FlameColor(r))
		}
	}

	for j := 0; j < counts.Swirls; j++ {
		layer := p.Layer(r.IntN(p.Layers))
		pos := SampleSwirl(r, p, layer)
		b.Add(pos, brighten(NeonColor(r, layer.Index, j), p.SwirlBright))
	}

	return b.Build()
}

// ring places a point at angle and radius on the horizontal plane at height y.
func ring(angle, radius, y float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(angle) * radius, y, math.Sin(angle) * radius}
}

func angle(r *rand.Rand) float64 {
	return r.Float64() * 2 * math.Pi
}

// jitter returns a uniform offset in [-span/2, span/2).
func jitter(r *rand.Rand, span float64) float64 {
	return (r.Float64() - 0.5) * span
}

// SampleBody samples a point inside a layer's body. The square root gives
// uniform areal density across the disk.
func SampleBody(r *rand.Rand, p Params, l Layer) mgl64.Vec3 {
	a := angle(r)
	radius := math.Sqrt(r.Float64()) * l.Radius * p.BodyShrink
	y := l.Height + jitter(r, p.BodyThick)
	return ring(a, radius, y)
}

// SampleFrosting samples a point on the outer band of a layer.
func SampleFrosting(r *rand.Rand, p Params, l Layer) mgl64.Vec3 {
	a := angle(r)
	radius := l.Radius * (p.FrostInner + r.Float64()*(1-p.FrostInner))
	y := l.Height + jitter(r, p.FrostThick)
	return ring(a, radius, y)
}

// SampleSprinkle samples a point in the thin disk above the top layer.
func SampleSprinkle(r *rand.Rand, p Params) mgl64.Vec3 {
	a := angle(r)
	radius := r.Float64() * p.SprinkleRadius
	y := p.SprinkleHeight + r.Float64()*p.SprinkleSpan
	return ring(a, radius, y)
}

// CandleTip returns the tip of candle c. Candles are evenly spaced in angle
// with a random ring radius each.
func CandleTip(r *rand.Rand, p Params, c int) mgl64.Vec3 {
	a := float64(c) / float64(p.Candles) * 2 * math.Pi
	radius := p.CandleRingMin + r.Float64()*p.CandleRingSpan
	return ring(a, radius, p.CandleHeight)
}

// SampleCandleBase samples a point of the candle stem just below tip.
func SampleCandleBase(r *rand.Rand, p Params, tip mgl64.Vec3) mgl64.Vec3 {
	x := tip.X() + jitter(r, p.CandleBaseSpread)
	z := tip.Z() + jitter(r, p.CandleBaseSpread)
	y := tip.Y() - r.Float64()*p.CandleBaseDepth
	return mgl64.Vec3{x, y, z}
}

// SampleFlame samples a point of the flame just above tip.
func SampleFlame(r *rand.Rand, p Params, tip mgl64.Vec3) mgl64.Vec3 {
	x := tip.X() + jitter(r, p.FlameSpread)
	z := tip.Z() + jitter(r, p.FlameSpread)
	y := tip.Y() + r.Float64()*p.FlameHeight
	return mgl64.Vec3{x, y, z}
}

// SampleSwirl samples a decoration point on the outside of layer l.
func SampleSwirl(r *rand.Rand, p Params, l Layer) mgl64.Vec3 {
	a := angle(r)
	radius := p.SwirlRadius - float64(l.Index)*p.RadiusStep
	y := l.Height + jitter(r, p.SwirlThick)
	return ring(a, radius, y)
}
