package cake

import "math"

// Params describes the cake geometry and how the particle budget is split
// between categories. The ratios tune visual density; the generated total
// deviates from ParticleCount because of how they round.
type Params struct {
	ParticleCount int

	Layers        int
	BaseHeight    float64 // center height of the bottom layer
	HeightStep    float64 // vertical distance between layers
	BaseRadius    float64 // radius of the bottom layer
	RadiusStep    float64 // radius lost per layer
	LayerShare    float64 // share of ParticleCount spread over all layers
	TopLayerShare float64 // extra share given to the top layer
	BodyFrac      float64 // fraction of a layer's budget inside the body
	FrostFrac     float64 // fraction of a layer's budget on the frosting rim
	BodyShrink    float64 // body radius relative to the layer radius
	BodyThick     float64 // vertical jitter span of body points
	FrostInner    float64 // inner edge of the frosting band relative to the layer radius
	FrostThick    float64 // vertical jitter span of frosting points
	FrostBright   float64 // color multiplier for frosting

	DecorShare     float64 // share of ParticleCount for top decorations
	SprinkleFrac   float64 // fraction of top decorations that are sprinkles
	SprinkleRadius float64
	SprinkleHeight float64
	SprinkleSpan   float64

	Candles          int
	CandleRingMin    float64
	CandleRingSpan   float64
	CandleHeight     float64
	CandleBasePoints int
	CandleBaseSpread float64
	CandleBaseDepth  float64
	FlamePoints      int
	FlameSpread      float64
	FlameHeight      float64

	SideShare   float64 // share of ParticleCount for side swirls
	SwirlRadius float64 // swirl radius of the bottom layer
	SwirlThick  float64
	SwirlBright float64
}

// DefaultParams returns the tuned neon cake.
func DefaultParams() Params {
	return Params{
		ParticleCount: 5000,

		Layers:        4,
		BaseHeight:    -1.5,
		HeightStep:    0.6,
		BaseRadius:    1.4,
		RadiusStep:    0.12,
		LayerShare:    0.7,
		TopLayerShare: 0.3,
		BodyFrac:      0.7,
		FrostFrac:     0.3,
		BodyShrink:    0.85,
		BodyThick:     0.25,
		FrostInner:    0.9,
		FrostThick:    0.3,
		FrostBright:   1.2,

		DecorShare:     0.15,
		SprinkleFrac:   0.6,
		SprinkleRadius: 0.9,
		SprinkleHeight: 1.3,
		SprinkleSpan:   0.15,

		Candles:          5,
		CandleRingMin:    0.3,
		CandleRingSpan:   0.2,
		CandleHeight:     1.4,
		CandleBasePoints: 20,
		CandleBaseSpread: 0.05,
		CandleBaseDepth:  0.2,
		FlamePoints:      15,
		FlameSpread:      0.03,
		FlameHeight:      0.15,

		SideShare:   0.15,
		SwirlRadius: 1.3,
		SwirlThick:  0.4,
		SwirlBright: 1.3,
	}
}

// Layer is the geometry of one cake tier.
type Layer struct {
	Index  int
	Height float64
	Radius float64
}

// Layer returns the geometry of tier i.
func (p Params) Layer(i int) Layer {
	return Layer{
		Index:  i,
		Height: p.BaseHeight + float64(i)*p.HeightStep,
		Radius: p.BaseRadius - float64(i)*p.RadiusStep,
	}
}

// Counts is the number of points generated per category.
type Counts struct {
	Body      []int
	Frosting  []int
	Sprinkles int
	Candles   int
	Swirls    int
}

// Total returns the sum over all categories.
func (c Counts) Total() int {
	total := c.Sprinkles + c.Candles + c.Swirls
	for i := range c.Body {
		total += c.Body[i] + c.Frosting[i]
	}
	return total
}

// Counts computes the per-category point counts implied by the ratios.
// Fractional budgets run "while i < budget", i.e. they round up.
func (p Params) Counts() Counts {
	n := float64(p.ParticleCount)
	perLayer := int(math.Floor(n * p.LayerShare / float64(p.Layers)))

	c := Counts{
		Body:     make([]int, p.Layers),
		Frosting: make([]int, p.Layers),
	}
	for i := 0; i < p.Layers; i++ {
		budget := perLayer
		if i == p.Layers-1 {
			budget += int(math.Floor(n * p.TopLayerShare))
		}
		c.Body[i] = loopCount(float64(budget) * p.BodyFrac)
		c.Frosting[i] = loopCount(float64(budget) * p.FrostFrac)
	}

	top := math.Floor(n * p.DecorShare)
	c.Sprinkles = loopCount(top * p.SprinkleFrac)
	c.Candles = p.Candles * (p.CandleBasePoints + p.FlamePoints)
	c.Swirls = int(math.Floor(n * p.SideShare))
	return c
}

// loopCount is the number of iterations of "for i := 0; i < limit; i++".
func loopCount(limit float64) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(limit))
}
