// Package motion smooths the cake rotation toward its gesture target.
package motion

import "github.com/go-gl/mathgl/mgl64"

// Default smoothing constants, tuned for the feel of the demo.
const (
	DefaultStiffness = 0.15  // fraction of the remaining distance added to velocity
	DefaultDamping   = 0.95  // per-frame velocity decay
	DefaultIdleSpin  = 0.003 // radians of Y drift per idle frame
)

// RotationState is the rotation the cake is displayed at.
type RotationState struct {
	Current  mgl64.Vec3
	Velocity mgl64.Vec3
	// Drift is the accumulated idle spin around Y. It persists once a hand
	// takes over, so control resumes from where the cake was showing.
	Drift float64
}

// Applied returns the rotation to render: Current plus the idle drift.
func (r *RotationState) Applied() mgl64.Vec3 {
	return mgl64.Vec3{r.Current[0], r.Current[1] + r.Drift, r.Current[2]}
}

// Smoother is a damped second-order filter moving a RotationState toward a
// target rotation, one step per rendered frame.
type Smoother struct {
	Stiffness float64
	Damping   float64
	IdleSpin  float64
}

// NewSmoother returns a Smoother with the default constants.
func NewSmoother() *Smoother {
	return &Smoother{
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		IdleSpin:  DefaultIdleSpin,
	}
}

// Step advances state by one frame toward target. When idle is true the
// drift grows by IdleSpin.
func (s *Smoother) Step(state *RotationState, target mgl64.Vec3, idle bool) {
	for axis := 0; axis < 3; axis++ {
		state.Current[axis] += state.Velocity[axis]
		delta := target[axis] - state.Current[axis]
		state.Velocity[axis] += delta * s.Stiffness
		state.Velocity[axis] *= s.Damping
	}

	if idle {
		state.Drift += s.IdleSpin
	}
}
