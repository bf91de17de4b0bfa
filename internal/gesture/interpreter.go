// Package gesture turns per-frame hand landmarks into the cake's control
// signals: how open the hand is and where the cake should be rotated to.
package gesture

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/neoncake/internal/detector"
)

// Calibration constants for the openness mapping and rotation gains.
const (
	// ClosedSpread is the fingertip-to-palm distance sum treated as a closed fist.
	ClosedSpread = 0.15
	// SpreadGain scales the spread above ClosedSpread into [0, 1].
	SpreadGain = 3.0

	// YawGain multiplies angle*distance of the wrist motion into Y rotation.
	YawGain = 10.0
	// PitchGain multiplies vertical wrist motion into X rotation.
	PitchGain = 5.0
	// RollGain multiplies the thumb-pinky base height difference into Z rotation.
	RollGain = 2.0
)

// State is the gesture state shared with the render loop.
type State struct {
	// Openness is 0 for a closed or absent hand and 1 for a spread hand.
	Openness float64
	// Target is the rotation the cake should move toward (x, y, z radians).
	Target mgl64.Vec3
	// PrevWrist is the wrist position of the previous sample, nil when the
	// last sample had no hand.
	PrevWrist *detector.Point3D
}

// Tracking reports whether a hand was present in the latest sample.
func (s *State) Tracking() bool {
	return s.PrevWrist != nil
}

// Idle reports whether nothing is steering the cake.
func (s *State) Idle() bool {
	return s.Openness == 0 && s.PrevWrist == nil
}

// Openness maps a fingertip spread distance to [0, 1].
func Openness(spread float64) float64 {
	return clamp((spread-ClosedSpread)*SpreadGain, 0, 1)
}

// Interpreter applies hand samples to a State.
type Interpreter struct {
	state *State
}

// NewInterpreter returns an Interpreter writing into state.
func NewInterpreter(state *State) *Interpreter {
	return &Interpreter{state: state}
}

// State returns the state the interpreter writes into.
func (in *Interpreter) State() *State {
	return in.state
}

// Observe folds one sample into the state. A nil hand means no hand was
// detected in the frame: openness drops to 0 and the wrist reference is
// cleared so the next detection starts fresh. Landmarks are not validated.
func (in *Interpreter) Observe(hand *detector.HandLandmarks) {
	s := in.state

	if hand == nil {
		s.Openness = 0
		s.PrevWrist = nil
		return
	}

	s.Openness = Openness(hand.SpreadDistance())

	wrist := hand.Wrist()
	if s.PrevWrist != nil {
		dx := wrist.X - s.PrevWrist.X
		dy := wrist.Y - s.PrevWrist.Y

		angle := math.Atan2(dy, dx)
		distance := math.Sqrt(dx*dx + dy*dy)

		s.Target[1] += angle * distance * YawGain
		s.Target[0] += dy * PitchGain
		s.Target[2] = (hand.Points[detector.ThumbMCP].Y - hand.Points[detector.PinkyMCP].Y) * RollGain
	}

	s.PrevWrist = &wrist
}

// ObserveHands is Observe for a detector result: the first hand is used and
// an empty result counts as no hand.
func (in *Interpreter) ObserveHands(hands []detector.HandLandmarks) {
	if len(hands) == 0 {
		in.Observe(nil)
		return
	}
	in.Observe(&hands[0])
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
