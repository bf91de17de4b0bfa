package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/neoncake/internal/detector"
)

const epsilon = 1e-9

func fistAt(x, y float64) *detector.HandLandmarks {
	h := detector.HandAt(detector.ClosedFistLandmarks(), x, y)
	return &h
}

func palmAt(x, y float64) *detector.HandLandmarks {
	h := detector.HandAt(detector.OpenPalmLandmarks(), x, y)
	return &h
}

func TestOpenness(t *testing.T) {
	tests := []struct {
		name   string
		spread float64
		want   float64
	}{
		{"zero spread", 0, 0},
		{"below closed threshold", 0.1, 0},
		{"at closed threshold", ClosedSpread, 0},
		{"midway", ClosedSpread + 1.0/6, 0.5},
		{"fully open", 0.5, 1},
		{"far beyond open", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Openness(tt.spread); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Openness(%f) = %f, want %f", tt.spread, got, tt.want)
			}
		})
	}

	t.Run("open boundary", func(t *testing.T) {
		if got := Openness(ClosedSpread + 1.0/3); math.Abs(got-1) > epsilon {
			t.Errorf("Openness at open boundary = %f, want 1", got)
		}
	})

	t.Run("monotonic and clamped", func(t *testing.T) {
		prev := -1.0
		for spread := 0.0; spread <= 1.0; spread += 0.001 {
			got := Openness(spread)
			if got < prev {
				t.Fatalf("Openness decreased at spread %f: %f < %f", spread, got, prev)
			}
			if got < 0 || got > 1 {
				t.Fatalf("Openness(%f) = %f outside [0, 1]", spread, got)
			}
			prev = got
		}
	})
}

func TestInterpreter_Openness(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(fistAt(0.5, 0.5))
	if state.Openness != 0 {
		t.Errorf("closed fist openness = %f, want 0", state.Openness)
	}

	in.Observe(palmAt(0.5, 0.5))
	if state.Openness != 1 {
		t.Errorf("open palm openness = %f, want 1", state.Openness)
	}

	in.Observe(nil)
	if state.Openness != 0 {
		t.Errorf("no-hand openness = %f, want 0", state.Openness)
	}
}

func TestInterpreter_FirstSampleOnlyRecordsWrist(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(fistAt(0.3, 0.4))

	if state.Target.Len() != 0 {
		t.Errorf("target after first sample = %v, want zero", state.Target)
	}
	if state.PrevWrist == nil {
		t.Fatal("first sample should record the wrist")
	}
	if math.Abs(state.PrevWrist.X-0.3) > epsilon || math.Abs(state.PrevWrist.Y-0.4) > epsilon {
		t.Errorf("recorded wrist = %+v, want (0.3, 0.4)", *state.PrevWrist)
	}
}

func TestInterpreter_HorizontalMotionHasNoYaw(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(fistAt(0.5, 0.5))
	in.Observe(fistAt(0.6, 0.5))

	// dx = 0.1, dy = 0: the motion angle is 0, so angle*distance*10 adds nothing.
	if state.Target.Y() != 0 {
		t.Errorf("target Y = %f, want 0", state.Target.Y())
	}
	if state.Target.X() != 0 {
		t.Errorf("target X = %f, want 0", state.Target.X())
	}
}

func TestInterpreter_Rotation(t *testing.T) {
	tests := []struct {
		name       string
		from, to   [2]float64
		wantDeltaY float64
		wantDeltaX float64
	}{
		{
			name:       "moving up",
			from:       [2]float64{0.5, 0.5},
			to:         [2]float64{0.5, 0.4},
			wantDeltaY: -math.Pi / 2 * 0.1 * YawGain,
			wantDeltaX: -0.1 * PitchGain,
		},
		{
			name:       "moving down",
			from:       [2]float64{0.5, 0.4},
			to:         [2]float64{0.5, 0.5},
			wantDeltaY: math.Pi / 2 * 0.1 * YawGain,
			wantDeltaX: 0.1 * PitchGain,
		},
		{
			name:       "moving left",
			from:       [2]float64{0.6, 0.5},
			to:         [2]float64{0.5, 0.5},
			wantDeltaY: math.Pi * 0.1 * YawGain,
			wantDeltaX: 0,
		},
		{
			name:       "diagonal",
			from:       [2]float64{0.5, 0.5},
			to:         [2]float64{0.53, 0.54},
			wantDeltaY: math.Atan2(0.04, 0.03) * 0.05 * YawGain,
			wantDeltaX: 0.04 * PitchGain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var state State
			in := NewInterpreter(&state)

			in.Observe(fistAt(tt.from[0], tt.from[1]))
			in.Observe(fistAt(tt.to[0], tt.to[1]))

			if math.Abs(state.Target.Y()-tt.wantDeltaY) > 1e-6 {
				t.Errorf("target Y = %f, want %f", state.Target.Y(), tt.wantDeltaY)
			}
			if math.Abs(state.Target.X()-tt.wantDeltaX) > 1e-6 {
				t.Errorf("target X = %f, want %f", state.Target.X(), tt.wantDeltaX)
			}
		})
	}
}

func TestInterpreter_RotationAccumulates(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(fistAt(0.5, 0.5))
	in.Observe(fistAt(0.5, 0.4))
	first := state.Target
	in.Observe(fistAt(0.5, 0.3))

	if math.Abs(state.Target.Y()-2*first.Y()) > 1e-6 {
		t.Errorf("target Y = %f, want %f", state.Target.Y(), 2*first.Y())
	}
	if math.Abs(state.Target.X()-2*first.X()) > 1e-6 {
		t.Errorf("target X = %f, want %f", state.Target.X(), 2*first.X())
	}
}

func TestInterpreter_TiltSetsRoll(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	hand := detector.ClosedFistLandmarks()
	want := (hand.Points[detector.ThumbMCP].Y - hand.Points[detector.PinkyMCP].Y) * RollGain

	in.Observe(&hand)
	if state.Target.Z() != 0 {
		t.Errorf("roll set on first sample: %f", state.Target.Z())
	}

	in.Observe(&hand)
	if math.Abs(state.Target.Z()-want) > epsilon {
		t.Errorf("target Z = %f, want %f", state.Target.Z(), want)
	}

	// Roll is replaced, not accumulated.
	in.Observe(&hand)
	if math.Abs(state.Target.Z()-want) > epsilon {
		t.Errorf("target Z after repeat = %f, want %f", state.Target.Z(), want)
	}
}

func TestInterpreter_NoHandResetsWrist(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(palmAt(0.5, 0.5))
	in.Observe(nil)

	if state.PrevWrist != nil {
		t.Error("no-hand sample should clear the wrist reference")
	}
	if !state.Idle() {
		t.Error("state should be idle after a no-hand sample")
	}

	// The next detection is a fresh start: a big jump adds no rotation.
	in.Observe(palmAt(0.1, 0.9))
	if state.Target.Len() != 0 {
		t.Errorf("target = %v, want zero after fresh start", state.Target)
	}
	if !state.Tracking() {
		t.Error("state should be tracking after a detection")
	}
}

func TestInterpreter_NoHandKeepsTarget(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.Observe(fistAt(0.5, 0.5))
	in.Observe(fistAt(0.5, 0.4))
	target := state.Target

	in.Observe(nil)
	if state.Target != target {
		t.Errorf("target changed on no-hand sample: %v -> %v", target, state.Target)
	}
}

func TestInterpreter_ObserveHands(t *testing.T) {
	var state State
	in := NewInterpreter(&state)

	in.ObserveHands([]detector.HandLandmarks{detector.OpenPalmLandmarks(), detector.ClosedFistLandmarks()})
	if state.Openness != 1 {
		t.Errorf("openness = %f, want 1 from the first hand", state.Openness)
	}

	in.ObserveHands(nil)
	if state.Openness != 0 || state.PrevWrist != nil {
		t.Errorf("empty result should reset state, got %+v", state)
	}
}
