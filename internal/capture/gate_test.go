package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionGate(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"explicit", 5, 5},
		{"zero takes default", 0, DefaultGateThreshold},
		{"negative takes default", -1, DefaultGateThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewMotionGate(tt.threshold)
			defer g.Close()

			if g.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", g.threshold, tt.want)
			}
			if g.primed {
				t.Error("new gate should not be primed")
			}
		})
	}
}

func TestMotionGate_StaticScene(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1)
	defer g.Close()
	g.SetRefreshEvery(0)

	frame := SolidFrame(320, 240, 40)
	defer frame.Close()

	if ok, _ := g.Allow(&frame); !ok {
		t.Fatal("first frame should pass the gate")
	}
	for i := 0; i < 5; i++ {
		if ok, changed := g.Allow(&frame); ok {
			t.Errorf("static frame %d passed the gate (changed %.2f%%)", i, changed)
		}
	}
}

func TestMotionGate_Motion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1)
	defer g.Close()

	still := SolidFrame(320, 240, 0)
	defer still.Close()
	moved := SolidFrame(320, 240, 0)
	defer moved.Close()
	gocv.Rectangle(&moved, image.Rect(80, 60, 240, 180), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	g.Allow(&still)
	ok, changed := g.Allow(&moved)
	if !ok {
		t.Errorf("moved frame did not pass the gate (changed %.2f%%)", changed)
	}
	if changed <= 1 {
		t.Errorf("changed = %.2f%%, want > 1%%", changed)
	}
}

func TestMotionGate_RefreshEvery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1)
	defer g.Close()
	g.SetRefreshEvery(3)

	frame := SolidFrame(160, 120, 90)
	defer frame.Close()

	var passed []bool
	for i := 0; i < 9; i++ {
		ok, _ := g.Allow(&frame)
		passed = append(passed, ok)
	}

	want := []bool{true, false, false, false, true, false, false, false, true}
	for i := range want {
		if passed[i] != want[i] {
			t.Fatalf("gate decisions = %v, want %v", passed, want)
		}
	}
}

func TestMotionGate_ResetAndEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1)
	defer g.Close()
	g.SetRefreshEvery(0)

	if ok, _ := g.Allow(nil); ok {
		t.Error("nil frame passed the gate")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if ok, _ := g.Allow(&empty); ok {
		t.Error("empty frame passed the gate")
	}

	frame := SolidFrame(160, 120, 90)
	defer frame.Close()
	g.Allow(&frame)
	g.Reset()
	if ok, _ := g.Allow(&frame); !ok {
		t.Error("first frame after Reset should pass")
	}
}
