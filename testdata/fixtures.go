// Package testdata holds scripted hand tracking sequences for tests. Each
// sequence is one detection result per camera frame.
package testdata

import "github.com/ayusman/neoncake/internal/detector"

// Sequence is a list of per-frame detection results. A nil entry is a frame
// without a hand.
type Sequence [][]detector.HandLandmarks

// NoHand returns n frames with no hand in view.
func NoHand(n int) Sequence {
	return make(Sequence, n)
}

// Swipe moves a closed fist in a straight line from (x0, y0) to (x1, y1)
// over n frames, both ends included.
func Swipe(x0, y0, x1, y1 float64, n int) Sequence {
	return path(detector.ClosedFistLandmarks(), x0, y0, x1, y1, n)
}

// Hold keeps preset at (x, y) for n frames.
func Hold(preset detector.HandLandmarks, x, y float64, n int) Sequence {
	return path(preset, x, y, x, y, n)
}

// OpenClose holds an open palm at the center for n frames and then a closed
// fist for another n.
func OpenClose(n int) Sequence {
	seq := Hold(detector.OpenPalmLandmarks(), 0.5, 0.5, n)
	return append(seq, Hold(detector.ClosedFistLandmarks(), 0.5, 0.5, n)...)
}

func path(preset detector.HandLandmarks, x0, y0, x1, y1 float64, n int) Sequence {
	seq := make(Sequence, n)
	for i := range seq {
		k := 0.0
		if n > 1 {
			k = float64(i) / float64(n-1)
		}
		x := x0 + (x1-x0)*k
		y := y0 + (y1-y0)*k
		seq[i] = []detector.HandLandmarks{detector.HandAt(preset, x, y)}
	}
	return seq
}
