// Package detector provides the hand landmark detection boundary used to steer the cake.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// PalmCenter is the landmark used as the palm reference (middle finger MCP).
const PalmCenter = MiddleMCP

// Fingertips lists the five fingertip landmarks, thumb first.
var Fingertips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D is a landmark position. X and Y are normalized to the frame
// dimensions, Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Wrist returns the wrist landmark.
func (h *HandLandmarks) Wrist() Point3D {
	return h.Points[Wrist]
}

// SpreadDistance sums the distances from each fingertip to the palm center.
// A closed fist gives a small value, a spread hand a large one.
func (h *HandLandmarks) SpreadDistance() float64 {
	palm := h.Points[PalmCenter]
	var total float64
	for _, tip := range Fingertips {
		total += h.Points[tip].Distance(palm)
	}
	return total
}

// Translate returns a copy of h with every landmark shifted by (dx, dy, dz).
func (h HandLandmarks) Translate(dx, dy, dz float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
		h.Points[i].Z += dz
	}
	return h
}
