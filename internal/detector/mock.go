package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once any
// scripted results are exhausted.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Script queues per-call results. Each Detect call consumes one entry;
// a nil entry reports "no hand" for that frame.
func (m *MockDetector) Script(results ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted result, or the configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ClosedFistLandmarks returns a preset HandLandmarks representing a closed fist.
// Every fingertip sits within a couple of hundredths of the palm center.
func ClosedFistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.56, Y: 0.72, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.54, Y: 0.69, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.67, Z: 0.0}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.67, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.63, Z: -0.02}
	landmarks.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.64, Z: -0.02}
	landmarks.Points[IndexTip] = Point3D{X: 0.51, Y: 0.65, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.62, Z: -0.02}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.64, Z: -0.02}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.67, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.46, Y: 0.67, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.46, Y: 0.63, Z: -0.02}
	landmarks.Points[RingDIP] = Point3D{X: 0.47, Y: 0.64, Z: -0.02}
	landmarks.Points[RingTip] = Point3D{X: 0.49, Y: 0.66, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.69, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.43, Y: 0.66, Z: -0.02}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.45, Y: 0.66, Z: -0.02}
	landmarks.Points[PinkyTip] = Point3D{X: 0.48, Y: 0.67, Z: 0.0}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// HandAt returns hand translated so that its wrist lands on (x, y).
func HandAt(hand HandLandmarks, x, y float64) HandLandmarks {
	w := hand.Wrist()
	return hand.Translate(x-w.X, y-w.Y, 0)
}
