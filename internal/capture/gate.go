package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing constants.
const (
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel gray difference counted as change.
	DiffThreshold = 25
	// DefaultGateThreshold is the percentage of changed pixels that counts as motion.
	DefaultGateThreshold = 1.0
	// DefaultRefreshEvery forces a detection after this many gated frames so a
	// hand held perfectly still is still re-measured.
	DefaultRefreshEvery = 15
)

// MotionGate decides whether a frame differs enough from the last one to be
// worth running hand detection on. When it says no, the previous detection
// result still describes the scene.
type MotionGate struct {
	threshold    float64
	refreshEvery int
	prevGray     gocv.Mat
	primed       bool
	skipped      int
	mu           sync.Mutex
}

// NewMotionGate returns a gate that opens when more than threshold percent of
// pixels changed. Non-positive thresholds take the default.
func NewMotionGate(threshold float64) *MotionGate {
	if threshold <= 0 {
		threshold = DefaultGateThreshold
	}
	return &MotionGate{
		threshold:    threshold,
		refreshEvery: DefaultRefreshEvery,
		prevGray:     gocv.NewMat(),
	}
}

// SetRefreshEvery changes how many consecutive frames may be skipped. Zero
// disables forced refreshes.
func (g *MotionGate) SetRefreshEvery(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshEvery = max(n, 0)
}

// Allow reports whether detection should run on frame, and the percentage of
// pixels that changed since the previous frame. The first frame always passes.
func (g *MotionGate) Allow(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed || blurred.Rows() != g.prevGray.Rows() || blurred.Cols() != g.prevGray.Cols() {
		blurred.CopyTo(&g.prevGray)
		g.primed = true
		g.skipped = 0
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100
	blurred.CopyTo(&g.prevGray)

	if changed > g.threshold || (g.refreshEvery > 0 && g.skipped >= g.refreshEvery) {
		g.skipped = 0
		return true, changed
	}
	g.skipped++
	return false, changed
}

// Reset drops the baseline so the next frame passes.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primed = false
	g.skipped = 0
}

// Close releases the baseline frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prevGray.Close()
	g.prevGray = gocv.NewMat()
	g.primed = false
}
