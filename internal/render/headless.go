package render

import (
	"log"
	"time"
)

// HeadlessRenderer draws nothing. It logs a summary line periodically and can
// end the run after a fixed number of frames.
type HeadlessRenderer struct {
	interval  time.Duration
	maxFrames uint64
	lastLog   time.Time
	frames    uint64
}

// NewHeadlessRenderer logs every interval (never when zero) and returns
// ErrQuit after maxFrames frames (never when zero).
func NewHeadlessRenderer(interval time.Duration, maxFrames uint64) *HeadlessRenderer {
	return &HeadlessRenderer{interval: interval, maxFrames: maxFrames}
}

// Frames returns how many frames were drawn.
func (r *HeadlessRenderer) Frames() uint64 {
	return r.frames
}

func (r *HeadlessRenderer) Draw(f *Frame) error {
	r.frames++

	if r.interval > 0 && f.Time.Sub(r.lastLog) >= r.interval {
		r.lastLog = f.Time
		log.Printf("frame %d: hand=%v openness=%.2f rotation=(%.3f, %.3f, %.3f)",
			f.Number, f.Tracking, f.Openness, f.Rotation[0], f.Rotation[1], f.Rotation[2])
	}

	if r.maxFrames > 0 && r.frames >= r.maxFrames {
		return ErrQuit
	}
	return nil
}

func (r *HeadlessRenderer) Resize(width, height int) {}

func (r *HeadlessRenderer) Close() error {
	return nil
}
