package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/neoncake/internal/capture"
	"github.com/ayusman/neoncake/internal/detector"
)

// ReadRetryDelay is how long the pipeline waits after a failed camera read.
const ReadRetryDelay = 100 * time.Millisecond

// runPipeline reads frames at the camera rate and runs at most one detection
// at a time, publishing each result with Submit.
//
// When hand tracking is off frames are not read at all. With the motion gate
// enabled, a frame that barely differs from the previous one republishes the
// previous result instead of running the detector.
func (a *App) runPipeline(ctx context.Context, camera capture.Camera, det detector.Detector, done chan struct{}) {
	defer close(done)

	fps := camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var last []detector.HandLandmarks
	haveLast := false
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.Tracking() {
			haveLast = false
			if a.gate != nil {
				a.gate.Reset()
			}
			continue
		}

		frame, err := camera.ReadFrame()
		if err != nil {
			failures++
			if failures == 1 || failures%100 == 0 {
				log.Printf("Error reading frame (%d failures): %v", failures, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(ReadRetryDelay):
			}
			continue
		}
		failures = 0

		if a.preview != nil {
			if err := a.preview.Update(frame); err != nil {
				log.Printf("Error updating preview: %v", err)
			}
		}

		if a.gate != nil {
			if moved, _ := a.gate.Allow(frame); !moved && haveLast {
				frame.Close()
				a.Submit(last)
				continue
			}
		}

		hands, err := det.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			continue
		}

		last, haveLast = hands, true
		a.Submit(hands)
	}
}
