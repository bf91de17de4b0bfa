package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to report (default: 1).
	MaxHands int

	// ModelComplexity selects the landmark model variant (0 = lite, 1 = full).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the single-hand configuration the cake is tuned for.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		ModelComplexity: 1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}

// limitHands truncates hands to at most max entries. A non-positive max
// leaves the slice untouched.
func limitHands(hands []HandLandmarks, max int) []HandLandmarks {
	if max > 0 && len(hands) > max {
		return hands[:max]
	}
	return hands
}
