// Package app wires the neoncake pipeline together: camera frames feed the
// hand detector on one goroutine, and the render loop folds the newest
// detection into the gesture state, smooths the rotation and draws a frame.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/neoncake/internal/cake"
	"github.com/ayusman/neoncake/internal/capture"
	"github.com/ayusman/neoncake/internal/cloud"
	"github.com/ayusman/neoncake/internal/detector"
	"github.com/ayusman/neoncake/internal/gesture"
	"github.com/ayusman/neoncake/internal/motion"
	"github.com/ayusman/neoncake/internal/render"
)

// DefaultFPS is the render loop rate.
const DefaultFPS = 60

// Config holds configuration options for the application.
type Config struct {
	Camera   capture.Config
	Detector detector.Config
	Cake     cake.Params
	Seed     uint64
	// FPS is the render rate used by Run.
	FPS int
	// MotionGate skips detection on frames that barely changed and reuses
	// the previous result instead.
	MotionGate   bool
	MotionThresh float64
	// Preview keeps a JPEG copy of the latest camera frame.
	Preview bool
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Camera:       capture.DefaultConfig(),
		Detector:     detector.DefaultConfig(),
		Cake:         cake.DefaultParams(),
		Seed:         1,
		FPS:          DefaultFPS,
		MotionThresh: capture.DefaultGateThreshold,
		Preview:      true,
	}
}

// Status is a snapshot of the app for display outside the render loop.
type Status struct {
	Tracking    bool
	HandPresent bool
	Openness    float64
	Rotation    [3]float64
	Frames      uint64
}

// App owns the point cloud, the gesture and rotation state, and the
// detection pipeline. Step must only be called from one goroutine.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	gate     *capture.MotionGate
	preview  *capture.Preview

	cloud    *cloud.PointCloud
	driver   *render.Driver
	gesture  gesture.State
	interp   *gesture.Interpreter
	rotation motion.RotationState
	smoother *motion.Smoother

	results  chan []detector.HandLandmarks
	tracking atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// New creates an App. The MediaPipe detector is used when its helper script
// is installed, otherwise a mock detector that never sees a hand.
func New(config Config) *App {
	def := DefaultConfig()
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	if config.Cake.ParticleCount <= 0 {
		config.Cake = def.Cake
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.Camera),
		smoother: motion.NewSmoother(),
		results:  make(chan []detector.HandLandmarks, 1),
	}
	a.interp = gesture.NewInterpreter(&a.gesture)
	a.cloud = cake.Generate(config.Cake, cake.NewRand(config.Seed))
	a.driver = render.NewDriver(a.cloud)
	if config.MotionGate {
		a.gate = capture.NewMotionGate(config.MotionThresh)
	}
	if config.Preview {
		a.preview = capture.NewPreview()
	}
	a.tracking.Store(true)

	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	log.Printf("Generated cake with %d particles (seed %d)", a.cloud.Len(), config.Seed)
	return a
}

// SetDetector replaces the hand detector. Call before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Attach adds a renderer to the render driver. Call before the render loop starts.
func (a *App) Attach(r render.Renderer) {
	a.driver.Attach(r)
}

// SetTracking turns hand tracking on or off. While off the cake behaves as
// if no hand were visible. Safe for concurrent use.
func (a *App) SetTracking(enabled bool) {
	if a.tracking.Swap(enabled) != enabled {
		log.Printf("Hand tracking %s", onOff(enabled))
	}
}

// ToggleTracking flips hand tracking and returns the new setting.
func (a *App) ToggleTracking() bool {
	enabled := !a.tracking.Load()
	a.SetTracking(enabled)
	return enabled
}

// Tracking reports whether hand tracking is on.
func (a *App) Tracking() bool {
	return a.tracking.Load()
}

// Start opens the camera and starts the detection pipeline. A camera that
// cannot be opened is logged and the app runs without hand input.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		log.Printf("Camera unavailable, running without hand tracking: %v", err)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.runPipeline(ctx, a.camera, a.detector, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases the camera, the detector
// and every renderer.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		<-a.done
		a.cancel = nil
		log.Println("Detection pipeline stopped")
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.gate != nil {
		a.gate.Close()
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	if err := a.driver.Close(); err != nil {
		log.Printf("Error closing renderer: %v", err)
	}
}

// Submit publishes a detection result for the render loop. Only the newest
// unread result is kept.
func (a *App) Submit(hands []detector.HandLandmarks) {
	for {
		select {
		case a.results <- hands:
			return
		default:
		}
		select {
		case <-a.results:
		default:
		}
	}
}

// Step advances the app by one rendered frame: it applies the newest
// detection result, if one arrived, advances the smoother and draws.
func (a *App) Step(now time.Time) error {
	select {
	case hands := <-a.results:
		if a.Tracking() {
			a.interp.ObserveHands(hands)
		}
	default:
	}
	if !a.Tracking() && a.gesture.Tracking() {
		a.interp.Observe(nil)
	}

	a.smoother.Step(&a.rotation, a.gesture.Target, a.gesture.Idle())
	rotation := a.rotation.Applied()

	_, err := a.driver.Tick(now, a.gesture.Openness, rotation, a.gesture.Tracking())

	a.statusMu.Lock()
	a.status = Status{
		Tracking:    a.Tracking(),
		HandPresent: a.gesture.Tracking(),
		Openness:    a.gesture.Openness,
		Rotation:    [3]float64{rotation[0], rotation[1], rotation[2]},
		Frames:      a.driver.Frames(),
	}
	a.statusMu.Unlock()

	return err
}

// Run calls Step at the configured rate until ctx is done or a renderer
// fails. A quit request from a renderer ends Run without error.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := a.Step(now); err != nil {
				if errors.Is(err, render.ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Status returns a snapshot of the latest frame. Safe for concurrent use.
func (a *App) Status() Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

// Gesture returns the gesture state. Render loop only.
func (a *App) Gesture() gesture.State {
	return a.gesture
}

// Rotation returns the rotation state. Render loop only.
func (a *App) Rotation() motion.RotationState {
	return a.rotation
}

// Cloud returns the point cloud.
func (a *App) Cloud() *cloud.PointCloud {
	return a.cloud
}

// Driver returns the render driver.
func (a *App) Driver() *render.Driver {
	return a.driver
}

// Preview returns the camera preview, or nil when disabled.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detector
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
