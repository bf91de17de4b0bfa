package render

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/neoncake/internal/cloud"
)

// Driver runs the per-frame update: it deforms the cloud for the current
// openness, animates the lights and passes the resulting Frame to every
// attached renderer. Driver is not safe for concurrent use; all calls are
// expected from the render loop.
type Driver struct {
	cloud     *cloud.PointCloud
	camera    Camera
	ambient   Light
	lights    []Light
	renderers []Renderer
	frame     Frame
	frames    uint64
}

// NewDriver returns a Driver for c with the default camera and lights.
func NewDriver(c *cloud.PointCloud, renderers ...Renderer) *Driver {
	return &Driver{
		cloud:     c,
		camera:    DefaultCamera(1, 1),
		ambient:   DefaultAmbient(),
		lights:    DefaultLights(),
		renderers: renderers,
	}
}

// Attach adds a renderer.
func (d *Driver) Attach(r Renderer) {
	d.renderers = append(d.renderers, r)
}

// Renderers returns the attached renderers.
func (d *Driver) Renderers() []Renderer {
	return d.renderers
}

// Camera returns the current camera.
func (d *Driver) Camera() Camera {
	return d.camera
}

// Lights returns the current light positions and colors.
func (d *Driver) Lights() []Light {
	return d.lights
}

// Frames returns how many frames have been ticked.
func (d *Driver) Frames() uint64 {
	return d.frames
}

// Tick renders one frame. The first renderer error stops the fan-out and is
// returned; ErrQuit can be matched with errors.Is.
func (d *Driver) Tick(now time.Time, openness float64, rotation mgl64.Vec3, tracking bool) (*Frame, error) {
	d.cloud.Deform(openness)
	AnimateLights(d.lights, now)
	d.frames++

	d.frame = Frame{
		Number:    d.frames,
		Time:      now,
		Positions: d.cloud.Positions(),
		Colors:    d.cloud.Colors(),
		Rotation:  rotation,
		Openness:  openness,
		Tracking:  tracking,
		Camera:    d.camera,
		Ambient:   d.ambient,
		Lights:    d.lights,
	}

	for _, r := range d.renderers {
		if err := r.Draw(&d.frame); err != nil {
			return &d.frame, fmt.Errorf("draw frame %d: %w", d.frames, err)
		}
	}
	return &d.frame, nil
}

// Resize updates the camera aspect ratio and forwards the new viewport size
// to every renderer.
func (d *Driver) Resize(width, height int) {
	d.camera.SetViewport(width, height)
	for _, r := range d.renderers {
		r.Resize(width, height)
	}
}

// Close closes every renderer and returns the first error.
func (d *Driver) Close() error {
	var first error
	for _, r := range d.renderers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
