// Package render drives per-frame presentation of the point cloud: it applies
// the smoothed rotation and openness, animates the lights, and hands a Frame
// to whichever renderers are attached.
package render

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrQuit is returned by a renderer when the user asked to leave.
var ErrQuit = errors.New("render: quit requested")

// Renderer consumes frames. Draw is called once per frame from the render
// loop; the frame and its buffers are only valid for the duration of the call.
type Renderer interface {
	Draw(f *Frame) error
	Resize(width, height int)
	Close() error
}

// Camera is a perspective camera looking at the scene origin.
type Camera struct {
	FOV      float64 // vertical field of view in degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position mgl64.Vec3
}

// DefaultCamera returns the scene camera for a width x height viewport.
func DefaultCamera(width, height int) Camera {
	c := Camera{
		FOV:      75,
		Aspect:   1,
		Near:     0.1,
		Far:      1000,
		Position: mgl64.Vec3{0, 0, 5},
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Degenerate sizes are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

// Projection returns the perspective projection matrix.
func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// View returns the view matrix.
func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// Light is a colored light source. Ambient lights ignore Position.
type Light struct {
	Position  mgl64.Vec3
	Color     colorful.Color
	Intensity float64
}

// Frame is everything a renderer needs to draw one frame.
type Frame struct {
	Number    uint64
	Time      time.Time
	Positions []float32 // x, y, z per point, before rotation
	Colors    []float32 // r, g, b per point, unclamped
	Rotation  mgl64.Vec3
	Openness  float64
	Tracking  bool
	Camera    Camera
	Ambient   Light
	Lights    []Light
}

// Len returns the number of points in the frame.
func (f *Frame) Len() int {
	return len(f.Positions) / 3
}

// Model returns the model matrix for the frame rotation, applied X then Y
// then Z as intrinsic Euler angles.
func (f *Frame) Model() mgl64.Mat4 {
	return Model(f.Rotation)
}

// Model returns the rotation matrix for Euler angles r in XYZ order.
func Model(r mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(r.X()).
		Mul4(mgl64.HomogRotate3DY(r.Y())).
		Mul4(mgl64.HomogRotate3DZ(r.Z()))
}
