// Package camera provides the orthographic viewport camera and its orbit controls.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ortho is an orthographic camera. The visible area is the viewport size in
// pixels divided by Zoom, so one world unit spans Zoom pixels.
type Ortho struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Zoom     float32
	Near     float32
	Far      float32

	MinZoom float32
	MaxZoom float32

	// Orbit sensitivity in radians per pixel
	RotateSpeed float32
	// Wheel zoom factor per notch
	ZoomSpeed float32

	initial framing
}

// framing is the state restored by Reset.
type framing struct {
	position mgl32.Vec3
	up       mgl32.Vec3
	zoom     float32
}

// NewOrtho creates a camera at position looking at the origin.
func NewOrtho(position, up mgl32.Vec3, zoom, near, far float32) *Ortho {
	c := &Ortho{
		Position:    position,
		Up:          up.Normalize(),
		Zoom:        zoom,
		Near:        near,
		Far:         far,
		MinZoom:     5,
		MaxZoom:     500,
		RotateSpeed: 0.01,
		ZoomSpeed:   0.1,
	}
	c.initial = framing{position: c.Position, up: c.Up, zoom: c.Zoom}
	return c
}

// ViewMatrix returns the world-to-camera transform.
func (c *Ortho) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the orthographic projection for a viewport of the
// given pixel size.
func (c *Ortho) ProjectionMatrix(width, height float32) mgl32.Mat4 {
	halfW := width / (2 * c.Zoom)
	halfH := height / (2 * c.Zoom)
	return mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Ortho) ViewProjection(width, height float32) mgl32.Mat4 {
	return c.ProjectionMatrix(width, height).Mul4(c.ViewMatrix())
}

// Orbit rotates the camera around its target by a pointer drag delta in
// pixels. Horizontal drags spin around the up axis, vertical drags tilt
// toward it. Tilt stops just short of the poles.
func (c *Ortho) Orbit(deltaX, deltaY float32) {
	const minPolar = 0.01

	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}

	offset = mgl32.QuatRotate(-deltaX*c.RotateSpeed, c.Up).Rotate(offset)

	right := offset.Cross(c.Up)
	if right.Len() > 1e-6 {
		polar := math32.Acos(mgl32.Clamp(offset.Normalize().Dot(c.Up), -1, 1))
		newPolar := mgl32.Clamp(polar-deltaY*c.RotateSpeed, minPolar, math32.Pi-minPolar)
		// Rotating about offset x up by a positive angle lifts the camera toward up.
		offset = mgl32.QuatRotate(polar-newPolar, right.Normalize()).Rotate(offset)
	}

	c.Position = c.Target.Add(offset.Normalize().Mul(radius))
}

// ZoomBy scales zoom by a wheel delta, clamped to [MinZoom, MaxZoom].
func (c *Ortho) ZoomBy(wheel float32) {
	c.Zoom *= math32.Pow(1+c.ZoomSpeed, wheel)
	c.Zoom = mgl32.Clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Reset restores the framing the camera was created with.
func (c *Ortho) Reset() {
	c.Position = c.initial.position
	c.Up = c.initial.up
	c.Zoom = c.initial.zoom
	c.Target = mgl32.Vec3{}
}
