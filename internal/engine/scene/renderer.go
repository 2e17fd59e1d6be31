package scene

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glslpad/internal/engine/camera"
	"github.com/Faultbox/glslpad/internal/engine/framebuffer"
)

// Uniforms set by the renderer every frame.
const (
	UniformProjection     = "projectionMatrix"
	UniformModelView      = "modelViewMatrix"
	UniformView           = "viewMatrix"
	UniformCameraPosition = "cameraPosition"
	UniformTime           = "time"
)

// Renderer draws a mesh into an offscreen framebuffer using the active
// camera.
type Renderer struct {
	framebuffer *framebuffer.Framebuffer
	cameras     *camera.Store
	start       time.Time

	ClearColor [4]float32
}

// NewRenderer creates a renderer with a width×height target.
func NewRenderer(cameras *camera.Store, width, height, samples int32) (*Renderer, error) {
	fb, err := framebuffer.New(width, height, samples)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	return &Renderer{
		framebuffer: fb,
		cameras:     cameras,
		start:       time.Now(),
		ClearColor:  [4]float32{0.12, 0.12, 0.14, 1.0},
	}, nil
}

// Resize matches the target to the viewport panel.
func (r *Renderer) Resize(width, height int32) error {
	return r.framebuffer.Resize(width, height)
}

// Size returns the target dimensions.
func (r *Renderer) Size() (width, height int32) {
	return r.framebuffer.Size()
}

// Texture returns the color texture the last frame resolved into.
func (r *Renderer) Texture() uint32 {
	return r.framebuffer.ColorTexture()
}

// Render draws mesh and returns the color texture to display.
func (r *Renderer) Render(mesh *Mesh) uint32 {
	w, h := r.framebuffer.Size()
	if cam := r.cameras.Get(); cam != nil && mesh != nil {
		for name, value := range FrameUniforms(cam, float32(w), float32(h), time.Since(r.start)) {
			mesh.SetUniform(name, value)
		}
	}

	restore := r.framebuffer.BindWithViewport()
	c := r.ClearColor
	r.framebuffer.Clear(c[0], c[1], c[2], c[3])

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	if mesh != nil {
		mesh.Draw()
	}

	restore()
	r.framebuffer.Resolve()
	return r.framebuffer.ColorTexture()
}

// ReadPixels returns the last frame as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	w, h := r.framebuffer.Size()
	return r.framebuffer.ReadPixels(), int(w), int(h)
}

// Destroy releases the framebuffer.
func (r *Renderer) Destroy() {
	r.framebuffer.Destroy()
}

// FrameUniforms returns the camera and clock uniforms for one frame.
// The mesh sits at the origin, so the model-view matrix is the view matrix.
func FrameUniforms(cam *camera.Ortho, width, height float32, elapsed time.Duration) map[string]any {
	view := cam.ViewMatrix()
	return map[string]any{
		UniformProjection:     cam.ProjectionMatrix(width, height),
		UniformModelView:      view,
		UniformView:           view,
		UniformCameraPosition: cam.Position,
		UniformTime:           float32(elapsed.Seconds()),
	}
}
