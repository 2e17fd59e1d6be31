// Package framebuffer provides an offscreen render target shown inside
// the UI as a texture.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer manages an offscreen render target with color and depth attachments.
// With more than one sample the scene renders into multisampled
// renderbuffers and Resolve copies the result into ColorTexture.
type Framebuffer struct {
	fbo          uint32 // Render target
	resolveFBO   uint32 // Owns colorTexture when multisampled
	colorTexture uint32
	colorRBO     uint32
	depthRBO     uint32
	samples      int32
	width        int32
	height       int32
}

// New creates a new framebuffer with the specified dimensions.
// samples <= 1 disables multisampling.
func New(width, height, samples int32) (*Framebuffer, error) {
	width, height = clampSize(width, height)
	fb := &Framebuffer{
		width:   width,
		height:  height,
		samples: clampSamples(samples, maxSamples()),
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	// Sampled color texture, the resolve target when multisampling
	gl.GenTextures(1, &fb.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, fb.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.GenRenderbuffers(1, &fb.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)

	if fb.samples > 1 {
		gl.GenRenderbuffers(1, &fb.colorRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.colorRBO)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.RGBA8, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, fb.colorRBO)

		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	} else {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	}
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)

	if err := checkStatus("render"); err != nil {
		fb.Destroy()
		return err
	}

	if fb.samples > 1 {
		gl.GenFramebuffers(1, &fb.resolveFBO)
		gl.BindFramebuffer(gl.FRAMEBUFFER, fb.resolveFBO)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.colorTexture, 0)
		if err := checkStatus("resolve"); err != nil {
			fb.Destroy()
			return err
		}
	}

	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func checkStatus(which string) error {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("%s framebuffer incomplete: 0x%x", which, status)
	}
	return nil
}

func maxSamples() int32 {
	var n int32
	gl.GetIntegerv(gl.MAX_SAMPLES, &n)
	return n
}

// BindWithViewport binds and sets viewport, saving previous state.
// Returns a restore function to restore the previous framebuffer and viewport.
func (fb *Framebuffer) BindWithViewport() func() {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// Clear clears color and depth buffers with the specified color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resolve makes the last render visible in ColorTexture.
func (fb *Framebuffer) Resolve() {
	if fb.samples <= 1 {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, fb.resolveFBO)
	gl.BlitFramebuffer(0, 0, fb.width, fb.height, 0, 0, fb.width, fb.height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ColorTexture returns the sampled color texture.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// Samples returns the effective sample count.
func (fb *Framebuffer) Samples() int32 {
	return fb.samples
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize recreates the attachments if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int32) error {
	width, height = clampSize(width, height)
	if width == fb.width && height == fb.height {
		return nil
	}

	fb.Destroy()
	fb.width, fb.height = width, height
	if err := fb.create(); err != nil {
		return fmt.Errorf("resizing framebuffer to %dx%d: %w", width, height, err)
	}
	return nil
}

// ReadPixels reads the resolved color texture as bottom-up RGBA rows.
func (fb *Framebuffer) ReadPixels() []byte {
	pixels := make([]byte, fb.width*fb.height*4)

	src := fb.fbo
	if fb.samples > 1 {
		src = fb.resolveFBO
	}

	var prevFBO int32
	gl.GetIntegerv(gl.READ_FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(prevFBO))

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	for _, f := range []*uint32{&fb.fbo, &fb.resolveFBO} {
		if *f != 0 {
			gl.DeleteFramebuffers(1, f)
			*f = 0
		}
	}
	for _, r := range []*uint32{&fb.colorRBO, &fb.depthRBO} {
		if *r != 0 {
			gl.DeleteRenderbuffers(1, r)
			*r = 0
		}
	}
	if fb.colorTexture != 0 {
		gl.DeleteTextures(1, &fb.colorTexture)
		fb.colorTexture = 0
	}
}

func clampSize(width, height int32) (int32, int32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// clampSamples limits the request to what the driver supports.
func clampSamples(requested, limit int32) int32 {
	if requested > limit {
		requested = limit
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
