// Package scene draws the shader-driven mesh into an offscreen framebuffer.
package scene

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/glslpad/internal/engine/geometry"
	"github.com/Faultbox/glslpad/internal/engine/shader"
)

// Buffers are the GPU objects holding one geometry.
type Buffers struct {
	VAO     uint32
	VBO     uint32
	EBO     uint32
	Count   int32 // Indices when indexed, vertices otherwise
	Indexed bool
}

// Uploader moves geometry to and from the GPU.
type Uploader interface {
	Upload(g *geometry.Geometry) Buffers
	Release(b Buffers)
	Draw(b Buffers)
}

// Mesh pairs uploaded geometry with a material.
type Mesh struct {
	uploader Uploader
	buffers  Buffers
	geometry *geometry.Geometry
	material *shader.Material
}

// NewMesh creates a mesh with no geometry.
func NewMesh(uploader Uploader, material *shader.Material) *Mesh {
	return &Mesh{uploader: uploader, material: material}
}

// ReplaceGeometry releases the current GPU geometry and uploads g.
// A nil g leaves the mesh empty.
func (m *Mesh) ReplaceGeometry(g *geometry.Geometry) {
	if m.geometry != nil {
		m.uploader.Release(m.buffers)
		m.buffers = Buffers{}
		m.geometry = nil
	}
	if g == nil || g.VertexCount() == 0 {
		return
	}
	m.buffers = m.uploader.Upload(g)
	m.geometry = g
}

// Geometry returns the mounted geometry, or nil.
func (m *Mesh) Geometry() *geometry.Geometry {
	return m.geometry
}

// Material returns the mesh material.
func (m *Mesh) Material() *shader.Material {
	return m.material
}

// Renderable reports whether the mesh has geometry and a built program.
func (m *Mesh) Renderable() bool {
	return m.geometry != nil && m.material != nil && m.material.Ready()
}

// SetUniform forwards to the material.
func (m *Mesh) SetUniform(name string, value any) {
	if m.material != nil {
		m.material.SetUniform(name, value)
	}
}

// Draw issues the draw call with the material's program bound.
func (m *Mesh) Draw() {
	if !m.Renderable() {
		return
	}
	gl.UseProgram(m.material.Program())
	m.uploader.Draw(m.buffers)
	gl.UseProgram(0)
}

// Destroy releases the geometry and the program.
func (m *Mesh) Destroy() {
	m.ReplaceGeometry(nil)
	if m.material != nil {
		m.material.Release()
	}
}

// GLUploader implements Uploader on the current OpenGL context.
// Vertices are interleaved position+normal at the shader's attribute
// locations.
type GLUploader struct{}

// Upload creates a VAO for g.
func (GLUploader) Upload(g *geometry.Geometry) Buffers {
	var b Buffers
	vertices := g.Interleaved()

	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	const stride = 6 * 4
	gl.VertexAttribPointerWithOffset(shader.AttribPosition, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(shader.AttribPosition)
	gl.VertexAttribPointerWithOffset(shader.AttribNormal, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(shader.AttribNormal)

	if len(g.Indices) > 0 {
		gl.GenBuffers(1, &b.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		b.Count = int32(len(g.Indices))
		b.Indexed = true
	} else {
		b.Count = int32(g.VertexCount())
	}

	gl.BindVertexArray(0)
	return b
}

// Release deletes the buffers.
func (GLUploader) Release(b Buffers) {
	if b.VAO != 0 {
		gl.DeleteVertexArrays(1, &b.VAO)
	}
	if b.VBO != 0 {
		gl.DeleteBuffers(1, &b.VBO)
	}
	if b.EBO != 0 {
		gl.DeleteBuffers(1, &b.EBO)
	}
}

// Draw draws b as triangles.
func (GLUploader) Draw(b Buffers) {
	gl.BindVertexArray(b.VAO)
	if b.Indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, b.Count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, b.Count)
	}
	gl.BindVertexArray(0)
}
