package scene

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glslpad/internal/engine/camera"
	"github.com/Faultbox/glslpad/internal/engine/geometry"
	"github.com/Faultbox/glslpad/internal/engine/shader"
)

// fakeUploader hands out fake buffer names and logs calls in order.
type fakeUploader struct {
	next  uint32
	calls []string
	live  map[uint32]bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{live: map[uint32]bool{}}
}

func (f *fakeUploader) Upload(g *geometry.Geometry) Buffers {
	f.next++
	f.live[f.next] = true
	f.calls = append(f.calls, "upload")
	return Buffers{VAO: f.next, Count: int32(g.VertexCount())}
}

func (f *fakeUploader) Release(b Buffers) {
	delete(f.live, b.VAO)
	f.calls = append(f.calls, "release")
}

func (f *fakeUploader) Draw(Buffers) {}

type nopBackend struct{ next uint32 }

func (b *nopBackend) Compile(string, string) (uint32, error) { b.next++; return b.next, nil }
func (b *nopBackend) Release(uint32)                         {}
func (b *nopBackend) Upload(uint32, string, any) error       { return nil }

func TestReplaceGeometryReleasesFirst(t *testing.T) {
	up := newFakeUploader()
	m := NewMesh(up, shader.NewMaterial(&nopBackend{}))

	m.ReplaceGeometry(geometry.Sphere(1, 8, 6))
	m.ReplaceGeometry(geometry.Sphere(2, 8, 6))

	assert.Equal(t, []string{"upload", "release", "upload"}, up.calls)
	assert.Len(t, up.live, 1, "only one geometry may be resident")

	m.ReplaceGeometry(nil)
	assert.Empty(t, up.live)
	assert.Nil(t, m.Geometry())
}

func TestRenderable(t *testing.T) {
	mat := shader.NewMaterial(&nopBackend{})
	m := NewMesh(newFakeUploader(), mat)
	assert.False(t, m.Renderable())

	m.ReplaceGeometry(geometry.Sphere(1, 8, 6))
	assert.False(t, m.Renderable(), "no program yet")

	require.NoError(t, mat.SetSource("v", "f"))
	assert.True(t, m.Renderable())

	m.Destroy()
	assert.False(t, m.Renderable())
	assert.False(t, mat.Ready())

	assert.False(t, NewMesh(newFakeUploader(), nil).Renderable())
}

func TestMeshSetUniformForwards(t *testing.T) {
	mat := shader.NewMaterial(&nopBackend{})
	m := NewMesh(newFakeUploader(), mat)

	m.SetUniform("bottom", float32(-1))
	v, ok := mat.Uniform("bottom")
	require.True(t, ok)
	assert.Equal(t, float32(-1), v)

	// A mesh without a material ignores uniforms.
	NewMesh(newFakeUploader(), nil).SetUniform("bottom", float32(1))
}

func TestFrameUniforms(t *testing.T) {
	cam := camera.NewOrtho(mgl32.Vec3{0, -10, 0}, mgl32.Vec3{0, 0, 1}, 50, 0.1, 1000)
	u := FrameUniforms(cam, 800, 600, 1500*time.Millisecond)

	assert.Equal(t, cam.ProjectionMatrix(800, 600), u[UniformProjection])
	assert.Equal(t, cam.ViewMatrix(), u[UniformModelView])
	assert.Equal(t, cam.ViewMatrix(), u[UniformView])
	assert.Equal(t, mgl32.Vec3{0, -10, 0}, u[UniformCameraPosition])
	assert.Equal(t, float32(1.5), u[UniformTime])
}
