package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glslpad/internal/editor"
	"github.com/Faultbox/glslpad/internal/engine/shader"
	"github.com/Faultbox/glslpad/internal/shaders"
)

type countingBackend struct {
	compiles int
	fail     error
}

func (b *countingBackend) Compile(vertexSrc, fragmentSrc string) (uint32, error) {
	b.compiles++
	if b.fail != nil {
		return 0, b.fail
	}
	return uint32(b.compiles), nil
}

func (b *countingBackend) Release(uint32)                   {}
func (b *countingBackend) Upload(uint32, string, any) error { return nil }

func TestSourceSyncRebuildsOnlyOnChange(t *testing.T) {
	backend := &countingBackend{}
	mat := shader.NewMaterial(backend)
	var s sourceSync

	pair := editor.Pair{Vertex: "v", Fragment: "f"}
	require.NoError(t, s.apply(pair, mat))
	require.NoError(t, s.apply(pair, mat))
	assert.Equal(t, 1, backend.compiles)

	pair.Fragment = "f2"
	require.NoError(t, s.apply(pair, mat))
	assert.Equal(t, 2, backend.compiles)
	assert.True(t, mat.Ready())
}

func TestSourceSyncKeepsFailureUntilEdit(t *testing.T) {
	backend := &countingBackend{fail: errors.New("fragment shader: 0:1: syntax error")}
	mat := shader.NewMaterial(backend)
	var s sourceSync

	broken := editor.Pair{Vertex: "v", Fragment: "oops"}
	require.Error(t, s.apply(broken, mat))
	require.Error(t, s.apply(broken, mat))
	assert.Equal(t, 1, backend.compiles, "same broken text is not rebuilt every frame")
	assert.Error(t, s.Err())
	assert.False(t, mat.Ready())

	backend.fail = nil
	require.NoError(t, s.apply(editor.Pair{Vertex: "v", Fragment: "fixed"}, mat))
	assert.NoError(t, s.Err())
	assert.True(t, mat.Ready())
}

func TestFirstPath(t *testing.T) {
	p, ok := firstPath([]string{"a.stl", "b.stl"})
	assert.True(t, ok)
	assert.Equal(t, "a.stl", p)

	p, ok = firstPath([]string{"", "b.stl"})
	assert.True(t, ok)
	assert.Equal(t, "b.stl", p)

	_, ok = firstPath(nil)
	assert.False(t, ok)
}

func TestDefaultShaders(t *testing.T) {
	d := defaultShaders()
	assert.Equal(t, shaders.DefaultVertexShader, d.Vertex)
	assert.Equal(t, shaders.DefaultFragmentShader, d.Fragment)
}
