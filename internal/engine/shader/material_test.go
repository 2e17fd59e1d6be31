package shader

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	program uint32
	name    string
	value   any
}

// fakeBackend records GPU traffic without a GL context.
type fakeBackend struct {
	next     uint32
	live     map[uint32]bool
	compiles int
	released []uint32
	uploads  []upload
	fail     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[uint32]bool)}
}

func (f *fakeBackend) Compile(vertexSrc, fragmentSrc string) (uint32, error) {
	f.compiles++
	if f.fail != nil {
		return 0, f.fail
	}
	f.next++
	f.live[f.next] = true
	return f.next, nil
}

func (f *fakeBackend) Release(program uint32) {
	delete(f.live, program)
	f.released = append(f.released, program)
}

func (f *fakeBackend) Upload(program uint32, name string, value any) error {
	f.uploads = append(f.uploads, upload{program, name, value})
	return nil
}

func TestSetSourceReleasesPrevious(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)

	require.NoError(t, m.SetSource("v1", "f1"))
	first := m.Program()
	require.NoError(t, m.SetSource("v2", "f2"))

	assert.Equal(t, []uint32{first}, backend.released)
	assert.Len(t, backend.live, 1, "only one program may be alive")
	assert.True(t, backend.live[m.Program()])

	v, f := m.Source()
	assert.Equal(t, "v2", v)
	assert.Equal(t, "f2", f)
}

func TestSetSourceFailure(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)
	m.SetUniform("isOver", true)
	require.NoError(t, m.SetSource("v", "f"))

	compileErr := &CompileError{Stage: "fragment", Log: "0:3: syntax error"}
	backend.fail = compileErr

	err := m.SetSource("v", "broken")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "fragment", ce.Stage)
	assert.Contains(t, err.Error(), "syntax error")

	assert.False(t, m.Ready())
	assert.Zero(t, m.Program())
	assert.Empty(t, backend.live, "failed build must not leave the old program alive")

	val, ok := m.Uniform("isOver")
	assert.True(t, ok, "bag survives a failed build")
	assert.Equal(t, true, val)

	// Recovery pushes the bag into the new program.
	backend.fail = nil
	backend.uploads = nil
	require.NoError(t, m.SetSource("v", "fixed"))
	assert.Contains(t, backend.uploads, upload{m.Program(), "isOver", true})
}

func TestSetUniformMirrorsWithoutRebuild(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)
	require.NoError(t, m.SetSource("v", "f"))

	m.SetUniform("point", mgl32.Vec3{1, 2, 3})

	assert.Equal(t, 1, backend.compiles)
	require.Len(t, backend.uploads, 1)
	assert.Equal(t, upload{m.Program(), "point", mgl32.Vec3{1, 2, 3}}, backend.uploads[0])
}

func TestSetUniformSkipsUnchanged(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)
	require.NoError(t, m.SetSource("v", "f"))

	m.SetUniform("bottom", float32(-2.5))
	m.SetUniform("bottom", float32(-2.5))
	m.SetUniform("bottom", -2.5) // float64 narrows to the same value

	assert.Len(t, backend.uploads, 1)
}

func TestSetUniformBeforeProgram(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)

	m.SetUniform("selectedColor", mgl32.Vec3{1, 0, 0})
	m.SetUniform("time", float32(0.5))
	assert.Empty(t, backend.uploads)

	require.NoError(t, m.SetSource("v", "f"))
	require.Len(t, backend.uploads, 2)
	// Bag is pushed in name order.
	assert.Equal(t, "selectedColor", backend.uploads[0].name)
	assert.Equal(t, "time", backend.uploads[1].name)
}

func TestSetUniformNormalizes(t *testing.T) {
	m := NewMaterial(newFakeBackend())

	tests := []struct {
		name  string
		in    any
		want  any
		valid bool
	}{
		{"bool", true, true, true},
		{"int", 3, int32(3), true},
		{"float64", 0.25, float32(0.25), true},
		{"array", [3]float32{1, 2, 3}, mgl32.Vec3{1, 2, 3}, true},
		{"mat4", mgl32.Ident4(), mgl32.Ident4(), true},
		{"string", "red", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetUniform(tt.name, tt.in)
			got, ok := m.Uniform(tt.name)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	backend := newFakeBackend()
	m := NewMaterial(backend)
	require.NoError(t, m.SetSource("v", "f"))

	m.Release()
	m.Release()

	assert.False(t, m.Ready())
	assert.Len(t, backend.released, 1)
	assert.Empty(t, backend.live)
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{Stage: "vertex", Log: "ERROR: 0:1: 'foo' : undeclared\n\x00"}
	assert.Equal(t, "vertex shader: ERROR: 0:1: 'foo' : undeclared", err.Error())
}
