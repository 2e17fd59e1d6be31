package shader

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/logger"
)

// Material is a shader program plus the uniform values it should see.
//
// The uniform bag outlives programs: every rebuild receives the whole bag,
// and every SetUniform on a live program is mirrored into it immediately.
type Material struct {
	backend  Backend
	vertex   string
	fragment string
	program  uint32
	ready    bool
	uniforms map[string]any
}

// NewMaterial creates a material with no program.
func NewMaterial(backend Backend) *Material {
	return &Material{
		backend:  backend,
		uniforms: make(map[string]any),
	}
}

// Source returns the text of the current (or last attempted) program.
func (m *Material) Source() (vertex, fragment string) {
	return m.vertex, m.fragment
}

// SetSource releases the current program and builds a new one.
// On failure the material holds no program until the next successful call.
func (m *Material) SetSource(vertex, fragment string) error {
	m.Release()
	m.vertex, m.fragment = vertex, fragment

	program, err := m.backend.Compile(vertex, fragment)
	if err != nil {
		logger.Named("shader").Error("program build failed", zap.Error(err))
		return fmt.Errorf("build program: %w", err)
	}
	m.program = program
	m.ready = true

	for _, name := range m.uniformNames() {
		m.upload(name, m.uniforms[name])
	}
	logger.Named("shader").Debug("program built",
		zap.Uint32("program", program),
		zap.Int("uniforms", len(m.uniforms)))
	return nil
}

// SetUniform stores value in the bag and mirrors it into the live program.
// Supported values are bool, int32, float32, mgl32.Vec3 and mgl32.Mat4;
// int and float64 are narrowed.
func (m *Material) SetUniform(name string, value any) {
	v, ok := normalize(value)
	if !ok {
		logger.Named("shader").Warn("unsupported uniform value",
			zap.String("name", name),
			zap.String("type", fmt.Sprintf("%T", value)))
		return
	}

	if old, exists := m.uniforms[name]; exists && old == v {
		return
	}
	m.uniforms[name] = v

	if m.ready {
		m.upload(name, v)
	}
}

// Uniform returns the bag value for name.
func (m *Material) Uniform(name string) (any, bool) {
	v, ok := m.uniforms[name]
	return v, ok
}

// Program returns the live program handle, or 0.
func (m *Material) Program() uint32 {
	return m.program
}

// Ready reports whether a program is built.
func (m *Material) Ready() bool {
	return m.ready
}

// Release frees the program. The uniform bag is kept.
func (m *Material) Release() {
	if !m.ready {
		return
	}
	m.backend.Release(m.program)
	m.program = 0
	m.ready = false
}

func (m *Material) upload(name string, value any) {
	if err := m.backend.Upload(m.program, name, value); err != nil {
		logger.Named("shader").Warn("uniform upload failed",
			zap.String("name", name), zap.Error(err))
	}
}

// uniformNames returns bag keys in a stable order.
func (m *Material) uniformNames() []string {
	names := make([]string, 0, len(m.uniforms))
	for name := range m.uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(value any) (any, bool) {
	switch v := value.(type) {
	case bool, int32, float32, mgl32.Vec3, mgl32.Mat4:
		return v, true
	case int:
		return int32(v), true
	case float64:
		return float32(v), true
	case [3]float32:
		return mgl32.Vec3(v), true
	default:
		return nil, false
	}
}
