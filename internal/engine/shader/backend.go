package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Backend owns GPU programs on behalf of a Material.
type Backend interface {
	Compile(vertexSrc, fragmentSrc string) (uint32, error)
	Release(program uint32)
	Upload(program uint32, name string, value any) error
}

// GLBackend implements Backend on the current OpenGL context.
// Uniforms are written with glProgramUniform* so the program does not
// need to be bound.
type GLBackend struct {
	locations map[uint32]map[string]int32
}

// NewGLBackend creates a backend. A GL context must be current.
func NewGLBackend() *GLBackend {
	return &GLBackend{locations: make(map[uint32]map[string]int32)}
}

// Compile compiles and links a program.
func (b *GLBackend) Compile(vertexSrc, fragmentSrc string) (uint32, error) {
	program, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	b.locations[program] = make(map[string]int32)
	return program, nil
}

// Release deletes the program and forgets its cached locations.
func (b *GLBackend) Release(program uint32) {
	if program == 0 {
		return
	}
	gl.DeleteProgram(program)
	delete(b.locations, program)
}

// Upload writes value into the named uniform of program.
// Uniforms the driver optimized away are silently skipped.
func (b *GLBackend) Upload(program uint32, name string, value any) error {
	loc := b.location(program, name)
	if loc < 0 {
		return nil
	}

	switch v := value.(type) {
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.ProgramUniform1i(program, loc, i)
	case int32:
		gl.ProgramUniform1i(program, loc, v)
	case float32:
		gl.ProgramUniform1f(program, loc, v)
	case mgl32.Vec3:
		gl.ProgramUniform3f(program, loc, v[0], v[1], v[2])
	case mgl32.Mat4:
		gl.ProgramUniformMatrix4fv(program, loc, 1, false, &v[0])
	default:
		return fmt.Errorf("uniform %q: unsupported type %T", name, value)
	}
	return nil
}

func (b *GLBackend) location(program uint32, name string) int32 {
	cache, ok := b.locations[program]
	if !ok {
		cache = make(map[string]int32)
		b.locations[program] = cache
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	cache[name] = loc
	return loc
}
