package picking

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glslpad/internal/engine/camera"
	"github.com/Faultbox/glslpad/internal/engine/geometry"
)

// Uniform names fed by the pipeline.
const (
	UniformPoint  = "point"
	UniformIsOver = "isOver"
)

// Target is a mesh the pointer can hover.
type Target interface {
	Renderable() bool
	Geometry() *geometry.Geometry
	SetUniform(name string, value any)
}

// PointerState is the last pointer result. It is derived every update.
type PointerState struct {
	Point  mgl32.Vec3
	IsOver bool
}

// Pipeline turns pointer positions into hit state for the active camera.
type Pipeline struct {
	cameras *camera.Store
	state   PointerState
}

// NewPipeline creates a pipeline reading the camera from store.
func NewPipeline(store *camera.Store) *Pipeline {
	return &Pipeline{cameras: store}
}

// State returns the last computed pointer state.
func (p *Pipeline) State() PointerState {
	return p.state
}

// Update casts a ray through pixel (px, py) of a w×h surface against target
// and mirrors the result into the target's uniforms.
// A missing target or camera is a normal transient state: the pointer is
// reported as not over and the previous point is kept.
func (p *Pipeline) Update(px, py, w, h float32, target Target) PointerState {
	p.state.IsOver = false

	if target == nil || !target.Renderable() {
		return p.state
	}
	cam := p.cameras.Get()
	if cam == nil || w <= 0 || h <= 0 {
		return p.state
	}

	inv := cam.ViewProjection(w, h).Inv()
	ray := ScreenToRay(px, py, w, h, inv)
	if hit, ok := Intersect(ray, target.Geometry()); ok {
		p.state.Point = hit.Point
		p.state.IsOver = true
	}

	target.SetUniform(UniformPoint, p.state.Point)
	target.SetUniform(UniformIsOver, p.state.IsOver)
	return p.state
}

// Leave marks the pointer as outside the surface.
func (p *Pipeline) Leave(target Target) PointerState {
	p.state.IsOver = false
	if target != nil && target.Renderable() {
		target.SetUniform(UniformIsOver, false)
	}
	return p.state
}
