package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Empty reports whether the box contains no points.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

func computeBounds(points []mgl32.Vec3) Bounds {
	b := Bounds{
		Min: mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)},
		Max: mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)},
	}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			b.Min[i] = math32.Min(b.Min[i], p[i])
			b.Max[i] = math32.Max(b.Max[i], p[i])
		}
	}
	return b
}
