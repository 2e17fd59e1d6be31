// Package picking provides ray casting and object picking utilities.
package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glslpad/internal/engine/geometry"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// Hit is a ray/mesh intersection.
type Hit struct {
	Point    mgl32.Vec3
	Distance float32 // Along the ray from its origin
	Face     int
}

// NDC converts surface-local pixel coordinates to normalized device
// coordinates in [-1, 1]. Screen Y grows downward, NDC Y grows upward.
func NDC(screenX, screenY, viewportW, viewportH float32) mgl32.Vec2 {
	return mgl32.Vec2{
		2*screenX/viewportW - 1,
		1 - 2*screenY/viewportH,
	}
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndc := NDC(screenX, screenY, viewportW, viewportH)

	nearWorld := unproject(invViewProj, mgl32.Vec4{ndc.X(), ndc.Y(), -1, 1})
	farWorld := unproject(invViewProj, mgl32.Vec4{ndc.X(), ndc.Y(), 1, 1})

	dir := farWorld.Sub(nearWorld)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}

	return Ray{Origin: nearWorld, Direction: dir}
}

func unproject(inv mgl32.Mat4, clip mgl32.Vec4) mgl32.Vec3 {
	p := inv.Mul4x1(clip)
	if p.W() != 0 {
		return p.Vec3().Mul(1 / p.W())
	}
	return p.Vec3()
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box geometry.Bounds) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			tmin = math32.Max(tmin, t1)
			tmax = math32.Min(tmax, t2)
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle runs Möller–Trumbore against triangle abc.
// Both faces count as hits so models with flipped winding stay pickable.
func (r Ray) IntersectTriangle(a, b, c mgl32.Vec3) (t float32, hit bool) {
	const epsilon = 1e-7

	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if det > -epsilon && det < epsilon {
		return 0, false // Parallel to the triangle plane
	}

	inv := 1 / det
	s := r.Origin.Sub(a)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := inv * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = inv * edge2.Dot(q)
	if t <= epsilon {
		return 0, false // Behind the ray origin
	}
	return t, true
}

// Intersect returns the nearest intersection of r with g.
func Intersect(r Ray, g *geometry.Geometry) (Hit, bool) {
	if g == nil || g.TriangleCount() == 0 {
		return Hit{}, false
	}
	if _, ok := r.IntersectAABB(g.Bounds()); !ok {
		return Hit{}, false
	}

	best := Hit{Distance: math32.MaxFloat32, Face: -1}
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		if t, ok := r.IntersectTriangle(a, b, c); ok && t < best.Distance {
			best.Distance = t
			best.Face = i
		}
	}
	if best.Face < 0 {
		return Hit{}, false
	}

	best.Point = r.At(best.Distance)
	return best, true
}
