// Package geometry builds the CPU-side triangle meshes that are rendered and picked.
package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed or non-indexed triangle mesh.
// A Geometry is never mutated after construction; transforms return copies.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32 // nil for non-indexed triangle soups

	bounds Bounds
}

// Triangle is one face of a triangle soup.
type Triangle struct {
	Normal   mgl32.Vec3
	Vertices [3]mgl32.Vec3
}

// New creates a geometry from vertex data and computes its bounds.
// normals may be nil, in which case normals are derived from the faces.
func New(positions, normals []mgl32.Vec3, indices []uint32) *Geometry {
	g := &Geometry{
		Positions: positions,
		Normals:   normals,
		Indices:   indices,
	}
	if len(g.Normals) != len(g.Positions) {
		g.Normals = faceNormals(positions, indices)
	}
	g.bounds = computeBounds(positions)
	return g
}

// FromTriangles builds non-indexed geometry from a triangle soup.
// Triangles with a zero normal get one computed from their winding.
func FromTriangles(tris []Triangle) *Geometry {
	positions := make([]mgl32.Vec3, 0, len(tris)*3)
	normals := make([]mgl32.Vec3, 0, len(tris)*3)

	for _, tri := range tris {
		n := tri.Normal
		if n.Len() < 1e-6 {
			n = faceNormal(tri.Vertices[0], tri.Vertices[1], tri.Vertices[2])
		} else {
			n = n.Normalize()
		}
		for _, v := range tri.Vertices {
			positions = append(positions, v)
			normals = append(normals, n)
		}
	}

	return New(positions, normals, nil)
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// TriangleCount returns the number of faces.
func (g *Geometry) TriangleCount() int {
	if g.Indices != nil {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the corners of face i.
func (g *Geometry) Triangle(i int) (a, b, c mgl32.Vec3) {
	if g.Indices != nil {
		return g.Positions[g.Indices[3*i]], g.Positions[g.Indices[3*i+1]], g.Positions[g.Indices[3*i+2]]
	}
	return g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2]
}

// Bounds returns the axis-aligned bounding box.
func (g *Geometry) Bounds() Bounds {
	return g.bounds
}

// Translated returns a copy moved by offset. Normals and indices are shared.
func (g *Geometry) Translated(offset mgl32.Vec3) *Geometry {
	positions := make([]mgl32.Vec3, len(g.Positions))
	for i, p := range g.Positions {
		positions[i] = p.Add(offset)
	}
	return &Geometry{
		Positions: positions,
		Normals:   g.Normals,
		Indices:   g.Indices,
		bounds:    Bounds{Min: g.bounds.Min.Add(offset), Max: g.bounds.Max.Add(offset)},
	}
}

// Centered returns a copy whose bounding box center is the origin, and the
// offset that was applied.
func (g *Geometry) Centered() (*Geometry, mgl32.Vec3) {
	offset := g.bounds.Center().Mul(-1)
	return g.Translated(offset), offset
}

// Interleaved packs position and normal per vertex for GPU upload.
func (g *Geometry) Interleaved() []float32 {
	out := make([]float32, 0, len(g.Positions)*6)
	for i, p := range g.Positions {
		n := g.Normals[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	return out
}

func faceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// faceNormals averages face normals onto shared vertices.
func faceNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	idx := func(i int) uint32 { return uint32(i) }
	count := len(positions)
	if indices != nil {
		idx = func(i int) uint32 { return indices[i] }
		count = len(indices)
	}

	for i := 0; i+2 < count; i += 3 {
		ia, ib, ic := idx(i), idx(i+1), idx(i+2)
		n := faceNormal(positions[ia], positions[ib], positions[ic])
		normals[ia] = normals[ia].Add(n)
		normals[ib] = normals[ib].Add(n)
		normals[ic] = normals[ic].Add(n)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	return normals
}
