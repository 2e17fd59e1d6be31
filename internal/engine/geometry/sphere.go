package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere builds a UV sphere centered at the origin with its poles on the Y axis.
// Vertex order and winding follow the common three.js layout so shaders
// written against it see the same attribute data.
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	positions := make([]mgl32.Vec3, 0, (widthSegments+1)*(heightSegments+1))
	normals := make([]mgl32.Vec3, 0, cap(positions))
	grid := make([][]uint32, heightSegments+1)

	var index uint32
	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		theta := v * math32.Pi
		sinTheta, cosTheta := math32.Sincos(theta)

		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			sinPhi, cosPhi := math32.Sincos(phi)

			p := mgl32.Vec3{
				-radius * cosPhi * sinTheta,
				radius * cosTheta,
				radius * sinPhi * sinTheta,
			}
			positions = append(positions, p)
			normals = append(normals, p.Normalize())

			row[ix] = index
			index++
		}
		grid[iy] = row
	}

	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			// Pole rows collapse to a single point; skip their degenerate half.
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return New(positions, normals, indices)
}
