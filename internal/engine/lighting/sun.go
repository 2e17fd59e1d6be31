// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformLightDirection is the uniform fed with SunDirection.
const UniformLightDirection = "lightDirection"

// SunDirection converts azimuth/elevation angles in degrees to a unit
// vector pointing towards the light. Z is up; azimuth 0 points along -Y,
// towards the default camera, and grows counter-clockwise seen from above.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := mgl32.DegToRad(azimuth)
	el := mgl32.DegToRad(mgl32.Clamp(elevation, -90, 90))

	return mgl32.Vec3{
		math32.Cos(el) * math32.Sin(az),
		-math32.Cos(el) * math32.Cos(az),
		math32.Sin(el),
	}
}
