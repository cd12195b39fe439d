package geometry

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/mjscene/pkg/math"
)

// Sphere returns a UV sphere of the given radius around center.
//
// Vertex (i, j) sits at theta = pi*i/lat, phi = 2*pi*j/lon for i in
// [0, lat] and j in [0, lon), with y as the polar axis. Longitude wraps;
// latitude does not, so both poles are repeated lon times.
func Sphere(center math.Vec3, radius float32, lat, lon int) Mesh {
	return Ellipsoid(center, math.Vec3{X: radius, Y: radius, Z: radius}, lat, lon)
}

// Ellipsoid is Sphere with a separate radius per axis.
func Ellipsoid(center, radii math.Vec3, lat, lon int) Mesh {
	if lat < 1 {
		lat = DefaultSegments
	}
	if lon < 3 {
		lon = DefaultSegments
	}

	vertices := make([]float32, 0, (lat+1)*lon*3)
	for i := 0; i <= lat; i++ {
		sinTheta, cosTheta := math32.Sincos(math32.Pi * float32(i) / float32(lat))
		for j := 0; j < lon; j++ {
			sinPhi, cosPhi := math32.Sincos(2 * math32.Pi * float32(j) / float32(lon))
			vertices = append(vertices,
				center.X+radii.X*sinTheta*cosPhi,
				center.Y+radii.Y*cosTheta,
				center.Z+radii.Z*sinTheta*sinPhi,
			)
		}
	}

	return Mesh{Vertices: vertices, Indices: sphereIndices(lat, lon)}
}

func sphereIndices(lat, lon int) []uint32 {
	indices := make([]uint32, 0, lat*lon*6)
	for i := 0; i < lat; i++ {
		for j := 0; j < lon; j++ {
			first := uint32(i*lon + j)
			firstNext := uint32(i*lon + (j+1)%lon)
			second := first + uint32(lon)
			secondNext := firstNext + uint32(lon)

			indices = append(indices,
				first, firstNext, second,
				firstNext, second, secondNext,
			)
		}
	}
	return indices
}
