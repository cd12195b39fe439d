package geometry

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/mjscene/pkg/math"
)

// ring is one circle of a surface of revolution around the z axis.
type ring struct {
	radius float32
	z      float32
}

// lathe sweeps the rings around the z axis with lon segments each and
// stitches consecutive rings with the sphere quad pattern.
func lathe(center math.Vec3, rings []ring, lon int) Mesh {
	if lon < 3 {
		lon = DefaultSegments
	}

	vertices := make([]float32, 0, len(rings)*lon*3)
	for _, r := range rings {
		for j := 0; j < lon; j++ {
			sinPhi, cosPhi := math32.Sincos(2 * math32.Pi * float32(j) / float32(lon))
			vertices = append(vertices,
				center.X+r.radius*cosPhi,
				center.Y+r.radius*sinPhi,
				center.Z+r.z,
			)
		}
	}
	return Mesh{Vertices: vertices, Indices: sphereIndices(len(rings)-1, lon)}
}

// Cylinder returns a closed cylinder along z. Caps are fans collapsed
// into a ring of radius zero at each end.
func Cylinder(center math.Vec3, radius, halfLength float32, segments int) Mesh {
	return lathe(center, []ring{
		{0, -halfLength},
		{radius, -halfLength},
		{radius, halfLength},
		{0, halfLength},
	}, segments)
}

// Capsule returns a cylinder along z capped by two hemispheres.
func Capsule(center math.Vec3, radius, halfLength float32, segments int) Mesh {
	if segments < 4 {
		segments = DefaultSegments
	}
	half := segments / 2

	rings := make([]ring, 0, 2*(half+1))
	for i := 0; i <= half; i++ {
		s, c := math32.Sincos(math32.Pi / 2 * float32(i) / float32(half))
		rings = append(rings, ring{radius * s, halfLength + radius*c})
	}
	for i := half; i >= 0; i-- {
		s, c := math32.Sincos(math32.Pi / 2 * float32(i) / float32(half))
		rings = append(rings, ring{radius * s, -halfLength - radius*c})
	}
	return lathe(center, rings, segments)
}

// Plane returns a rectangle in the xy plane with the given half extents.
// A zero extent (an infinite plane) is drawn as 1.
func Plane(center math.Vec3, halfX, halfY float32) Mesh {
	if halfX <= 0 {
		halfX = 1
	}
	if halfY <= 0 {
		halfY = 1
	}
	return Mesh{
		Vertices: []float32{
			center.X - halfX, center.Y - halfY, center.Z,
			center.X - halfX, center.Y + halfY, center.Z,
			center.X + halfX, center.Y - halfY, center.Z,
			center.X + halfX, center.Y + halfY, center.Z,
		},
		Indices: []uint32{0, 1, 2, 1, 2, 3},
	}
}
