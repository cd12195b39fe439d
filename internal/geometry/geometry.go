// Package geometry generates local-space triangle meshes for scene
// primitives and point clouds.
package geometry

import (
	"github.com/Faultbox/mjscene/pkg/math"
)

// DefaultSegments is the latitude and longitude subdivision of a sphere
// when the caller does not choose one.
const DefaultSegments = 32

// Mesh is an indexed triangle list. Vertices are flat xyz triples.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of xyz triples.
func (m Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// IndicesInRange reports whether every index addresses an existing vertex.
func (m Mesh) IndicesInRange() bool {
	n := uint32(m.VertexCount())
	for _, idx := range m.Indices {
		if idx >= n {
			return false
		}
	}
	return true
}

// Scaled returns a copy of the mesh with every vertex multiplied
// component-wise by s.
func (m Mesh) Scaled(s math.Vec3) Mesh {
	out := Mesh{
		Vertices: append([]float32(nil), m.Vertices...),
		Indices:  m.Indices,
	}
	if s != math.One {
		math.Scale3(s).TransformPoints(out.Vertices, math.Vec3{})
	}
	return out
}

// boxIndices covers the six faces of the corner order used by Box,
// two triangles per face.
var boxIndices = [36]uint32{
	0, 1, 2, 1, 2, 3, // X-
	4, 5, 6, 5, 6, 7, // X+
	0, 1, 4, 1, 4, 5, // Y-
	2, 3, 6, 3, 6, 7, // Y+
	0, 2, 4, 2, 4, 6, // Z-
	1, 3, 5, 3, 5, 7, // Z+
}

// Box returns the 8 corners at pos ± size and the fixed 36-index list.
// Corner i has the sign pattern of the bits of i, x most significant:
// (---, --+, -+-, -++, +--, +-+, ++-, +++).
func Box(pos, size math.Vec3) Mesh {
	vertices := make([]float32, 0, 24)
	for i := 0; i < 8; i++ {
		sx, sy, sz := sign(i&4), sign(i&2), sign(i&1)
		vertices = append(vertices,
			pos.X+sx*size.X,
			pos.Y+sy*size.Y,
			pos.Z+sz*size.Z,
		)
	}
	return Mesh{Vertices: vertices, Indices: append([]uint32(nil), boxIndices[:]...)}
}

func sign(bit int) float32 {
	if bit != 0 {
		return 1
	}
	return -1
}
