package scene

import (
	"github.com/Faultbox/mjscene/pkg/math"
)

// Rotation returns the geom's Euler rotation.
func (g *Geom) Rotation() math.Mat3 {
	return math.EulerDegrees(g.Euler)
}

// TransformPoints maps local geom vertices into the parent frame in place:
// v' = R·v + pos.
func (g *Geom) TransformPoints(vertices []float32) {
	g.Rotation().TransformPoints(vertices, g.Pos)
}

// Linear returns A·R·S: the extra rotations (each left-multiplied in the
// order they were added), the Euler rotation, and the scale.
func (b *Body) Linear() math.Mat3 {
	a := math.Identity3()
	for _, r := range b.ExtraRotations {
		a = math.EulerDegrees(r).Mul(a)
	}
	return a.Mul(math.EulerDegrees(b.Euler)).Mul(math.Scale3(b.Scale))
}

// TransformPoints maps vertices expressed in the body frame into the
// parent frame in place: v' = A·R·S·v + pos.
func (b *Body) TransformPoints(vertices []float32) {
	b.Linear().TransformPoints(vertices, b.Pos)
}
