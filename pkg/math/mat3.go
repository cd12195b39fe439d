package math

import "github.com/chewxy/math32"

// Mat3 is a 3x3 matrix in column-major order, matching Mat4's layout.
// Layout: [m0 m3 m6]
//
//	[m1 m4 m7]
//	[m2 m5 m8]
type Mat3 [9]float32

// Identity3 returns a 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mat3FromRows builds a matrix from three rows.
func Mat3FromRows(r0, r1, r2 [3]float32) Mat3 {
	return Mat3{
		r0[0], r1[0], r2[0],
		r0[1], r1[1], r2[1],
		r0[2], r1[2], r2[2],
	}
}

// At returns the element at row r, column c.
func (m Mat3) At(r, c int) float32 {
	return m[c*3+r]
}

// Row returns row r.
func (m Mat3) Row(r int) [3]float32 {
	return [3]float32{m[r], m[3+r], m[6+r]}
}

// Scale3 returns a non-uniform scale matrix.
func Scale3(s Vec3) Mat3 {
	return Mat3{
		s.X, 0, 0,
		0, s.Y, 0,
		0, 0, s.Z,
	}
}

// EulerRotation returns the rotation for angles (rx, ry, rz) in radians.
//
// The entries follow the scene format's own convention rather than a
// generic yaw/pitch/roll helper:
//
//	[cb*cc             cb*sc             -sb  ]
//	[sa*sb*cc - ca*sc  sa*sb*sc + ca*cc  sa*cb]
//	[ca*sb*cc + sa*sc  ca*sb*sc - sa*cc  ca*cb]
//
// with a = rx, b = ry, c = rz.
func EulerRotation(rx, ry, rz float32) Mat3 {
	sa, ca := math32.Sincos(rx)
	sb, cb := math32.Sincos(ry)
	sc, cc := math32.Sincos(rz)

	return Mat3FromRows(
		[3]float32{cb * cc, cb * sc, -sb},
		[3]float32{sa*sb*cc - ca*sc, sa*sb*sc + ca*cc, sa * cb},
		[3]float32{ca*sb*cc + sa*sc, ca*sb*sc - sa*cc, ca * cb},
	)
}

// EulerDegrees is EulerRotation for angles given in degrees.
func EulerDegrees(deg Vec3) Mat3 {
	r := deg.Radians()
	return EulerRotation(r.X, r.Y, r.Z)
}

// Mul returns m * other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += m[k*3+row] * other[col*3+k]
			}
			result[col*3+row] = sum
		}
	}
	return result
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// TransformPoints applies m and then adds offset to every xyz triple in
// points, in place.
func (m Mat3) TransformPoints(points []float32, offset Vec3) {
	for i := 0; i+2 < len(points); i += 3 {
		p := m.MulVec3(Vec3{points[i], points[i+1], points[i+2]}).Add(offset)
		points[i], points[i+1], points[i+2] = p.X, p.Y, p.Z
	}
}
