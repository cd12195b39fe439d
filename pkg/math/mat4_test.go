package math

import (
	"math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity()[%d] = %f, want %f", i, m[i], want)
		}
	}

	p := Vec3{1, 2, 3}
	if got := m.TransformVec3(p); got != p {
		t.Errorf("Identity().TransformVec3(%v) = %v", p, got)
	}
}

func TestRotateX(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"up becomes y", Vec3{0, 0, 1}, Vec3{0, 1, 0}},
		{"y becomes down", Vec3{0, 1, 0}, Vec3{0, 0, -1}},
		{"x unchanged", Vec3{1, 0, 0}, Vec3{1, 0, 0}},
	}

	m := RotateX(-math.Pi / 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.TransformVec3(tt.in)
			if abs(p.X-tt.want.X) > 1e-6 || abs(p.Y-tt.want.Y) > 1e-6 || abs(p.Z-tt.want.Z) > 1e-6 {
				t.Errorf("RotateX(-90) * %v = %v, want %v", tt.in, p, tt.want)
			}
		})
	}
}

func TestMul(t *testing.T) {
	quarter := RotateX(-math.Pi / 2)

	result := quarter.Mul(Identity())
	if result != quarter {
		t.Errorf("M * I = %v, want %v", result, quarter)
	}

	// Four quarter turns come back to the start.
	full := quarter.Mul(quarter).Mul(quarter).Mul(quarter)
	p := full.TransformVec3(Vec3{0, 2, 3})
	if abs(p.Y-2) > 1e-5 || abs(p.Z-3) > 1e-5 {
		t.Errorf("four quarter turns * (0,2,3) = %v", p)
	}
}
