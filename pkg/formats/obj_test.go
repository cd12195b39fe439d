package formats

import (
	"errors"
	"testing"
)

const cubeOBJ = `# unit cube
o cube
v -1 -1 -1
v -1 -1  1
v -1  1 -1
v -1  1  1
v  1 -1 -1
v  1 -1  1
v  1  1 -1
v  1  1  1
vn 0 0 1
vt 0 0
f 1 2 4 3
f 5 7 8 6
f 1 5 6 2
f 3 4 8 7
f 1 3 7 5
f 2 6 8 4
`

func TestParseOBJ_Cube(t *testing.T) {
	obj, err := ParseOBJ(cubeOBJ)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if obj.VertexCount() != 8 {
		t.Errorf("expected 8 vertices, got %d", obj.VertexCount())
	}
	// 6 quads fan-triangulate into 12 triangles.
	if obj.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", obj.TriangleCount())
	}
	for i, idx := range obj.Indices {
		if int(idx) >= obj.VertexCount() {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}

	if len(obj.Groups) != 1 || obj.Groups[0].Name != "cube" {
		t.Fatalf("expected one group named cube, got %+v", obj.Groups)
	}
	if obj.Groups[0].IndexCount != 36 {
		t.Errorf("expected group index count 36, got %d", obj.Groups[0].IndexCount)
	}
}

func TestParseOBJ_FaceForms(t *testing.T) {
	tests := []struct {
		name string
		face string
		want []uint32
	}{
		{"plain", "f 1 2 3", []uint32{0, 1, 2}},
		{"texcoord", "f 1/1 2/2 3/3", []uint32{0, 1, 2}},
		{"normal only", "f 1//1 2//1 3//1", []uint32{0, 1, 2}},
		{"full", "f 3/1/1 2/2/1 1/3/1", []uint32{2, 1, 0}},
		{"negative", "f -3 -2 -1", []uint32{1, 2, 3}},
		{"quad fan", "f 1 2 3 4", []uint32{0, 1, 2, 0, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseOBJ("v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n" + tt.face + "\n")
			if err != nil {
				t.Fatalf("ParseOBJ failed: %v", err)
			}
			if len(obj.Indices) != len(tt.want) {
				t.Fatalf("indices = %v, want %v", obj.Indices, tt.want)
			}
			for i := range tt.want {
				if obj.Indices[i] != tt.want[i] {
					t.Fatalf("indices = %v, want %v", obj.Indices, tt.want)
				}
			}
		})
	}
}

func TestParseOBJ_Continuation(t *testing.T) {
	obj, err := ParseOBJ("v 0 0 \\\n0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if obj.VertexCount() != 3 {
		t.Errorf("expected 3 vertices, got %d", obj.VertexCount())
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"short vertex", "v 1 2\n", ErrInvalidOBJ},
		{"bad coordinate", "v 1 x 3\n", ErrInvalidOBJ},
		{"bad index", "v 0 0 0\nf a b c\n", ErrInvalidOBJ},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", ErrOBJIndexRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexRange},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrOBJDegenerateFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseOBJ_Groups(t *testing.T) {
	text := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0 0 1\n" +
		"f 1 2 3\n" +
		"g side\nf 1 2 4\nf 1 3 4\n"
	obj, err := ParseOBJ(text)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", obj.Groups)
	}
	if obj.Groups[0].Name != "" || obj.Groups[0].IndexCount != 3 {
		t.Errorf("unexpected leading group %+v", obj.Groups[0])
	}
	if obj.Groups[1].Name != "side" || obj.Groups[1].FirstIndex != 3 || obj.Groups[1].IndexCount != 6 {
		t.Errorf("unexpected side group %+v", obj.Groups[1])
	}
}
