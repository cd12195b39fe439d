// Package drawable holds render-ready meshes and merges them into one
// index-renumbered collection with a per-mesh draw map.
package drawable

import (
	"errors"
	"fmt"
)

// ErrFillingMismatch is returned when a mesh's filling does not have one
// entry per vertex.
var ErrFillingMismatch = errors.New("filling length does not match vertex count")

// ErrIndexRange is returned when a mesh index addresses a missing vertex.
var ErrIndexRange = errors.New("mesh index out of range")

// Stride is the number of floats per interleaved vertex:
// position (3), color (3), texture coordinate (3).
const Stride = 9

// FallbackColor tints vertices of meshes without any filling.
var FallbackColor = [3]float32{209.0 / 255.0, 180.0 / 255.0, 50.0 / 255.0}

// FillingKind selects what a filling's per-vertex values mean.
type FillingKind int

const (
	FillColor FillingKind = iota + 1
	FillUV
	FillCube
)

// String returns the filling kind name.
func (k FillingKind) String() string {
	switch k {
	case FillColor:
		return "color"
	case FillUV:
		return "uv"
	case FillCube:
		return "cube"
	default:
		return fmt.Sprintf("FillingKind(%d)", int(k))
	}
}

// Filling is the non-positional per-vertex attribute of a mesh: a solid
// color, a 2D texture coordinate, or a cube-map direction.
type Filling struct {
	Kind   FillingKind
	Values []float32 // Width() floats per vertex
}

// Width returns the floats per vertex for the filling kind.
func (f *Filling) Width() int {
	if f.Kind == FillUV {
		return 2
	}
	return 3
}

// Len returns the number of vertices the filling covers.
func (f *Filling) Len() int {
	return len(f.Values) / f.Width()
}

// At returns the color and texture coordinate for vertex i as written to
// the interleaved buffer.
func (f *Filling) At(i int) (color, tex [3]float32) {
	w := f.Width()
	v := f.Values[i*w : i*w+w]
	switch f.Kind {
	case FillColor:
		return [3]float32{v[0], v[1], v[2]}, tex
	case FillUV:
		return [3]float32{1, 1, 1}, [3]float32{v[0], v[1], 0}
	default:
		return [3]float32{1, 1, 1}, [3]float32{v[0], v[1], v[2]}
	}
}

// ColorFilling repeats one color for n vertices.
func ColorFilling(n int, rgb [3]float32) *Filling {
	values := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		values = append(values, rgb[0], rgb[1], rgb[2])
	}
	return &Filling{Kind: FillColor, Values: values}
}

// TextureKind is how a bound texture is sampled.
type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
	TextureSkybox
)

// String returns the name used in scene documents.
func (k TextureKind) String() string {
	switch k {
	case Texture2D:
		return "2d"
	case TextureCube:
		return "cube"
	case TextureSkybox:
		return "skybox"
	default:
		return fmt.Sprintf("TextureKind(%d)", int(k))
	}
}

// IsCubeMap reports whether the texture is sampled with a direction.
func (k TextureKind) IsCubeMap() bool {
	return k == TextureCube || k == TextureSkybox
}

// CubeFaceOrder lists the face letters uploaded to the cube-map targets
// +X, -X, +Y, -Y, +Z, -Z in that order.
const CubeFaceOrder = "LRDUFB"

// Image is an RGB8 pixel buffer.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// Texture is a texture payload handed to the renderer with its meshes.
type Texture struct {
	Name  string
	Kind  TextureKind
	Image Image
	Faces []Image // cube maps only, in CubeFaceOrder
}

// Mesh is one renderable unit.
type Mesh struct {
	Name     string
	Vertices []float32 // xyz triples
	Indices  []uint32
	Filling  *Filling
	Texture  *Texture
}

// VertexCount returns the number of xyz triples.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// Validate checks index range and filling length.
func (m *Mesh) Validate() error {
	n := m.VertexCount()
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: mesh %q index %d = %d, %d vertices", ErrIndexRange, m.Name, i, idx, n)
		}
	}
	if m.Filling != nil && m.Filling.Len() != n {
		return fmt.Errorf("%w: mesh %q has %d fillings for %d vertices", ErrFillingMismatch, m.Name, m.Filling.Len(), n)
	}
	return nil
}

// appendInterleaved writes the mesh's vertices at Stride floats each.
func (m *Mesh) appendInterleaved(dst []float32) []float32 {
	for i := 0; i < m.VertexCount(); i++ {
		dst = append(dst, m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
		if m.Filling == nil {
			dst = append(dst, FallbackColor[0], FallbackColor[1], FallbackColor[2], 0, 0, 0)
			continue
		}
		color, tex := m.Filling.At(i)
		dst = append(dst, color[0], color[1], color[2], tex[0], tex[1], tex[2])
	}
	return dst
}
