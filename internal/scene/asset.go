package scene

import (
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/pkg/encoding"
	"github.com/Faultbox/mjscene/pkg/math"
)

func errInlineVertexCount(n int) error {
	return errors.Errorf("vertex needs xyz triples, got %d values", n)
}

// MeshSource says where a mesh asset's points come from.
type MeshSource int

const (
	// MeshInline meshes list their points in the vertex attribute and are
	// rendered as the convex hull of those points.
	MeshInline MeshSource = iota
	// MeshFile meshes are loaded from an OBJ file and rendered as-is.
	MeshFile
)

// assetName returns the explicit name, or the file stem when unnamed.
func assetName(attrs Attrs, name, file string) string {
	if attrs.Has("name") {
		return name
	}
	if file != "" {
		return encoding.Stem(file)
	}
	return ""
}

// Mesh is a mesh asset.
type Mesh struct {
	NodeBase
	name   string
	Source MeshSource
	File   string
	Inline []float32
	Scale  math.Vec3
	// Loaded from File.
	Vertices []float32
	Indices  []uint32
}

// NewMesh returns an empty inline mesh with unit scale.
func NewMesh() *Mesh {
	return &Mesh{Scale: math.One}
}

func (m *Mesh) Tag() string           { return TagMesh }
func (m *Mesh) AcceptsChildren() bool { return false }

// Name returns the mesh name, falling back to the file stem.
func (m *Mesh) Name() string { return assetName(m.Attrs, m.name, m.File) }

// Loaded reports whether a file mesh has received its content.
func (m *Mesh) Loaded() bool {
	return m.Source == MeshInline || len(m.Vertices) > 0
}

func (m *Mesh) SetAttr(key, value string) (bool, error) {
	if m.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "name":
		m.name = value
	case "file":
		m.Source = MeshFile
		m.File = encoding.NormalizePath(value)
	case "vertex":
		vals, err := parseFloats(value, 0)
		if err != nil {
			return false, err
		}
		if len(vals)%3 != 0 {
			return false, errInlineVertexCount(len(vals))
		}
		m.Source = MeshInline
		m.Inline = vals
	case "scale":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		m.Scale = v
	default:
		return false, nil
	}
	return m.set(key, value), nil
}

// TextureType is the texture attribute's type value.
type TextureType = drawable.TextureKind

// Texture is a texture asset. Cube and skybox textures pack their six
// faces into a grid described by GridRows, GridCols and GridLayout.
type Texture struct {
	NodeBase
	name       string
	File       string
	Type       TextureType
	GridRows   int
	GridCols   int
	GridLayout string
	RGB1       math.Vec3
	// Loaded from File.
	Width  int
	Height int
	Pixels []byte // RGB8, row-major
}

// NewTexture returns a 1x1 grid cube texture.
func NewTexture() *Texture {
	return &Texture{
		Type:     drawable.TextureCube,
		GridRows: 1,
		GridCols: 1,
		RGB1:     math.Vec3{X: 0.5, Y: 0.4, Z: 0.3},
	}
}

func (t *Texture) Tag() string           { return TagTexture }
func (t *Texture) AcceptsChildren() bool { return false }

// Name returns the texture name, falling back to the file stem.
func (t *Texture) Name() string { return assetName(t.Attrs, t.name, t.File) }

func (t *Texture) SetAttr(key, value string) (bool, error) {
	if t.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "name":
		t.name = value
	case "file":
		t.File = encoding.NormalizePath(value)
	case "type":
		switch strings.ToLower(value) {
		case "2d":
			t.Type = drawable.Texture2D
		case "skybox":
			t.Type = drawable.TextureSkybox
		default:
			t.Type = drawable.TextureCube
		}
	case "gridsize":
		vals, err := parseInts(value, 2)
		if err != nil {
			return false, err
		}
		t.GridRows, t.GridCols = vals[0], vals[1]
	case "gridlayout":
		t.GridLayout = value
	case "rgb1":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		t.RGB1 = v
	default:
		return false, nil
	}
	return t.set(key, value), nil
}

// cellSize returns the size of one grid cell.
func (t *Texture) cellSize() (w, h int) {
	return t.Width / t.GridCols, t.Height / t.GridRows
}

// CubeFace returns the RGB8 pixels of one cube face. The face letter's
// position in GridLayout selects the grid cell, counted row-major. A
// letter missing from the layout, a position outside the grid, or a
// texture without pixel data yields one cell of the RGB1 color.
func (t *Texture) CubeFace(face byte) (w, h int, pix []byte) {
	w, h = t.cellSize()
	pos := strings.IndexByte(t.GridLayout, face)
	if pos < 0 || pos >= t.GridRows*t.GridCols || len(t.Pixels) < t.Width*t.Height*3 {
		return w, h, t.fill(w * h)
	}

	row, col := pos/t.GridCols, pos%t.GridCols
	x0, y0 := col*w, row*h
	pix = make([]byte, 0, w*h*3)
	for y := y0; y < y0+h; y++ {
		start := (y*t.Width + x0) * 3
		pix = append(pix, t.Pixels[start:start+w*3]...)
	}
	return w, h, pix
}

func (t *Texture) fill(n int) []byte {
	r, g, b := byte(t.RGB1.X*256), byte(t.RGB1.Y*256), byte(t.RGB1.Z*256)
	pix := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		pix = append(pix, r, g, b)
	}
	return pix
}

// Drawable converts the texture into the payload handed to the renderer.
// Cube maps carry their six faces in drawable.CubeFaceOrder.
func (t *Texture) Drawable() *drawable.Texture {
	out := &drawable.Texture{
		Name:  t.Name(),
		Kind:  t.Type,
		Image: drawable.Image{Width: t.Width, Height: t.Height, Pix: t.Pixels},
	}
	if t.Type.IsCubeMap() {
		out.Faces = make([]drawable.Image, 0, len(drawable.CubeFaceOrder))
		for i := 0; i < len(drawable.CubeFaceOrder); i++ {
			w, h, pix := t.CubeFace(drawable.CubeFaceOrder[i])
			out.Faces = append(out.Faces, drawable.Image{Width: w, Height: h, Pix: pix})
		}
	}
	return out
}

// Material is a material asset. It colors geoms either with a solid rgba
// or with a bound texture.
type Material struct {
	NodeBase
	name       string
	RGBA       [4]float32
	TextureRef string
	// Bound by BindAssets.
	Texture NodeID
}

// NewMaterial returns an unbound white material.
func NewMaterial() *Material {
	return &Material{RGBA: [4]float32{1, 1, 1, 1}, Texture: NoNode}
}

func (m *Material) Tag() string           { return TagMaterial }
func (m *Material) AcceptsChildren() bool { return false }

// Name returns the material name.
func (m *Material) Name() string { return m.name }

// HasColor reports whether rgba was set.
func (m *Material) HasColor() bool { return m.Attrs.Has("rgba") }

func (m *Material) SetAttr(key, value string) (bool, error) {
	if m.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "name":
		m.name = value
	case "rgba":
		vals, err := parseFloats(value, 4)
		if err != nil {
			return false, err
		}
		copy(m.RGBA[:], vals)
	case "texture":
		m.TextureRef = value
	default:
		return false, nil
	}
	return m.set(key, value), nil
}

// Filling computes per-vertex attributes for local-space vertices drawn
// with this material. tex is the bound texture, or nil. Cube-mapped
// textures use vertex directions from the centroid, 2d textures use a
// spherical projection of those directions, and untextured materials
// with rgba use a solid color. Otherwise the result is nil.
func (m *Material) Filling(vertices []float32, tex *Texture) *drawable.Filling {
	n := len(vertices) / 3
	switch {
	case tex != nil && tex.Type.IsCubeMap():
		return &drawable.Filling{Kind: drawable.FillCube, Values: recentered(vertices)}
	case tex != nil:
		centered := recentered(vertices)
		uv := make([]float32, 0, n*2)
		for i := 0; i < n; i++ {
			u, v := sphericalUV(math.V3(centered[i*3 : i*3+3]))
			uv = append(uv, u, v)
		}
		return &drawable.Filling{Kind: drawable.FillUV, Values: uv}
	case m.HasColor():
		return drawable.ColorFilling(n, [3]float32{m.RGBA[0], m.RGBA[1], m.RGBA[2]})
	}
	return nil
}

// recentered returns vertices shifted so their centroid is the origin.
func recentered(vertices []float32) []float32 {
	n := len(vertices) / 3
	out := make([]float32, n*3)
	if n == 0 {
		return out
	}
	var c math.Vec3
	for i := 0; i < n; i++ {
		c = c.Add(math.V3(vertices[i*3 : i*3+3]))
	}
	c = c.Scale(1 / float32(n))
	for i := 0; i < n; i++ {
		out[i*3] = vertices[i*3] - c.X
		out[i*3+1] = vertices[i*3+1] - c.Y
		out[i*3+2] = vertices[i*3+2] - c.Z
	}
	return out
}

// sphericalUV maps a direction to equirectangular texture coordinates
// with y up.
func sphericalUV(d math.Vec3) (u, v float32) {
	l := d.Length()
	if l == 0 {
		return 0.5, 0.5
	}
	y := math32.Max(-1, math32.Min(1, d.Y/l))
	u = 0.5 + math32.Atan2(d.Z, d.X)/(2*math32.Pi)
	v = 0.5 - math32.Asin(y)/math32.Pi
	return u, v
}
