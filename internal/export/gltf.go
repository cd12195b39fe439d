// Package export writes compiled scenes as glTF 2.0.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/pkg/math"
)

// ErrEmptyImage is returned when a texture has no pixel data to encode.
var ErrEmptyImage = errors.New("image has no pixel data")

// RootName names the node that turns the z-up scene into glTF's y-up
// frame. Every mesh node is its child.
const RootName = "scene"

// Document builds a glTF document with one mesh per draw call. Colour
// fillings become COLOR_0, 2d textures become an embedded PNG sampled
// with TEXCOORD_0, and meshes without a usable filling get a material
// in the fallback colour.
func Document(c *drawable.Collection) (*gltf.Document, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	b := &builder{
		doc:      gltf.NewDocument(),
		textures: make(map[string]uint32),
	}
	b.doc.Asset.Generator = "mjscene"

	root := &gltf.Node{Name: RootName, Matrix: [16]float32(math.RotateX(-math32.Pi / 2))}
	for _, m := range c.Meshes {
		node, err := b.mesh(m)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %s", m.Name)
		}
		root.Children = append(root.Children, node)
	}
	b.doc.Nodes = append(b.doc.Nodes, root)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, uint32(len(b.doc.Nodes)-1))
	return b.doc, nil
}

// Write encodes the collection as GLB when binary is set, otherwise as
// glTF JSON with the buffer embedded as a data URI.
func Write(w io.Writer, c *drawable.Collection, binary bool) error {
	doc, err := Document(c)
	if err != nil {
		return err
	}
	if !binary {
		for _, buf := range doc.Buffers {
			buf.EmbeddedResource()
		}
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding gltf")
	}
	return nil
}

// WriteFile writes the collection to path. A .glb extension selects
// the binary container.
func WriteFile(path string, c *drawable.Collection) error {
	binary := strings.EqualFold(filepath.Ext(path), ".glb")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := Write(f, c, binary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type builder struct {
	doc *gltf.Document
	// textures maps a texture name to its glTF texture index.
	textures map[string]uint32
	fallback *uint32
}

func (b *builder) mesh(m *drawable.Mesh) (uint32, error) {
	n := m.VertexCount()
	positions := make([][3]float32, n)
	for i := range positions {
		positions[i] = [3]float32{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
	}
	attrs := map[string]uint32{
		"POSITION": modeler.WritePosition(b.doc, positions),
	}
	indices := modeler.WriteIndices(b.doc, append([]uint32(nil), m.Indices...))

	var material uint32
	switch {
	case m.Filling != nil && m.Filling.Kind == drawable.FillColor:
		colors := make([][4]uint8, n)
		for i := range colors {
			c, _ := m.Filling.At(i)
			colors[i] = [4]uint8{unorm8(c[0]), unorm8(c[1]), unorm8(c[2]), 0xff}
		}
		attrs["COLOR_0"] = modeler.WriteColor(b.doc, colors)
		material = b.vertexColorMaterial()
	case m.Filling != nil && m.Filling.Kind == drawable.FillUV && m.Texture != nil && len(m.Texture.Image.Pix) > 0:
		uvs := make([][2]float32, n)
		for i := range uvs {
			_, tex := m.Filling.At(i)
			uvs[i] = [2]float32{tex[0], tex[1]}
		}
		attrs["TEXCOORD_0"] = modeler.WriteTextureCoord(b.doc, uvs)
		idx, err := b.texturedMaterial(m.Texture)
		if err != nil {
			return 0, err
		}
		material = idx
	default:
		material = b.fallbackMaterial()
	}

	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{
		Name: m.Name,
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    gltf.Index(indices),
			Material:   gltf.Index(material),
		}},
	})
	b.doc.Nodes = append(b.doc.Nodes, &gltf.Node{
		Name: m.Name,
		Mesh: gltf.Index(uint32(len(b.doc.Meshes) - 1)),
	})
	return uint32(len(b.doc.Nodes) - 1), nil
}

// unorm8 maps [0,1] to a byte, clamping.
func unorm8(v float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, v)) * 255))
}

func (b *builder) addMaterial(mat *gltf.Material) uint32 {
	b.doc.Materials = append(b.doc.Materials, mat)
	return uint32(len(b.doc.Materials) - 1)
}

func (b *builder) vertexColorMaterial() uint32 {
	return b.addMaterial(&gltf.Material{
		Name:                 "vertex-color",
		DoubleSided:          true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{1, 1, 1, 1}},
	})
}

func (b *builder) fallbackMaterial() uint32 {
	if b.fallback != nil {
		return *b.fallback
	}
	fc := drawable.FallbackColor
	idx := b.addMaterial(&gltf.Material{
		Name:                 "fallback",
		DoubleSided:          true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float32{fc[0], fc[1], fc[2], 1}},
	})
	b.fallback = &idx
	return idx
}

func (b *builder) texturedMaterial(tex *drawable.Texture) (uint32, error) {
	ti, ok := b.textures[tex.Name]
	if !ok {
		data, err := PNG(tex.Image)
		if err != nil {
			return 0, errors.Wrapf(err, "texture %s", tex.Name)
		}
		img, err := modeler.WriteImage(b.doc, tex.Name, "image/png", bytes.NewReader(data))
		if err != nil {
			return 0, errors.Wrapf(err, "writing image %s", tex.Name)
		}
		b.doc.Samplers = append(b.doc.Samplers, &gltf.Sampler{
			Name:      tex.Name + "_sampler",
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapRepeat,
		})
		b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
			Name:    tex.Name,
			Sampler: gltf.Index(uint32(len(b.doc.Samplers) - 1)),
			Source:  gltf.Index(img),
		})
		ti = uint32(len(b.doc.Textures) - 1)
		b.textures[tex.Name] = ti
	}
	return b.addMaterial(&gltf.Material{
		Name:        fmt.Sprintf("%s-material", tex.Name),
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{1, 1, 1, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: ti},
		},
	}), nil
}

// PNG encodes an RGB8 image.
func PNG(img drawable.Image) ([]byte, error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) < img.Width*img.Height*3 {
		return nil, ErrEmptyImage
	}
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < img.Width*img.Height; i++ {
		out.Pix[i*4] = img.Pix[i*3]
		out.Pix[i*4+1] = img.Pix[i*3+1]
		out.Pix[i*4+2] = img.Pix[i*3+2]
		out.Pix[i*4+3] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, errors.Wrap(err, "encoding png")
	}
	return buf.Bytes(), nil
}
