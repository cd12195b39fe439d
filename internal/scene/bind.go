package scene

import (
	"fmt"

	"github.com/Faultbox/mjscene/pkg/formats"
)

// Dimensions is the pixel size of a loaded image.
type Dimensions struct {
	Width  int
	Height int
}

// findAsset returns the first asset child with the given tag and name.
func (t *Tree) findAsset(tag, name string) NodeID {
	for _, id := range t.Children(t.Assets) {
		n := t.nodes[id]
		if n.Tag() == tag && nodeName(n) == name {
			return id
		}
	}
	return NoNode
}

// FindMesh returns the first mesh asset with the given name.
func (t *Tree) FindMesh(name string) (*Mesh, bool) {
	m, ok := t.Node(t.findAsset(TagMesh, name)).(*Mesh)
	return m, ok
}

// FindMaterial returns the first material asset with the given name.
func (t *Tree) FindMaterial(name string) (*Material, bool) {
	m, ok := t.Node(t.findAsset(TagMaterial, name)).(*Material)
	return m, ok
}

// FindTexture returns the first texture asset with the given name.
func (t *Tree) FindTexture(name string) (*Texture, bool) {
	tex, ok := t.Node(t.findAsset(TagTexture, name)).(*Texture)
	return tex, ok
}

// BindAssets resolves the mesh and material references of every geom
// under the world body, after binding material textures. Binding an
// already bound tree changes nothing.
func BindAssets(t *Tree) error {
	if err := t.bindMaterialTextures(); err != nil {
		return err
	}
	return t.Walk(t.WorldBody, func(id NodeID, _ int) error {
		g, ok := t.nodes[id].(*Geom)
		if !ok {
			return nil
		}
		return t.bindGeom(g)
	})
}

// bindMaterialTextures binds each material to the texture named by its
// texture attribute, or else to a texture of the same name if any.
func (t *Tree) bindMaterialTextures() error {
	for _, id := range t.Children(t.Assets) {
		m, ok := t.nodes[id].(*Material)
		if !ok || m.Texture != NoNode {
			continue
		}
		if m.Attrs.Has("texture") {
			tex := t.findAsset(TagTexture, m.TextureRef)
			if tex == NoNode {
				return assetf(t.Describe(id), "texture %q not found", m.TextureRef)
			}
			m.Texture = tex
			continue
		}
		if name := m.Name(); name != "" {
			m.Texture = t.findAsset(TagTexture, name)
		}
	}
	return nil
}

func (t *Tree) bindGeom(g *Geom) error {
	if g.Kind == GeomMesh {
		if t.Assets == NoNode {
			return assetf(t.Describe(g.ID), "mesh %q referenced without an asset section", g.MeshRef)
		}
		mesh := t.findAsset(TagMesh, g.MeshRef)
		if mesh == NoNode {
			return assetf(t.Describe(g.ID), "mesh %q not found", g.MeshRef)
		}
		g.Mesh = mesh
	}
	if g.Attrs.Has("material") {
		if t.Assets == NoNode {
			return assetf(t.Describe(g.ID), "material %q referenced without an asset section", g.MaterialRef)
		}
		mat := t.findAsset(TagMaterial, g.MaterialRef)
		if mat == NoNode {
			return assetf(t.Describe(g.ID), "material %q not found", g.MaterialRef)
		}
		g.Material = mat
	}
	return nil
}

// ToLoadFiles returns the distinct files referenced by textures and file
// meshes, in document order.
func (t *Tree) ToLoadFiles() []string {
	return t.assetFiles(func(n Node) string {
		switch v := n.(type) {
		case *Texture:
			return v.File
		case *Mesh:
			if v.Source == MeshFile {
				return v.File
			}
		}
		return ""
	})
}

// TextureFiles returns the distinct texture files in document order.
func (t *Tree) TextureFiles() []string {
	return t.assetFiles(func(n Node) string {
		if tex, ok := n.(*Texture); ok {
			return tex.File
		}
		return ""
	})
}

// MeshFiles returns the distinct OBJ files in document order.
func (t *Tree) MeshFiles() []string {
	return t.assetFiles(func(n Node) string {
		if m, ok := n.(*Mesh); ok && m.Source == MeshFile {
			return m.File
		}
		return ""
	})
}

func (t *Tree) assetFiles(file func(Node) string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, id := range t.Children(t.Assets) {
		if f := file(t.nodes[id]); f != "" && !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

// LoadDimensions records image sizes on textures whose file is a key.
func (t *Tree) LoadDimensions(dims map[string]Dimensions) {
	for _, id := range t.Children(t.Assets) {
		if tex, ok := t.nodes[id].(*Texture); ok {
			if d, found := dims[tex.File]; found {
				tex.Width, tex.Height = d.Width, d.Height
			}
		}
	}
}

// LoadFiles records RGB8 pixel data on textures whose file is a key.
func (t *Tree) LoadFiles(pixels map[string][]byte) {
	for _, id := range t.Children(t.Assets) {
		if tex, ok := t.nodes[id].(*Texture); ok {
			if pix, found := pixels[tex.File]; found {
				tex.Pixels = pix
			}
		}
	}
}

// LoadOBJMeshes parses OBJ text into file meshes whose file is a key.
func (t *Tree) LoadOBJMeshes(texts map[string]string) error {
	for _, id := range t.Children(t.Assets) {
		m, ok := t.nodes[id].(*Mesh)
		if !ok || m.Source != MeshFile {
			continue
		}
		text, found := texts[m.File]
		if !found {
			continue
		}
		obj, err := formats.ParseOBJ(text)
		if err != nil {
			return newError(AssetResolutionError, fmt.Sprintf("parse %s", m.File), t.Describe(id), err)
		}
		m.Vertices = obj.Positions
		m.Indices = obj.Indices
	}
	return nil
}
