package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/geometry"
	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/pkg/math"
)

// Options tunes primitive tessellation.
type Options struct {
	SphereSegments   int
	CylinderSegments int
}

// DefaultOptions returns 32 segments for round primitives.
func DefaultOptions() Options {
	return Options{
		SphereSegments:   geometry.DefaultSegments,
		CylinderSegments: geometry.DefaultSegments,
	}
}

// Geometries generates every geom under the world body, composes the
// body transforms above it, and returns the meshes in document order.
// The tree is not modified, so it may be called again after the tree
// changes.
func (t *Tree) Geometries(opts Options) (*drawable.Collection, error) {
	if opts.SphereSegments <= 0 {
		opts.SphereSegments = geometry.DefaultSegments
	}
	if opts.CylinderSegments <= 0 {
		opts.CylinderSegments = geometry.DefaultSegments
	}
	gen := &generator{
		tree:     t,
		opts:     opts,
		textures: make(map[NodeID]*drawable.Texture),
		log:      logger.Named("scene"),
	}

	c := &drawable.Collection{}
	for _, id := range t.Children(t.WorldBody) {
		meshes, err := gen.node(id)
		if err != nil {
			return nil, err
		}
		c.Append(meshes...)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

type generator struct {
	tree     *Tree
	opts     Options
	textures map[NodeID]*drawable.Texture
	log      *zap.Logger
}

func (g *generator) node(id NodeID) ([]*drawable.Mesh, error) {
	switch n := g.tree.nodes[id].(type) {
	case *Body:
		return g.body(n)
	case *Geom:
		m, err := g.geom(n)
		if err != nil || m == nil {
			return nil, err
		}
		return []*drawable.Mesh{m}, nil
	}
	return nil, nil
}

// body collects the meshes of its children, already in the body frame,
// and moves them into the parent frame.
func (g *generator) body(b *Body) ([]*drawable.Mesh, error) {
	var meshes []*drawable.Mesh
	for _, c := range b.Children {
		ms, err := g.node(c)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, ms...)
	}
	linear := b.Linear()
	for _, m := range meshes {
		linear.TransformPoints(m.Vertices, b.Pos)
	}
	return meshes, nil
}

func (g *generator) geom(geom *Geom) (*drawable.Mesh, error) {
	local, ok, err := g.local(geom)
	if err != nil || !ok {
		return nil, err
	}

	mesh := &drawable.Mesh{Name: g.tree.Describe(geom.ID)}
	if mat, isMat := g.tree.Node(geom.Material).(*Material); isMat {
		tex, _ := g.tree.Node(mat.Texture).(*Texture)
		mesh.Filling = mat.Filling(local.Vertices, tex)
		if tex != nil {
			mesh.Texture = g.texture(tex)
		}
	}

	geom.TransformPoints(local.Vertices)
	mesh.Vertices = local.Vertices
	mesh.Indices = append([]uint32(nil), local.Indices...)
	return mesh, nil
}

func (g *generator) texture(tex *Texture) *drawable.Texture {
	if d, ok := g.textures[tex.ID]; ok {
		return d
	}
	d := tex.Drawable()
	if tex.Type.IsCubeMap() && len(tex.Pixels) == 0 {
		g.log.Warn("cube texture has no pixel data, using rgb1",
			zap.String("texture", tex.Name()),
			zap.String("file", tex.File))
	}
	g.textures[tex.ID] = d
	return d
}

// local returns the geom's vertices before its own transform. Geom
// primitives are built around the geom position; the transform then
// adds the position again.
func (g *generator) local(geom *Geom) (geometry.Mesh, bool, error) {
	size := geom.Size
	switch geom.Kind {
	case GeomBox:
		return geometry.Box(geom.Pos, math.V3(size[:])), true, nil
	case GeomSphere:
		n := g.opts.SphereSegments
		return geometry.Sphere(geom.Pos, size[0], n, n), true, nil
	case GeomEllipsoid:
		n := g.opts.SphereSegments
		return geometry.Ellipsoid(geom.Pos, math.V3(size[:]), n, n), true, nil
	case GeomCylinder:
		return geometry.Cylinder(geom.Pos, size[0], size[1], g.opts.CylinderSegments), true, nil
	case GeomCapsule:
		return geometry.Capsule(geom.Pos, size[0], size[1], g.opts.CylinderSegments), true, nil
	case GeomPlane:
		return geometry.Plane(geom.Pos, size[0], size[1]), true, nil
	case GeomMesh:
		m, err := g.tree.meshGeometry(geom)
		return m, err == nil, err
	}
	g.log.Warn("geom type has no geometry",
		zap.String("geom", g.tree.Describe(geom.ID)),
		zap.Stringer("type", geom.Kind))
	return geometry.Mesh{}, false, nil
}

// meshGeometry returns the bound mesh asset's triangles: the convex hull
// of inline points, or the loaded OBJ triangles. Scale applies to the
// points first.
func (t *Tree) meshGeometry(geom *Geom) (geometry.Mesh, error) {
	m, ok := t.Node(geom.Mesh).(*Mesh)
	if !ok {
		return geometry.Mesh{}, assetf(t.Describe(geom.ID), "mesh %q is not bound", geom.MeshRef)
	}
	switch m.Source {
	case MeshFile:
		if !m.Loaded() {
			return geometry.Mesh{}, assetf(t.Describe(m.ID), "mesh file %s was not loaded", m.File)
		}
		return geometry.Mesh{Vertices: m.Vertices, Indices: m.Indices}.Scaled(m.Scale), nil
	default:
		points := geometry.Mesh{Vertices: m.Inline}.Scaled(m.Scale)
		hull, err := geometry.ConvexHull(points.Vertices)
		if err != nil {
			return geometry.Mesh{}, newError(AssetResolutionError,
				fmt.Sprintf("hull of %d points", points.VertexCount()), t.Describe(m.ID), err)
		}
		return hull, nil
	}
}
