// Package scene holds the typed node tree of a scene document and the
// passes that turn it into drawable meshes: tree building, default class
// resolution, asset binding and transform composition.
package scene

import (
	"fmt"

	"github.com/Faultbox/mjscene/pkg/math"
)

// NodeID addresses a node in a Tree.
type NodeID int

// NoNode marks an absent node reference.
const NoNode NodeID = -1

// NoParent is the parent of roots and detached nodes.
const NoParent = NoNode

// Element tags.
const (
	TagWorldBody = "worldbody"
	TagBody      = "body"
	TagGeom      = "geom"
	TagJoint     = "joint"
	TagDefault   = "default"
	TagAsset     = "asset"
	TagMesh      = "mesh"
	TagTexture   = "texture"
	TagMaterial  = "material"
)

// DefaultClass is the class of nodes and default scopes that declare none.
const DefaultClass = "main"

// Node is one element of the scene tree.
type Node interface {
	// Tag returns the element name.
	Tag() string
	// Base returns the fields shared by every node.
	Base() *NodeBase
	// SetAttr records an attribute and updates the typed field it maps
	// to. It returns false without error when key was already set or is
	// not recognised for this element.
	SetAttr(key, value string) (bool, error)
	// AcceptsChildren reports whether other elements may nest inside.
	AcceptsChildren() bool
}

// NodeBase holds the tree links and raw attributes of a node.
type NodeBase struct {
	ID       NodeID
	Parent   NodeID
	Children []NodeID
	Attrs    Attrs
}

// Base returns b.
func (b *NodeBase) Base() *NodeBase { return b }

// set records key once. Callers update typed fields only when it returns
// true.
func (b *NodeBase) set(key, value string) bool {
	return b.Attrs.Set(key, value)
}

// classed is implemented by nodes that take part in default resolution.
type classed interface {
	Node
	Class() string
}

func classOrDefault(class string) string {
	if class == "" {
		return DefaultClass
	}
	return class
}

// WorldBody is the root of the body hierarchy. It has no transform.
type WorldBody struct {
	NodeBase
	class      string
	childclass string
	Name       string
}

func (w *WorldBody) Tag() string           { return TagWorldBody }
func (w *WorldBody) AcceptsChildren() bool { return true }
func (w *WorldBody) Class() string         { return classOrDefault(w.class) }

// ChildClass returns the class stamped onto children, if any.
func (w *WorldBody) ChildClass() string { return w.childclass }

func (w *WorldBody) SetAttr(key, value string) (bool, error) {
	if w.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "class":
		w.class = value
	case "childclass":
		w.childclass = value
	case "name":
		w.Name = value
	default:
		return false, nil
	}
	return w.set(key, value), nil
}

// Body is a positioned frame holding geoms, joints and other bodies.
type Body struct {
	NodeBase
	class      string
	childclass string
	Name       string
	Pos        math.Vec3
	Euler      math.Vec3 // degrees
	Scale      math.Vec3
	// ExtraRotations are Euler rotations in degrees applied after Euler,
	// in order.
	ExtraRotations []math.Vec3
}

// NewBody returns a body with unit scale.
func NewBody() *Body {
	return &Body{Scale: math.One}
}

func (b *Body) Tag() string           { return TagBody }
func (b *Body) AcceptsChildren() bool { return true }
func (b *Body) Class() string         { return classOrDefault(b.class) }

// ChildClass returns the class stamped onto children, if any.
func (b *Body) ChildClass() string { return b.childclass }

// AddRotation appends an extra Euler rotation in degrees.
func (b *Body) AddRotation(euler math.Vec3) {
	b.ExtraRotations = append(b.ExtraRotations, euler)
}

func (b *Body) SetAttr(key, value string) (bool, error) {
	if b.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "class":
		b.class = value
	case "childclass":
		b.childclass = value
	case "name":
		b.Name = value
	case "pos":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		b.Pos = v
	case "euler":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		b.Euler = v
	case "scale":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		b.Scale = v
	default:
		return false, nil
	}
	return b.set(key, value), nil
}

// GeomKind is the shape of a geom.
type GeomKind int

const (
	GeomPlane GeomKind = iota
	GeomHfield
	GeomSphere
	GeomCapsule
	GeomEllipsoid
	GeomCylinder
	GeomBox
	GeomMesh
	GeomSDF
)

var geomKindNames = [...]string{
	GeomPlane:     "plane",
	GeomHfield:    "hfield",
	GeomSphere:    "sphere",
	GeomCapsule:   "capsule",
	GeomEllipsoid: "ellipsoid",
	GeomCylinder:  "cylinder",
	GeomBox:       "box",
	GeomMesh:      "mesh",
	GeomSDF:       "sdf",
}

// String returns the document name of the kind.
func (k GeomKind) String() string {
	if k >= 0 && int(k) < len(geomKindNames) {
		return geomKindNames[k]
	}
	return fmt.Sprintf("GeomKind(%d)", int(k))
}

// ParseGeomKind maps a type attribute to a kind. Unknown names are boxes.
func ParseGeomKind(s string) GeomKind {
	for k, name := range geomKindNames {
		if name == s {
			return GeomKind(k)
		}
	}
	return GeomBox
}

// Geom is a shape attached to a body.
type Geom struct {
	NodeBase
	class       string
	Name        string
	Kind        GeomKind
	Pos         math.Vec3
	Euler       math.Vec3 // degrees
	Size        [3]float32
	MeshRef     string
	MaterialRef string
	// Bound by BindAssets.
	Mesh     NodeID
	Material NodeID
}

// NewGeom returns an unbound box geom.
func NewGeom() *Geom {
	return &Geom{Kind: GeomBox, Mesh: NoNode, Material: NoNode}
}

func (g *Geom) Tag() string           { return TagGeom }
func (g *Geom) AcceptsChildren() bool { return false }
func (g *Geom) Class() string         { return classOrDefault(g.class) }

func (g *Geom) SetAttr(key, value string) (bool, error) {
	if g.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "class":
		g.class = value
	case "name":
		g.Name = value
	case "type":
		g.Kind = ParseGeomKind(value)
	case "pos":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		g.Pos = v
	case "euler":
		v, err := parseVec3(value)
		if err != nil {
			return false, err
		}
		g.Euler = v
	case "size":
		vals, err := parseFloats(value, -3)
		if err != nil {
			return false, err
		}
		g.Size = [3]float32{}
		copy(g.Size[:], vals)
	case "mesh":
		g.MeshRef = value
	case "material":
		g.MaterialRef = value
	default:
		return false, nil
	}
	return g.set(key, value), nil
}

// Joint is a degree of freedom of a body. It carries no geometry.
type Joint struct {
	NodeBase
	class string
	Name  string
}

func (j *Joint) Tag() string           { return TagJoint }
func (j *Joint) AcceptsChildren() bool { return false }
func (j *Joint) Class() string         { return classOrDefault(j.class) }

func (j *Joint) SetAttr(key, value string) (bool, error) {
	if j.Attrs.Has(key) {
		return false, nil
	}
	switch key {
	case "class":
		j.class = value
	case "name":
		j.Name = value
	default:
		return false, nil
	}
	return j.set(key, value), nil
}

// Defaults is a default class scope. Its children are nested scopes;
// other elements placed inside are captured into ElementAttrs by tag.
type Defaults struct {
	NodeBase
	class        string
	ElementAttrs map[string]Attrs
}

// NewDefaults returns an empty scope of the default class.
func NewDefaults() *Defaults {
	return &Defaults{class: DefaultClass, ElementAttrs: make(map[string]Attrs)}
}

func (d *Defaults) Tag() string           { return TagDefault }
func (d *Defaults) AcceptsChildren() bool { return true }

// Class returns the scope's class name.
func (d *Defaults) Class() string { return d.class }

func (d *Defaults) SetAttr(key, value string) (bool, error) {
	if key != "class" || d.Attrs.Has(key) {
		return false, nil
	}
	d.class = value
	return d.set(key, value), nil
}

// capture records the attributes an element declares inside this scope.
func (d *Defaults) capture(n Node) {
	d.ElementAttrs[n.Tag()] = n.Base().Attrs.Copy()
}

// merge fills element/key pairs missing from the scope with inherited
// values.
func (d *Defaults) merge(inherited map[string]Attrs) {
	for tag, attrs := range inherited {
		own, ok := d.ElementAttrs[tag]
		if !ok {
			d.ElementAttrs[tag] = attrs.Copy()
			continue
		}
		for _, k := range attrs.Keys() {
			v, _ := attrs.Get(k)
			own.Set(k, v)
		}
		d.ElementAttrs[tag] = own
	}
}

// AssetsManager is the asset section. Its children are meshes, textures
// and materials.
type AssetsManager struct {
	NodeBase
}

func (a *AssetsManager) Tag() string           { return TagAsset }
func (a *AssetsManager) AcceptsChildren() bool { return true }

// SetAttr ignores every attribute; the asset section has none.
func (a *AssetsManager) SetAttr(key, value string) (bool, error) {
	return false, nil
}

// newNode creates the node for a known element tag.
func newNode(tag string) (Node, bool) {
	switch tag {
	case TagWorldBody:
		return &WorldBody{}, true
	case TagBody:
		return NewBody(), true
	case TagGeom:
		return NewGeom(), true
	case TagJoint:
		return &Joint{}, true
	case TagDefault:
		return NewDefaults(), true
	case TagAsset:
		return &AssetsManager{}, true
	case TagMesh:
		return NewMesh(), true
	case TagTexture:
		return NewTexture(), true
	case TagMaterial:
		return NewMaterial(), true
	}
	return nil, false
}

// canContain reports whether an element with tag child may be placed
// inside parent.
func canContain(parent Node, child string) bool {
	switch parent.(type) {
	case *WorldBody, *Body:
		return child == TagBody || child == TagGeom || child == TagJoint
	case *AssetsManager:
		return child == TagMesh || child == TagTexture || child == TagMaterial
	case *Defaults:
		return child != TagWorldBody && child != TagAsset
	}
	return false
}
