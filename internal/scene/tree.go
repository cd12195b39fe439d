package scene

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Tree owns every node of a document in an arena. Roots are registered
// by id; NoNode means the section is absent.
type Tree struct {
	nodes     []Node
	WorldBody NodeID
	Defaults  NodeID
	Assets    NodeID
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{WorldBody: NoNode, Defaults: NoNode, Assets: NoNode}
}

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Add places n in the arena, detached, and returns its id.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	b := n.Base()
	b.ID = id
	b.Parent = NoParent
	t.nodes = append(t.nodes, n)
	return id
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Children returns the child ids of id in document order.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Base().Children
	}
	return nil
}

// WorldBodyNode returns the world body, or nil.
func (t *Tree) WorldBodyNode() *WorldBody {
	w, _ := t.Node(t.WorldBody).(*WorldBody)
	return w
}

// DefaultsNode returns the root default scope, or nil.
func (t *Tree) DefaultsNode() *Defaults {
	d, _ := t.Node(t.Defaults).(*Defaults)
	return d
}

// AssetsNode returns the asset section, or nil.
func (t *Tree) AssetsNode() *AssetsManager {
	a, _ := t.Node(t.Assets).(*AssetsManager)
	return a
}

// Describe names a node for messages, e.g. `body "arm" #3`.
func (t *Tree) Describe(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		if id == NoNode {
			return ""
		}
		return fmt.Sprintf("#%d", id)
	}
	if name := nodeName(n); name != "" {
		return fmt.Sprintf("%s %q #%d", n.Tag(), name, id)
	}
	return fmt.Sprintf("%s #%d", n.Tag(), id)
}

func nodeName(n Node) string {
	switch v := n.(type) {
	case *WorldBody:
		return v.Name
	case *Body:
		return v.Name
	case *Geom:
		return v.Name
	case *Joint:
		return v.Name
	case *Defaults:
		return v.Class()
	case *Mesh:
		return v.Name()
	case *Texture:
		return v.Name()
	case *Material:
		return v.Name()
	}
	return ""
}

// SetAttr sets an attribute on a node, first write wins. Setting
// childclass stamps class and childclass onto the node's children.
func (t *Tree) SetAttr(id NodeID, key, value string) (bool, error) {
	n := t.Node(id)
	if n == nil {
		return false, errors.Errorf("no node #%d", id)
	}
	ok, err := n.SetAttr(key, value)
	if err != nil {
		return false, newError(AttributeValueError, fmt.Sprintf("attribute %s=%q", key, value), t.Describe(id), err)
	}
	if ok && key == "childclass" {
		for _, c := range n.Base().Children {
			if err := t.stampClass(c, value); err != nil {
				return true, err
			}
		}
	}
	return ok, nil
}

func (t *Tree) stampClass(id NodeID, class string) error {
	if _, err := t.SetAttr(id, "class", class); err != nil {
		return err
	}
	_, err := t.SetAttr(id, "childclass", class)
	return err
}

// childClass returns the class a container stamps onto its children.
func childClass(n Node) (string, bool) {
	switch v := n.(type) {
	case *WorldBody:
		return v.childclass, v.Attrs.Has("childclass")
	case *Body:
		return v.childclass, v.Attrs.Has("childclass")
	}
	return "", false
}

// Attach makes child the last child of parent. A default scope keeps
// nested scopes as children and captures any other element's attributes
// by tag instead of attaching it.
func (t *Tree) Attach(parent, child NodeID) error {
	p, c := t.Node(parent), t.Node(child)
	if p == nil || c == nil {
		return structuralf("", "attach #%d to #%d: no such node", child, parent)
	}
	if !p.AcceptsChildren() || !canContain(p, c.Tag()) {
		return structuralf(t.Describe(parent), "%s cannot contain %s", p.Tag(), c.Tag())
	}
	if c.Base().Parent != NoParent || t.isRoot(child) {
		return structuralf(t.Describe(child), "node is already attached")
	}
	for a := parent; a != NoParent; a = t.nodes[a].Base().Parent {
		if a == child {
			return structuralf(t.Describe(child), "attaching under %s would create a cycle", t.Describe(parent))
		}
	}

	if d, ok := p.(*Defaults); ok {
		if _, nested := c.(*Defaults); !nested {
			d.capture(c)
			return nil
		}
	}
	if class, ok := childClass(p); ok {
		if err := t.stampClass(child, class); err != nil {
			return err
		}
	}
	pb := p.Base()
	pb.Children = append(pb.Children, child)
	c.Base().Parent = parent
	return nil
}

func (t *Tree) isRoot(id NodeID) bool {
	return id == t.WorldBody || id == t.Defaults || id == t.Assets
}

// Walk visits id and its descendants depth-first in document order.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) error) error {
	return t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) error) error {
	if t.Node(id) == nil {
		return nil
	}
	if err := fn(id, depth); err != nil {
		return err
	}
	for _, c := range t.Children(id) {
		if err := t.walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// FindBody returns the first body under the world body with the given
// name.
func (t *Tree) FindBody(name string) (*Body, bool) {
	var found *Body
	_ = t.Walk(t.WorldBody, func(id NodeID, _ int) error {
		if b, ok := t.nodes[id].(*Body); ok && found == nil && b.Name == name {
			found = b
		}
		return nil
	})
	return found, found != nil
}

// Dump writes the roots and their descendants, one node per line,
// indented by depth, with attributes in the order they were set.
func (t *Tree) Dump(w io.Writer) error {
	for _, root := range []NodeID{t.Defaults, t.Assets, t.WorldBody} {
		err := t.Walk(root, func(id NodeID, depth int) error {
			n := t.nodes[id]
			line := strings.Repeat("  ", depth) + n.Tag()
			if attrs := n.Base().Attrs; attrs.Len() > 0 {
				line += " " + attrs.String()
			}
			if d, ok := n.(*Defaults); ok {
				line += dumpElementAttrs(d)
			}
			_, err := fmt.Fprintln(w, line)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func dumpElementAttrs(d *Defaults) string {
	tags := make([]string, 0, len(d.ElementAttrs))
	for tag := range d.ElementAttrs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	var sb strings.Builder
	for _, tag := range tags {
		fmt.Fprintf(&sb, " [%s %s]", tag, d.ElementAttrs[tag].String())
	}
	return sb.String()
}
