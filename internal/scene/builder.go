package scene

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/pkg/mjcf"
)

type frameKind int

const (
	frameNode    frameKind = iota // a node that takes children
	frameLeaf                     // a node that refuses children
	frameIgnored                  // an unknown element; transparent
	frameDiscard                  // content of a leaf; dropped
)

type frame struct {
	tag  string
	kind frameKind
	id   NodeID
}

// Builder assembles a Tree from element events.
type Builder struct {
	tree  *Tree
	stack []frame
	log   *zap.Logger
}

// NewBuilder returns a builder for a new tree.
func NewBuilder() *Builder {
	return &Builder{tree: NewTree(), log: logger.Named("scene")}
}

// Build assembles a tree from a complete event sequence.
func Build(events []mjcf.Event) (*Tree, error) {
	b := NewBuilder()
	for _, ev := range events {
		if err := b.Push(ev); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// BuildReader reads a document and assembles its tree.
func BuildReader(r io.Reader) (*Tree, error) {
	rd := mjcf.NewReader(r)
	b := NewBuilder()
	for {
		ev, err := rd.Next()
		if err == io.EOF {
			return b.Finish()
		}
		if err != nil {
			return nil, newError(ParseError, "read document", "", err)
		}
		if err := b.Push(ev); err != nil {
			return nil, err
		}
	}
}

// Push handles one event.
func (b *Builder) Push(ev mjcf.Event) error {
	var err error
	switch ev.Kind {
	case mjcf.StartElement:
		err = b.start(ev)
	case mjcf.EndElement:
		err = b.end(ev)
	default:
		err = newError(ParseError, fmt.Sprintf("unexpected %s event", ev.Kind), "", nil)
	}
	if err != nil {
		return errors.Wrapf(err, "line %d", ev.Line)
	}
	return nil
}

// Finish returns the tree. Elements still open are a parse error.
func (b *Builder) Finish() (*Tree, error) {
	if n := len(b.stack); n > 0 {
		top := b.stack[n-1]
		return nil, newError(ParseError, fmt.Sprintf("document ended inside <%s>", top.tag), "", io.ErrUnexpectedEOF)
	}
	return b.tree, nil
}

// parent returns the nearest open frame holding a node.
func (b *Builder) parent() (frame, bool) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if f := b.stack[i]; f.kind == frameNode || f.kind == frameLeaf {
			return f, true
		}
	}
	return frame{}, false
}

func (b *Builder) push(tag string, kind frameKind, id NodeID) {
	b.stack = append(b.stack, frame{tag: tag, kind: kind, id: id})
}

func (b *Builder) start(ev mjcf.Event) error {
	if n := len(b.stack); n > 0 {
		if top := b.stack[n-1]; top.kind == frameLeaf || top.kind == frameDiscard {
			if top.kind == frameLeaf {
				b.log.Warn("discarding element inside leaf",
					zap.String("element", ev.Name),
					zap.String("parent", b.tree.Describe(top.id)),
					zap.Int("line", ev.Line))
			}
			b.push(ev.Name, frameDiscard, NoNode)
			return nil
		}
	}

	node, known := newNode(ev.Name)
	if !known {
		b.push(ev.Name, frameIgnored, NoNode)
		return nil
	}
	parent, hasParent := b.parent()

	switch ev.Name {
	case TagWorldBody, TagAsset:
		if hasParent {
			return structuralf(b.tree.Describe(parent.id), "<%s> must be at the document root", ev.Name)
		}
		root := &b.tree.WorldBody
		if ev.Name == TagAsset {
			root = &b.tree.Assets
		}
		if *root == NoNode {
			*root = b.tree.Add(node)
		}
		if err := b.applyAttrs(*root, ev); err != nil {
			return err
		}
		b.push(ev.Name, frameNode, *root)
		return nil

	case TagDefault:
		if !hasParent {
			if b.tree.Defaults != NoNode {
				return structuralf(b.tree.Describe(b.tree.Defaults), "repeated root <default>")
			}
			id := b.tree.Add(node)
			if err := b.applyAttrs(id, ev); err != nil {
				return err
			}
			b.tree.Defaults = id
			b.push(ev.Name, frameNode, id)
			return nil
		}
	}

	if !hasParent {
		return structuralf("", "<%s> has no enclosing element", ev.Name)
	}
	id := b.tree.Add(node)
	if err := b.applyAttrs(id, ev); err != nil {
		return err
	}
	if err := b.tree.Attach(parent.id, id); err != nil {
		return err
	}
	kind := frameNode
	if !node.AcceptsChildren() {
		kind = frameLeaf
	}
	b.push(ev.Name, kind, id)
	return nil
}

func (b *Builder) applyAttrs(id NodeID, ev mjcf.Event) error {
	for _, a := range ev.Attrs {
		if _, err := b.tree.SetAttr(id, a.Name, a.Value); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) end(ev mjcf.Event) error {
	n := len(b.stack)
	if n == 0 {
		return structuralf("", "unexpected </%s>", ev.Name)
	}
	top := b.stack[n-1]
	if top.tag != ev.Name {
		return structuralf(b.tree.Describe(top.id), "</%s> closes <%s>", ev.Name, top.tag)
	}
	b.stack = b.stack[:n-1]
	return nil
}
