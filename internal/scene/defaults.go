package scene

// ApplyDefaults cascades default class attributes onto the world body
// subtree. Attributes a node already has are never replaced. Each node
// resolves its class against the whole default tree, starting at the
// root scope.
func ApplyDefaults(t *Tree) error {
	if t.DefaultsNode() == nil || t.WorldBodyNode() == nil {
		return nil
	}
	return t.resolveDefaults(t.WorldBody)
}

func (t *Tree) resolveDefaults(target NodeID) error {
	if _, ok := t.nodes[target].(classed); !ok {
		return nil
	}
	if err := t.applyDefaults(t.Defaults, target, nil); err != nil {
		return err
	}
	for _, c := range t.Children(target) {
		if err := t.resolveDefaults(c); err != nil {
			return err
		}
	}
	return nil
}

// applyDefaults merges inherited into scope, then applies the scope to
// target when the classes match, or searches the nested scopes when they
// do not.
func (t *Tree) applyDefaults(scope, target NodeID, inherited map[string]Attrs) error {
	d := t.nodes[scope].(*Defaults)
	d.merge(inherited)

	n := t.nodes[target].(classed)
	if n.Class() != d.Class() {
		for _, c := range d.Children {
			if err := t.applyDefaults(c, target, d.ElementAttrs); err != nil {
				return err
			}
		}
		return nil
	}

	attrs, ok := d.ElementAttrs[n.Tag()]
	if !ok {
		return nil
	}
	for _, k := range attrs.Keys() {
		v, _ := attrs.Get(k)
		if _, err := t.SetAttr(target, k, v); err != nil {
			return err
		}
	}
	return nil
}
