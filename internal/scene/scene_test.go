package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mjscene/pkg/mjcf"
)

func build(t *testing.T, doc string) *Tree {
	t.Helper()
	tree, err := BuildReader(strings.NewReader(doc))
	require.NoError(t, err)
	return tree
}

func buildErr(doc string) error {
	_, err := BuildReader(strings.NewReader(doc))
	return err
}

func start(name string, attrs ...string) mjcf.Event {
	ev := mjcf.Event{Kind: mjcf.StartElement, Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		ev.Attrs = append(ev.Attrs, mjcf.Attr{Name: attrs[i], Value: attrs[i+1]})
	}
	return ev
}

func end(name string) mjcf.Event {
	return mjcf.Event{Kind: mjcf.EndElement, Name: name}
}

// geomByName finds a geom under the world body.
func geomByName(t *testing.T, tree *Tree, name string) *Geom {
	t.Helper()
	var found *Geom
	_ = tree.Walk(tree.WorldBody, func(id NodeID, _ int) error {
		if g, ok := tree.Node(id).(*Geom); ok && g.Name == name {
			found = g
		}
		return nil
	})
	require.NotNil(t, found, "geom %q", name)
	return found
}
