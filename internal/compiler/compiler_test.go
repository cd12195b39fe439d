package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/loader"
	"github.com/Faultbox/mjscene/internal/plugin"
	"github.com/Faultbox/mjscene/internal/scene"
)

type fakeLoader struct {
	images map[string]*loader.Image
	texts  map[string]string
	calls  []string
}

func (f *fakeLoader) LoadImage(_ context.Context, path string) (*loader.Image, error) {
	f.calls = append(f.calls, "image "+path)
	if img, ok := f.images[path]; ok {
		return img, nil
	}
	return nil, errors.Wrapf(loader.ErrNotFound, "%s", path)
}

func (f *fakeLoader) LoadText(_ context.Context, path string) (string, error) {
	f.calls = append(f.calls, "text "+path)
	if text, ok := f.texts[path]; ok {
		return text, nil
	}
	return "", errors.Wrapf(loader.ErrNotFound, "%s", path)
}

func compile(t *testing.T, l Loader, opts Options, doc string) *Result {
	t.Helper()
	res, err := New(l, opts).Compile(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	return res
}

func TestCompileBodyOffset(t *testing.T) {
	res := compile(t, nil, DefaultOptions(), `<mujoco><worldbody>
  <body pos="1 0 0">
    <geom type="box" size="1 1 1" pos="0 0 0"/>
  </body>
</worldbody></mujoco>`)

	require.Len(t, res.Collection.Meshes, 1)
	v := res.Collection.Meshes[0].Vertices
	assert.InDeltaSlice(t, []float32{0, -1, -1}, v[:3], 1e-6)
	assert.Equal(t, 8, res.Collection.VertexCount())
	assert.Equal(t, 36, res.Collection.IndexCount())
}

func TestCompileDefaultClassMaterial(t *testing.T) {
	res := compile(t, nil, DefaultOptions(), `<mujoco>
  <default>
    <default class="red">
      <geom material="redmat"/>
    </default>
  </default>
  <asset>
    <material name="redmat" rgba="1 0 0 1"/>
  </asset>
  <worldbody>
    <geom name="a" class="red" type="box" size="1 1 1"/>
    <geom name="b" type="box" size="1 1 1"/>
  </worldbody>
</mujoco>`)

	require.Len(t, res.Collection.Meshes, 2)
	red, plain := res.Collection.Meshes[0], res.Collection.Meshes[1]

	require.NotNil(t, red.Filling)
	assert.Equal(t, drawable.FillColor, red.Filling.Kind)
	color, _ := red.Filling.At(0)
	assert.Equal(t, [3]float32{1, 0, 0}, color)
	assert.Nil(t, plain.Filling)

	interleaved := res.Collection.Interleaved()
	assert.Equal(t, drawable.FallbackColor[:], interleaved[8*drawable.Stride+3:8*drawable.Stride+6],
		"second mesh drawn with the fallback colour")
}

const loadDoc = `<mujoco>
  <asset>
    <texture name="grid" type="2d" file="textures/grid.png"/>
    <material name="grid" texture="grid"/>
    <mesh name="tet" file="meshes/tet.obj"/>
  </asset>
  <worldbody>
    <geom type="mesh" mesh="tet" material="grid"/>
  </worldbody>
</mujoco>`

const tetOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 2 3
f 1 3 4
`

func TestCompileLoadsFiles(t *testing.T) {
	l := &fakeLoader{
		images: map[string]*loader.Image{
			"textures/grid.png": {Width: 1, Height: 1, Pix: []byte{1, 2, 3}},
		},
		texts: map[string]string{"meshes/tet.obj": tetOBJ},
	}
	res := compile(t, l, DefaultOptions(), loadDoc)

	assert.Equal(t, []string{"image textures/grid.png", "text meshes/tet.obj"}, l.calls)
	require.Len(t, res.Collection.Meshes, 1)
	m := res.Collection.Meshes[0]
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	require.NotNil(t, m.Texture)
	assert.Equal(t, []byte{1, 2, 3}, m.Texture.Image.Pix)
	assert.Equal(t, drawable.FillUV, m.Filling.Kind)

	var names []string
	for _, s := range res.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{StageParse, StageDefaults, StageAssets, StageLoad, StagePlugins, StageGeometry}, names)
}

func TestResolveSkipsLoading(t *testing.T) {
	l := &fakeLoader{}
	res, err := New(l, DefaultOptions()).Resolve(context.Background(), strings.NewReader(loadDoc))
	require.NoError(t, err)

	assert.Empty(t, l.calls)
	assert.Nil(t, res.Collection)
	assert.Equal(t, []string{"textures/grid.png", "meshes/tet.obj"}, res.Tree.ToLoadFiles())
	require.Len(t, res.Stages, 3)
	assert.Equal(t, StageAssets, res.Stages[2].Name)
}

func TestCompileMissingFile(t *testing.T) {
	l := &fakeLoader{texts: map[string]string{"meshes/tet.obj": tetOBJ}}
	_, err := New(l, DefaultOptions()).Compile(context.Background(), strings.NewReader(loadDoc))
	require.Error(t, err)
	assert.True(t, scene.IsKind(err, scene.AssetResolutionError))
	assert.ErrorIs(t, err, loader.ErrNotFound)
	assert.Contains(t, err.Error(), "textures/grid.png")
}

func TestCompileWithoutLoader(t *testing.T) {
	_, err := New(nil, DefaultOptions()).Compile(context.Background(), strings.NewReader(loadDoc))
	require.Error(t, err)
	assert.True(t, scene.IsKind(err, scene.AssetResolutionError))
	assert.Contains(t, err.Error(), StageGeometry)
}

func TestCompileErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind scene.Kind
	}{
		{"syntax", `<mujoco><worldbody>`, scene.ParseError},
		{"structure", `<mujoco><worldbody></asset></mujoco>`, scene.StructuralError},
		{"attribute", `<mujoco><worldbody><geom size="a"/></worldbody></mujoco>`, scene.AttributeValueError},
		{"asset", `<mujoco><worldbody><geom material="x"/></worldbody></mujoco>`, scene.AssetResolutionError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, DefaultOptions()).Compile(context.Background(), strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, scene.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil, DefaultOptions()).Compile(ctx, strings.NewReader(`<mujoco/>`))
	assert.ErrorIs(t, err, context.Canceled)
}

type shifter struct{}

func (shifter) Name() string { return "shifter" }

func (shifter) ProcessModelLoad(t *scene.Tree) error {
	b, ok := t.FindBody("moved")
	if !ok {
		return errors.New("no body")
	}
	b.Pos.X += 10
	return nil
}

func (shifter) ProcessSimLoop(*scene.Tree) error { return nil }

func TestCompileRunsPlugins(t *testing.T) {
	pm := plugin.NewManager()
	pm.Register(shifter{}, plugin.DefaultCapabilities())
	opts := DefaultOptions()
	opts.Plugins = pm

	res := compile(t, nil, opts, `<mujoco><worldbody>
  <body name="moved"><geom type="box" size="1 1 1"/></body>
</worldbody></mujoco>`)
	assert.InDelta(t, 9, res.Collection.Meshes[0].Vertices[0], 1e-6)

	_, err := New(nil, opts).Compile(context.Background(), strings.NewReader(`<mujoco><worldbody/></mujoco>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin shifter")
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<mujoco><worldbody><geom type="sphere" size="1"/></worldbody></mujoco>`), 0o644))

	res, err := New(nil, DefaultOptions()).CompileFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 33*32, res.Collection.VertexCount())

	_, err = New(nil, DefaultOptions()).CompileFile(context.Background(), path+".missing")
	assert.Error(t, err)
}
