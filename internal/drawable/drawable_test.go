package drawable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(name string, offset float32) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: []float32{offset, 0, 0, offset + 1, 0, 0, offset, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
}

func TestCollectionIndicesOffset(t *testing.T) {
	var c Collection
	c.Append(triangle("a", 0), triangle("b", 2))
	quad := &Mesh{
		Name:     "c",
		Vertices: make([]float32, 12),
		Indices:  []uint32{0, 1, 2, 1, 2, 3},
	}
	c.Append(quad)

	assert.Equal(t, 10, c.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 7, 8, 9}, c.Indices())

	calls := c.DrawMap()
	require.Len(t, calls, 3)
	assert.Equal(t, DrawCall{Start: 0, Count: 3}, calls[0])
	assert.Equal(t, DrawCall{Start: 3, Count: 3}, calls[1])
	assert.Equal(t, DrawCall{Start: 6, Count: 6}, calls[2])

	total := 0
	for _, call := range calls {
		total += call.Count
	}
	assert.Equal(t, len(c.Indices()), total)
}

func TestInterleavedFillings(t *testing.T) {
	plain := triangle("plain", 0)

	colored := triangle("colored", 0)
	colored.Filling = ColorFilling(3, [3]float32{0.1, 0.2, 0.3})

	uv := triangle("uv", 0)
	uv.Filling = &Filling{Kind: FillUV, Values: []float32{0, 0, 1, 0, 0, 1}}
	uv.Texture = &Texture{Name: "checker", Kind: Texture2D}

	cube := triangle("cube", 0)
	cube.Filling = &Filling{Kind: FillCube, Values: []float32{-1, -1, -1, 1, -1, -1, -1, 1, -1}}
	cube.Texture = &Texture{Name: "sky", Kind: TextureSkybox}

	var c Collection
	c.Append(plain, colored, uv, cube)
	require.NoError(t, c.Validate())

	data := c.Interleaved()
	require.Len(t, data, 12*Stride)

	vertex := func(i int) []float32 { return data[i*Stride : (i+1)*Stride] }
	assert.Equal(t, []float32{1, 0, 0, FallbackColor[0], FallbackColor[1], FallbackColor[2], 0, 0, 0}, vertex(1))
	assert.Equal(t, []float32{0, 0, 0, 0.1, 0.2, 0.3, 0, 0, 0}, vertex(3))
	assert.Equal(t, []float32{1, 0, 0, 1, 1, 1, 1, 0, 0}, vertex(7))
	assert.Equal(t, []float32{0, 1, 0, 1, 1, 1, -1, 1, -1}, vertex(11))

	calls := c.DrawMap()
	assert.Equal(t, "", calls[1].Texture)
	assert.Equal(t, "checker", calls[2].Texture)
	assert.Equal(t, "sky", calls[3].Texture)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh *Mesh
		want error
	}{
		{"ok", triangle("ok", 0), nil},
		{"index", &Mesh{Vertices: make([]float32, 6), Indices: []uint32{0, 1, 2}}, ErrIndexRange},
		{"filling", &Mesh{
			Vertices: make([]float32, 9),
			Indices:  []uint32{0, 1, 2},
			Filling:  ColorFilling(2, [3]float32{1, 1, 1}),
		}, ErrFillingMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTexturesAndBounds(t *testing.T) {
	sky := &Texture{Name: "sky", Kind: TextureCube}
	a := triangle("a", -2)
	a.Texture = sky
	b := triangle("b", 3)
	b.Texture = sky

	var c Collection
	c.Append(a, b)
	var other Collection
	other.Append(triangle("c", 0))
	c.Extend(&other)
	c.Extend(nil)

	require.Len(t, c.Meshes, 3)
	assert.Equal(t, []*Texture{sky}, c.Textures())

	bounds := c.Bounds()
	assert.Equal(t, [3]float32{-2, 0, 0}, bounds.Min)
	assert.Equal(t, [3]float32{4, 1, 0}, bounds.Max)

	var empty Collection
	assert.Equal(t, Bounds{}, empty.Bounds())
	assert.Empty(t, empty.DrawMap())
}

func TestKinds(t *testing.T) {
	assert.True(t, TextureCube.IsCubeMap())
	assert.True(t, TextureSkybox.IsCubeMap())
	assert.False(t, Texture2D.IsCubeMap())
	assert.Equal(t, "skybox", TextureSkybox.String())
	assert.Equal(t, "uv", FillUV.String())
	assert.Len(t, CubeFaceOrder, 6)
}
