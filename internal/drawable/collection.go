package drawable

// DrawCall is one contiguous index range of a collection, drawn with an
// optional texture.
type DrawCall struct {
	Start   int    // first index in Collection.Indices
	Count   int    // number of indices
	Texture string // empty when untextured
}

// Bounds holds the axis-aligned bounding box of a collection.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Collection is an ordered set of meshes produced by one compile.
type Collection struct {
	Meshes []*Mesh
}

// Append adds meshes in order.
func (c *Collection) Append(meshes ...*Mesh) {
	c.Meshes = append(c.Meshes, meshes...)
}

// Extend appends every mesh of other.
func (c *Collection) Extend(other *Collection) {
	if other == nil {
		return
	}
	c.Meshes = append(c.Meshes, other.Meshes...)
}

// Validate checks every mesh.
func (c *Collection) Validate() error {
	for _, m := range c.Meshes {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// VertexCount returns the total number of vertices.
func (c *Collection) VertexCount() int {
	n := 0
	for _, m := range c.Meshes {
		n += m.VertexCount()
	}
	return n
}

// IndexCount returns the total number of indices.
func (c *Collection) IndexCount() int {
	n := 0
	for _, m := range c.Meshes {
		n += len(m.Indices)
	}
	return n
}

// Interleaved returns every vertex at Stride floats, meshes in order.
func (c *Collection) Interleaved() []float32 {
	out := make([]float32, 0, c.VertexCount()*Stride)
	for _, m := range c.Meshes {
		out = m.appendInterleaved(out)
	}
	return out
}

// Indices returns the concatenated index buffer. Each mesh's indices are
// offset by the number of vertices in the meshes before it.
func (c *Collection) Indices() []uint32 {
	out := make([]uint32, 0, c.IndexCount())
	var base uint32
	for _, m := range c.Meshes {
		for _, idx := range m.Indices {
			out = append(out, idx+base)
		}
		base += uint32(m.VertexCount())
	}
	return out
}

// DrawMap returns one draw call per mesh, in merge order. Counts sum to
// the length of Indices.
func (c *Collection) DrawMap() []DrawCall {
	calls := make([]DrawCall, 0, len(c.Meshes))
	start := 0
	for _, m := range c.Meshes {
		call := DrawCall{Start: start, Count: len(m.Indices)}
		if m.Texture != nil {
			call.Texture = m.Texture.Name
		}
		calls = append(calls, call)
		start += len(m.Indices)
	}
	return calls
}

// Textures returns the distinct bound textures by name, in first-use order.
func (c *Collection) Textures() []*Texture {
	var out []*Texture
	seen := map[string]bool{}
	for _, m := range c.Meshes {
		if m.Texture == nil || seen[m.Texture.Name] {
			continue
		}
		seen[m.Texture.Name] = true
		out = append(out, m.Texture)
	}
	return out
}

// Bounds returns the bounding box of every vertex. An empty collection
// has zero bounds.
func (c *Collection) Bounds() Bounds {
	var b Bounds
	first := true
	for _, m := range c.Meshes {
		for i := 0; i+2 < len(m.Vertices); i += 3 {
			p := [3]float32{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]}
			if first {
				b.Min, b.Max = p, p
				first = false
				continue
			}
			updateBounds(&b, p)
		}
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
