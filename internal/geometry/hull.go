package geometry

import (
	"errors"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateHull is returned when a point cloud is flat or has fewer
// than four points, so it encloses no volume.
var ErrDegenerateHull = errors.New("point cloud has no volume")

type facet struct {
	v      [3]int
	normal mgl64.Vec3
	offset float64
	alive  bool
}

func (f *facet) distance(p mgl64.Vec3) float64 {
	return f.normal.Dot(p) - f.offset
}

type hull struct {
	points []mgl64.Vec3
	facets []facet
	eps    float64
}

// ConvexHull triangulates the convex hull of a point cloud given as flat
// xyz triples.
//
// Every facet is emitted as three fresh vertices followed by three
// sequential indices; vertices are not shared between facets. The hull is
// built incrementally in float64 and facets are wound counter-clockwise
// seen from outside.
func ConvexHull(points []float32) (Mesh, error) {
	n := len(points) / 3
	if n < 4 {
		return Mesh{}, ErrDegenerateHull
	}

	h := &hull{points: make([]mgl64.Vec3, n)}
	var lo, hi mgl64.Vec3
	for i := 0; i < n; i++ {
		p := mgl64.Vec3{float64(points[i*3]), float64(points[i*3+1]), float64(points[i*3+2])}
		h.points[i] = p
		for k := 0; k < 3; k++ {
			if i == 0 || p[k] < lo[k] {
				lo[k] = p[k]
			}
			if i == 0 || p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	extent := stdmath.Max(hi[0]-lo[0], stdmath.Max(hi[1]-lo[1], hi[2]-lo[2]))
	if extent == 0 {
		return Mesh{}, ErrDegenerateHull
	}
	h.eps = extent * 1e-9

	simplex, err := h.initialSimplex()
	if err != nil {
		return Mesh{}, err
	}

	used := map[int]bool{}
	for _, i := range simplex {
		used[i] = true
	}
	for i := range h.points {
		if !used[i] {
			h.add(i)
		}
	}

	return h.mesh(), nil
}

// initialSimplex picks four well-separated, non-coplanar points and
// creates the outward-facing tetrahedron over them.
func (h *hull) initialSimplex() ([4]int, error) {
	var s [4]int

	// Extreme points along each axis; the farthest pair seeds the simplex.
	var extremes []int
	for k := 0; k < 3; k++ {
		minI, maxI := 0, 0
		for i, p := range h.points {
			if p[k] < h.points[minI][k] {
				minI = i
			}
			if p[k] > h.points[maxI][k] {
				maxI = i
			}
		}
		extremes = append(extremes, minI, maxI)
	}
	best := -1.0
	for a := 0; a < len(extremes); a++ {
		for b := a + 1; b < len(extremes); b++ {
			d := h.points[extremes[a]].Sub(h.points[extremes[b]]).Len()
			if d > best {
				best = d
				s[0], s[1] = extremes[a], extremes[b]
			}
		}
	}

	p0, p1 := h.points[s[0]], h.points[s[1]]
	dir := p1.Sub(p0)
	best = 0
	for i, p := range h.points {
		if d := p.Sub(p0).Cross(dir).Len() / dir.Len(); d > best {
			best, s[2] = d, i
		}
	}
	if best <= h.eps {
		return s, ErrDegenerateHull
	}

	normal := dir.Cross(h.points[s[2]].Sub(p0)).Normalize()
	best = 0
	for i, p := range h.points {
		if d := stdmath.Abs(normal.Dot(p.Sub(p0))); d > best {
			best, s[3] = d, i
		}
	}
	if best <= h.eps {
		return s, ErrDegenerateHull
	}

	centroid := mgl64.Vec3{}
	for _, i := range s {
		centroid = centroid.Add(h.points[i])
	}
	centroid = centroid.Mul(0.25)

	for _, tri := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}} {
		a, b, c := s[tri[0]], s[tri[1]], s[tri[2]]
		f := h.newFacet(a, b, c)
		if f.distance(centroid) > 0 {
			f = h.newFacet(a, c, b)
		}
		h.facets = append(h.facets, f)
	}
	return s, nil
}

func (h *hull) newFacet(a, b, c int) facet {
	pa := h.points[a]
	n := h.points[b].Sub(pa).Cross(h.points[c].Sub(pa))
	f := facet{v: [3]int{a, b, c}, alive: true}
	// A sliver with no area keeps a zero normal and is never visible.
	if l := n.Len(); l > 0 {
		f.normal = n.Mul(1 / l)
		f.offset = f.normal.Dot(pa)
	}
	return f
}

// add extends the hull to include point i, if it lies outside.
func (h *hull) add(i int) {
	p := h.points[i]

	var visible []int
	edges := map[[2]int]bool{}
	for fi := range h.facets {
		f := &h.facets[fi]
		if !f.alive || f.distance(p) <= h.eps {
			continue
		}
		visible = append(visible, fi)
		for k := 0; k < 3; k++ {
			edges[[2]int{f.v[k], f.v[(k+1)%3]}] = true
		}
	}
	if len(visible) == 0 {
		return
	}

	// The horizon is every visible edge whose twin belongs to a hidden facet.
	var horizon [][2]int
	for _, fi := range visible {
		f := &h.facets[fi]
		for k := 0; k < 3; k++ {
			e := [2]int{f.v[k], f.v[(k+1)%3]}
			if !edges[[2]int{e[1], e[0]}] {
				horizon = append(horizon, e)
			}
		}
		f.alive = false
	}

	for _, e := range horizon {
		h.facets = append(h.facets, h.newFacet(e[0], e[1], i))
	}
}

func (h *hull) mesh() Mesh {
	var m Mesh
	for _, f := range h.facets {
		if !f.alive {
			continue
		}
		for _, vi := range f.v {
			p := h.points[vi]
			m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
			m.Vertices = append(m.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
		}
	}
	return m
}
