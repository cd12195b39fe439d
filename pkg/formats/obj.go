package formats

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJ        = errors.New("invalid OBJ data")
	ErrOBJIndexRange     = errors.New("OBJ face index out of range")
	ErrOBJDegenerateFace = errors.New("OBJ face has fewer than 3 vertices")
)

// OBJGroup is a named run of triangles inside an OBJ file ("o" or "g").
type OBJGroup struct {
	Name       string
	FirstIndex int
	IndexCount int
}

// OBJ is a triangulated Wavefront OBJ mesh.
// Only positions and faces are kept; normals and texture coordinates
// are skipped.
type OBJ struct {
	Positions []float32 // xyz triples
	Indices   []uint32  // triangle list into Positions
	Groups    []OBJGroup
}

// VertexCount returns the number of positions.
func (o *OBJ) VertexCount() int {
	return len(o.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (o *OBJ) TriangleCount() int {
	return len(o.Indices) / 3
}

// ParseOBJ parses OBJ text. Polygons are fan-triangulated.
func ParseOBJ(text string) (*OBJ, error) {
	obj := &OBJ{}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	var pending string
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		// Backslash continues a statement on the next line.
		if strings.HasSuffix(line, "\\") {
			pending += strings.TrimSuffix(line, "\\") + " "
			continue
		}
		line = pending + line
		pending = ""

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = obj.parseVertex(fields[1:])
		case "f":
			err = obj.parseFace(fields[1:])
		case "o", "g":
			obj.startGroup(strings.Join(fields[1:], " "))
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}

	obj.closeGroup()
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(string(data))
}

func (o *OBJ) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: vertex needs 3 coordinates, got %d", ErrInvalidOBJ, len(fields))
	}
	for _, f := range fields[:3] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("%w: vertex coordinate %q", ErrInvalidOBJ, f)
		}
		o.Positions = append(o.Positions, float32(v))
	}
	return nil
}

func (o *OBJ) parseFace(fields []string) error {
	if len(fields) < 3 {
		return ErrOBJDegenerateFace
	}

	poly := make([]uint32, len(fields))
	for i, f := range fields {
		idx, err := o.resolveIndex(f)
		if err != nil {
			return err
		}
		poly[i] = idx
	}

	for i := 1; i+1 < len(poly); i++ {
		o.Indices = append(o.Indices, poly[0], poly[i], poly[i+1])
	}
	return nil
}

// resolveIndex turns an "a", "a/b", "a//c" or "a/b/c" reference into a
// zero-based position index. Negative indices count back from the end.
func (o *OBJ) resolveIndex(ref string) (uint32, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("%w: face index %q", ErrInvalidOBJ, ref)
	}

	count := o.VertexCount()
	switch {
	case n > 0 && n <= count:
		return uint32(n - 1), nil
	case n < 0 && -n <= count:
		return uint32(count + n), nil
	default:
		return 0, fmt.Errorf("%w: %d with %d vertices", ErrOBJIndexRange, n, count)
	}
}

func (o *OBJ) startGroup(name string) {
	o.closeGroup()
	o.Groups = append(o.Groups, OBJGroup{Name: name, FirstIndex: len(o.Indices)})
}

func (o *OBJ) closeGroup() {
	if len(o.Groups) == 0 {
		if len(o.Indices) > 0 {
			o.Groups = append(o.Groups, OBJGroup{IndexCount: len(o.Indices)})
		}
		return
	}
	g := &o.Groups[len(o.Groups)-1]
	g.IndexCount = len(o.Indices) - g.FirstIndex
}
