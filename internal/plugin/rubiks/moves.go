package rubiks

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/mjscene/pkg/math"
)

// DefaultScramble is applied when no moves are configured.
const DefaultScramble = "F+ B+ U+ R+ D+ L+ R+ R+ D+ F+"

// ErrInvalidMove is returned for move notation that cannot be parsed.
var ErrInvalidMove = errors.New("invalid move")

// Face is one of the six faces of the cube.
type Face byte

// Faces, by notation letter.
const (
	Left  Face = 'L'
	Right Face = 'R'
	Up    Face = 'U'
	Down  Face = 'D'
	Front Face = 'F'
	Back  Face = 'B'
)

var faceNames = map[Face]string{
	Left:  "left",
	Right: "right",
	Up:    "up",
	Down:  "down",
	Front: "front",
	Back:  "back",
}

// String returns the face's slot name, e.g. "left".
func (f Face) String() string {
	if name, ok := faceNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Face(%q)", byte(f))
}

// Move is a quarter turn of one face. Plus turns are the forward
// direction, minus turns undo them.
type Move struct {
	Face  Face
	Minus bool
}

func (m Move) String() string {
	if m.Minus {
		return string(m.Face) + "-"
	}
	return string(m.Face) + "+"
}

// Inverse returns the move that undoes m.
func (m Move) Inverse() Move {
	return Move{Face: m.Face, Minus: !m.Minus}
}

// Rotation returns the Euler rotation in degrees a plus move applies to
// the turned cubelets; minus moves negate it.
func (m Move) Rotation() math.Vec3 {
	var r math.Vec3
	switch m.Face {
	case Left:
		r = math.Vec3{X: 90}
	case Right:
		r = math.Vec3{X: -90}
	case Up:
		r = math.Vec3{Y: -90}
	case Down:
		r = math.Vec3{Y: 90}
	case Front:
		r = math.Vec3{Z: 90}
	case Back:
		r = math.Vec3{Z: -90}
	}
	if m.Minus {
		r = r.Scale(-1)
	}
	return r
}

// ParseMove parses a move such as "F+" or "r-". A bare face letter is a
// plus move.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2 {
		return Move{}, errors.Wrapf(ErrInvalidMove, "%q", s)
	}
	face := Face(strings.ToUpper(s[:1])[0])
	if _, ok := faceNames[face]; !ok {
		return Move{}, errors.Wrapf(ErrInvalidMove, "%q: unknown face", s)
	}
	m := Move{Face: face}
	if len(s) == 2 {
		switch s[1] {
		case '+':
		case '-', '\'':
			m.Minus = true
		default:
			return Move{}, errors.Wrapf(ErrInvalidMove, "%q: unknown direction", s)
		}
	}
	return m, nil
}

// ParseMoves parses whitespace separated moves.
func ParseMoves(s string) ([]Move, error) {
	fields := strings.Fields(s)
	moves := make([]Move, 0, len(fields))
	for _, f := range fields {
		m, err := ParseMove(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}
