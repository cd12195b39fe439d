package rubiks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mjscene/internal/scene"
	"github.com/Faultbox/mjscene/pkg/math"
)

// cubeDoc builds a scene with a core body holding n cubelet bodies.
func cubeDoc(core string, n int) string {
	var sb strings.Builder
	sb.WriteString("<mujoco><worldbody>\n")
	fmt.Fprintf(&sb, "<body name=%q>\n", core)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<body name=\"c%d\"><geom type=\"box\" size=\"0.5\"/></body>\n", i)
	}
	sb.WriteString("</body></worldbody></mujoco>")
	return sb.String()
}

func loadCube(t *testing.T, moves string) (*Cube, *scene.Tree) {
	t.Helper()
	tree, err := scene.BuildReader(strings.NewReader(cubeDoc("core", Cubelets)))
	require.NoError(t, err)
	parsed, err := ParseMoves(moves)
	require.NoError(t, err)
	c := New("", parsed)
	require.NoError(t, c.ProcessModelLoad(tree))
	return c, tree
}

func cubelet(t *testing.T, tree *scene.Tree, i int) *scene.Body {
	t.Helper()
	b, ok := tree.FindBody(fmt.Sprintf("c%d", i))
	require.True(t, ok)
	return b
}

func TestParseMoves(t *testing.T) {
	moves, err := ParseMoves(" F+ b- U r' ")
	require.NoError(t, err)
	assert.Equal(t, []Move{
		{Face: Front},
		{Face: Back, Minus: true},
		{Face: Up},
		{Face: Right, Minus: true},
	}, moves)
	assert.Equal(t, "B-", moves[1].String())

	for _, bad := range []string{"X+", "F*", "F++"} {
		_, err := ParseMoves(bad)
		assert.ErrorIs(t, err, ErrInvalidMove, bad)
	}

	moves, err = ParseMoves(DefaultScramble)
	require.NoError(t, err)
	assert.Len(t, moves, 10)
}

func TestMoveRotation(t *testing.T) {
	tests := []struct {
		move string
		want math.Vec3
	}{
		{"L+", math.Vec3{X: 90}},
		{"L-", math.Vec3{X: -90}},
		{"R+", math.Vec3{X: -90}},
		{"U+", math.Vec3{Y: -90}},
		{"D+", math.Vec3{Y: 90}},
		{"F+", math.Vec3{Z: 90}},
		{"B+", math.Vec3{Z: -90}},
		{"B-", math.Vec3{Z: 90}},
	}
	for _, tt := range tests {
		m, err := ParseMove(tt.move)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Rotation(), tt.move)
	}
}

func TestApplyFrontRotatesFaceCubelets(t *testing.T) {
	_, tree := loadCube(t, "F+")

	front := map[int]bool{5: true, 9: true, 13: true, 15: true, 17: true, 19: true, 21: true, 23: true, 25: true}
	for i := 0; i < Cubelets; i++ {
		b := cubelet(t, tree, i)
		if front[i] {
			assert.Equal(t, []math.Vec3{{Z: 90}}, b.ExtraRotations, "cubelet %d", i)
		} else {
			assert.Empty(t, b.ExtraRotations, "cubelet %d", i)
		}
	}
}

func TestApplyCyclesSlots(t *testing.T) {
	c, _ := loadCube(t, "F+")

	want := map[string]int{
		"up-left-front":    25,
		"up-right-front":   23,
		"down-right-front": 19,
		"down-left-front":  21,
		"up-front":         13,
		"right-front":      15,
		"down-front":       9,
		"left-front":       17,
		"front":            5,
		"up-left-back":     22,
	}
	for slot, idx := range want {
		got, ok := c.Slot(slot)
		require.True(t, ok, slot)
		assert.Equal(t, idx, got, slot)
	}
	assert.False(t, c.Solved())
}

func TestMinusUndoesPlus(t *testing.T) {
	for _, face := range "LRUDFB" {
		c := New("", nil)
		m := Move{Face: Face(face)}
		c.Apply(m)
		assert.False(t, c.Solved(), "%s", m)
		c.Apply(m.Inverse())
		assert.True(t, c.Solved(), "%s then %s", m, m.Inverse())
	}
}

func TestFourTurnsRestore(t *testing.T) {
	c, _ := loadCube(t, "U+ U+ U+ U+")
	assert.True(t, c.Solved())
}

func TestSecondMoveUsesUpdatedSlots(t *testing.T) {
	// After F+ the cubelet from up-left-front (23) sits in up-right-front,
	// so a following R+ turns it.
	_, tree := loadCube(t, "F+ R+")
	assert.Equal(t, []math.Vec3{{Z: 90}, {X: -90}}, cubelet(t, tree, 23).ExtraRotations)
	assert.Equal(t, []math.Vec3{{Z: 90}}, cubelet(t, tree, 25).ExtraRotations)
}

func TestModelLoadResets(t *testing.T) {
	c, _ := loadCube(t, "F+")
	tree, err := scene.BuildReader(strings.NewReader(cubeDoc("core", Cubelets)))
	require.NoError(t, err)
	require.NoError(t, c.ProcessModelLoad(tree))

	// Same single move from a solved state, not a second F+.
	got, _ := c.Slot("up-left-front")
	assert.Equal(t, 25, got)
	assert.Len(t, cubelet(t, tree, 5).ExtraRotations, 1)
}

func TestModelLoadMissingCore(t *testing.T) {
	tree, err := scene.BuildReader(strings.NewReader(cubeDoc("other", 3)))
	require.NoError(t, err)
	err = New("core", nil).ProcessModelLoad(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"core"`)
}
