// Package rubiks animates a Rubik's cube scene. The cube is a body whose
// 26 child bodies are the cubelets; moves rotate the cubelets of one face
// and track which cubelet sits in which slot.
package rubiks

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/scene"
)

// DefaultCoreBody is the name of the body holding the cubelets.
const DefaultCoreBody = "core"

// Cubelets is the number of visible pieces of a 3x3x3 cube.
const Cubelets = 26

// initialSlots maps slot names to the cubelet index of a solved cube:
// 6 centres, 12 edges, 8 corners.
var initialSlots = map[string]int{
	"right": 0,
	"left":  1,
	"up":    2,
	"down":  3,
	"back":  4,
	"front": 5,

	"right-up":    6,
	"right-down":  7,
	"right-back":  8,
	"right-front": 9,
	"left-up":     10,
	"left-down":   11,
	"left-back":   12,
	"left-front":  13,
	"up-back":     14,
	"up-front":    15,
	"down-back":   16,
	"down-front":  17,

	"up-right-back":    18,
	"up-right-front":   19,
	"down-right-back":  20,
	"down-right-front": 21,
	"up-left-back":     22,
	"up-left-front":    23,
	"down-left-back":   24,
	"down-left-front":  25,
}

// Slot cycles per face. A plus move moves each slot's cubelet to the next
// slot in the list.
var (
	cornerCycles = map[Face][4]string{
		Left:  {"up-left-back", "up-left-front", "down-left-front", "down-left-back"},
		Right: {"up-right-front", "up-right-back", "down-right-back", "down-right-front"},
		Up:    {"up-left-back", "up-right-back", "up-right-front", "up-left-front"},
		Down:  {"down-left-front", "down-right-front", "down-right-back", "down-left-back"},
		Front: {"up-left-front", "up-right-front", "down-right-front", "down-left-front"},
		Back:  {"up-right-back", "up-left-back", "down-left-back", "down-right-back"},
	}
	edgeCycles = map[Face][4]string{
		Left:  {"left-up", "left-front", "left-down", "left-back"},
		Right: {"right-up", "right-back", "right-down", "right-front"},
		Up:    {"up-front", "left-up", "up-back", "right-up"},
		Down:  {"down-front", "right-down", "down-back", "left-down"},
		Front: {"up-front", "right-front", "down-front", "left-front"},
		Back:  {"up-back", "left-back", "down-back", "right-back"},
	}
)

// Cube is the plugin state: the slot map and the scene's cubelet bodies.
type Cube struct {
	coreName string
	scramble []Move
	slots    map[string]int
	cubelets []*scene.Body
	log      *zap.Logger
}

// New creates a cube that looks for coreName under the world body and
// applies scramble on model load. An empty coreName means DefaultCoreBody.
func New(coreName string, scramble []Move) *Cube {
	if coreName == "" {
		coreName = DefaultCoreBody
	}
	c := &Cube{
		coreName: coreName,
		scramble: scramble,
		log:      logger.Named("rubiks"),
	}
	c.Reset()
	return c
}

// Name implements plugin.Plugin.
func (c *Cube) Name() string { return "rubiks" }

// Reset restores the solved slot map and forgets the scene.
func (c *Cube) Reset() {
	c.slots = make(map[string]int, len(initialSlots))
	for k, v := range initialSlots {
		c.slots[k] = v
	}
	c.cubelets = nil
}

// Slot returns the cubelet index held by a slot.
func (c *Cube) Slot(name string) (int, bool) {
	i, ok := c.slots[name]
	return i, ok
}

// Solved reports whether every cubelet is in its home slot.
func (c *Cube) Solved() bool {
	for k, v := range initialSlots {
		if c.slots[k] != v {
			return false
		}
	}
	return true
}

// ProcessModelLoad binds the cube to a freshly compiled tree and applies
// the scramble.
func (c *Cube) ProcessModelLoad(t *scene.Tree) error {
	c.Reset()

	var core *scene.Body
	for _, id := range t.Children(t.WorldBody) {
		if b, ok := t.Node(id).(*scene.Body); ok && b.Name == c.coreName {
			core = b
		}
	}
	if core == nil {
		return errors.Errorf("no body %q under worldbody", c.coreName)
	}
	for _, id := range core.Children {
		if b, ok := t.Node(id).(*scene.Body); ok {
			c.cubelets = append(c.cubelets, b)
		}
	}
	if len(c.cubelets) != Cubelets {
		c.log.Warn("unexpected cubelet count",
			zap.String("core", c.coreName),
			zap.Int("count", len(c.cubelets)))
	}

	for _, m := range c.scramble {
		c.Apply(m)
	}
	c.log.Info("scrambled cube",
		zap.Int("moves", len(c.scramble)),
		zap.Int("cubelets", len(c.cubelets)))
	return nil
}

// ProcessSimLoop implements plugin.Plugin. The cube does not animate
// between steps.
func (c *Cube) ProcessSimLoop(*scene.Tree) error { return nil }

// Apply turns one face. Every cubelet on the face gets the move's
// rotation appended, then the face's corner and edge slots are cycled.
func (c *Cube) Apply(m Move) {
	turned := make(map[int]bool, 9)
	face := m.Face.String()
	for name, idx := range c.slots {
		if onFace(name, face) {
			turned[idx] = true
		}
	}
	rot := m.Rotation()
	for i, b := range c.cubelets {
		if turned[i] {
			b.AddRotation(rot)
		}
	}

	c.cycle(cornerCycles[m.Face], m.Minus)
	c.cycle(edgeCycles[m.Face], m.Minus)
	c.log.Debug("applied move", zap.Stringer("move", m))
}

func (c *Cube) cycle(slots [4]string, backward bool) {
	var held [4]int
	for i, s := range slots {
		held[i] = c.slots[s]
	}
	for i, s := range slots {
		if backward {
			c.slots[s] = held[(i+1)%4]
		} else {
			c.slots[s] = held[(i+3)%4]
		}
	}
}

func onFace(slot, face string) bool {
	for _, part := range strings.Split(slot, "-") {
		if part == face {
			return true
		}
	}
	return false
}
