// Package viewstate hands compiled scenes to their consumers. A State is
// immutable once published; consumers read the latest one and may
// subscribe to be told when it changes.
package viewstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/logger"
)

// State is one compiled scene with its render buffers.
type State struct {
	ID         uuid.UUID
	Generation uint64
	Source     string
	CompiledAt time.Time

	Collection *drawable.Collection
	Vertices   []float32 // interleaved, drawable.Stride floats per vertex
	Indices    []uint32
	DrawMap    []drawable.DrawCall
	Textures   []*drawable.Texture
	Bounds     drawable.Bounds
}

// NewState flattens a collection into render buffers. source names the
// document it was compiled from.
func NewState(source string, c *drawable.Collection) *State {
	return &State{
		Source:     source,
		Collection: c,
		Vertices:   c.Interleaved(),
		Indices:    c.Indices(),
		DrawMap:    c.DrawMap(),
		Textures:   c.Textures(),
		Bounds:     c.Bounds(),
	}
}

// Texture returns the state's texture with the given name.
func (s *State) Texture(name string) (*drawable.Texture, bool) {
	for _, t := range s.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Summary is a JSON-friendly description of a state.
type Summary struct {
	ID         string     `json:"id"`
	Generation uint64     `json:"generation"`
	Source     string     `json:"source"`
	CompiledAt time.Time  `json:"compiled_at"`
	Meshes     int        `json:"meshes"`
	Vertices   int        `json:"vertices"`
	Indices    int        `json:"indices"`
	DrawCalls  int        `json:"draw_calls"`
	Textures   []string   `json:"textures"`
	BoundsMin  [3]float32 `json:"bounds_min"`
	BoundsMax  [3]float32 `json:"bounds_max"`
}

// Summary describes s.
func (s *State) Summary() Summary {
	names := make([]string, 0, len(s.Textures))
	for _, t := range s.Textures {
		names = append(names, t.Name)
	}
	return Summary{
		ID:         s.ID.String(),
		Generation: s.Generation,
		Source:     s.Source,
		CompiledAt: s.CompiledAt,
		Meshes:     len(s.Collection.Meshes),
		Vertices:   len(s.Vertices) / drawable.Stride,
		Indices:    len(s.Indices),
		DrawCalls:  len(s.DrawMap),
		Textures:   names,
		BoundsMin:  s.Bounds.Min,
		BoundsMax:  s.Bounds.Max,
	}
}

// Store holds the latest published state.
type Store struct {
	mu         sync.Mutex
	current    *State
	generation uint64
	subs       map[int]chan uint64
	nextSub    int
	log        *zap.Logger
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]chan uint64),
		log:  logger.Named("viewstate"),
	}
}

// Publish stamps st with a new compile id and generation, makes it
// current and notifies subscribers. It returns the generation. st must
// not be modified afterwards.
func (s *Store) Publish(st *State) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	st.ID = uuid.New()
	st.Generation = s.generation
	if st.CompiledAt.IsZero() {
		st.CompiledAt = time.Now()
	}
	s.current = st

	for _, ch := range s.subs {
		// Keep only the newest generation in a slow subscriber's buffer.
		select {
		case <-ch:
		default:
		}
		ch <- s.generation
	}
	s.log.Info("published scene",
		zap.Uint64("generation", st.Generation),
		zap.Stringer("id", st.ID),
		zap.Int("draw_calls", len(st.DrawMap)))
	return s.generation
}

// Current returns the latest state, or nil before the first publish.
func (s *Store) Current() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Generation returns the number of states published so far.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Subscribe returns a channel receiving the generation of each publish
// and a function that ends the subscription and closes the channel.
// Sends never block; a subscriber that falls behind sees only the latest
// generation.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan uint64, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
