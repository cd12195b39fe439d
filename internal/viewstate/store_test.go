package viewstate

import (
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mjscene/internal/drawable"
)

func testState() *State {
	c := &drawable.Collection{}
	c.Append(&drawable.Mesh{
		Name:     "tri",
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 2, 0},
		Indices:  []uint32{0, 1, 2},
		Texture:  &drawable.Texture{Name: "grid"},
		Filling:  &drawable.Filling{Kind: drawable.FillUV, Values: make([]float32, 6)},
	})
	return NewState("scene.xml", c)
}

func TestNewState(t *testing.T) {
	st := testState()
	assert.Len(t, st.Vertices, 3*drawable.Stride)
	assert.Equal(t, []uint32{0, 1, 2}, st.Indices)
	require.Len(t, st.DrawMap, 1)
	assert.Equal(t, [3]float32{1, 2, 0}, st.Bounds.Max)

	tex, ok := st.Texture("grid")
	require.True(t, ok)
	assert.Equal(t, "grid", tex.Name)
	_, ok = st.Texture("missing")
	assert.False(t, ok)

	sum := st.Summary()
	assert.Equal(t, 1, sum.Meshes)
	assert.Equal(t, 3, sum.Vertices)
	assert.Equal(t, 1, sum.DrawCalls)
	assert.Equal(t, []string{"grid"}, sum.Textures)
}

func TestPublish(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())

	first := testState()
	assert.Equal(t, uint64(1), s.Publish(first))
	assert.Same(t, first, s.Current())
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CompiledAt.IsZero())

	second := testState()
	assert.Equal(t, uint64(2), s.Publish(second))
	assert.Same(t, second, s.Current())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, uint64(2), s.Generation())
	assert.Equal(t, uint64(1), first.Generation, "published states are not touched again")
}

func TestSubscribeKeepsLatest(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()

	s.Publish(testState())
	s.Publish(testState())
	s.Publish(testState())
	assert.Equal(t, uint64(3), <-ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Publishing without subscribers must not block.
	s.Publish(testState())
}

func TestConcurrentReaders(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, cancel := s.Subscribe()
			defer cancel()
			for gen := range ch {
				st := s.Current()
				if st == nil || st.Generation < gen {
					t.Errorf("generation %d announced before it was current", gen)
				}
				if gen == 10 {
					return
				}
			}
		}()
	}
	// Give the readers a chance to subscribe.
	for s.subscribers() < 4 {
		runtime.Gosched()
	}
	for i := 0; i < 10; i++ {
		s.Publish(testState())
	}
	wg.Wait()
}

func (s *Store) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
