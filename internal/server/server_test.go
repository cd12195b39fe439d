package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/viewstate"
)

func testState() *viewstate.State {
	c := &drawable.Collection{}
	c.Append(
		&drawable.Mesh{
			Name:     "plain",
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Indices:  []uint32{0, 1, 2},
		},
		&drawable.Mesh{
			Name:     "textured",
			Vertices: []float32{0, 0, 1, 1, 0, 1, 0, 1, 1},
			Indices:  []uint32{0, 1, 2},
			Filling:  &drawable.Filling{Kind: drawable.FillUV, Values: []float32{0, 0, 1, 0, 0, 1}},
			Texture: &drawable.Texture{
				Name:  "grid",
				Kind:  drawable.Texture2D,
				Image: drawable.Image{Width: 1, Height: 1, Pix: []byte{9, 8, 7}},
			},
		},
	)
	return viewstate.NewState("scene.xml", c)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestBeforeFirstPublish(t *testing.T) {
	h := New(viewstate.NewStore()).Handler()
	for _, path := range []string{"/api/scene", "/api/scene/drawmap", "/api/scene.glb", "/api/textures/grid"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"error"`, path)
	}
}

func TestSceneEndpoints(t *testing.T) {
	store := viewstate.NewStore()
	store.Publish(testState())
	h := New(store).Handler()

	rec := get(t, h, "/api/scene")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum viewstate.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, uint64(1), sum.Generation)
	assert.Equal(t, 2, sum.DrawCalls)
	assert.Equal(t, []string{"grid"}, sum.Textures)

	rec = get(t, h, "/api/scene/drawmap")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"start":0,"count":3},{"start":3,"count":3,"texture":"grid"}]`, rec.Body.String())

	rec = get(t, h, "/api/scene.glb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model/gltf-binary", rec.Header().Get("Content-Type"))
	assert.Equal(t, "glTF", rec.Body.String()[:4])
}

func TestTextureEndpoint(t *testing.T) {
	store := viewstate.NewStore()
	store.Publish(testState())
	h := New(store).Handler()

	rec := get(t, h, "/api/textures/grid")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/textures/missing").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/textures/grid?face=F").Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scene", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestEventsWebsocket(t *testing.T) {
	store := viewstate.NewStore()
	store.Publish(testState())
	srv := httptest.NewServer(New(store).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	read := func() viewstate.Summary {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var sum viewstate.Summary
		require.NoError(t, json.Unmarshal(data, &sum))
		return sum
	}

	assert.Equal(t, uint64(1), read().Generation)
	// The first message is sent after subscribing, so this publish is
	// always seen.
	store.Publish(testState())
	assert.Equal(t, uint64(2), read().Generation)
}

func TestListenAndServeStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(viewstate.NewStore()).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestErrorBody(t *testing.T) {
	rec := get(t, New(viewstate.NewStore()).Handler(), "/api/scene")
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"no scene compiled yet"}`, string(body))
}
