package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/export"
	"github.com/Faultbox/mjscene/internal/viewstate"
)

var errNoScene = errors.New("no scene compiled yet")

// drawCall is the JSON form of drawable.DrawCall.
type drawCall struct {
	Start   int    `json:"start"`
	Count   int    `json:"count"`
	Texture string `json:"texture,omitempty"`
}

func (s *Server) current(w http.ResponseWriter) (*viewstate.State, bool) {
	st := s.store.Current()
	if st == nil {
		s.writeError(w, http.StatusNotFound, errNoScene)
		return nil, false
	}
	return st, true
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if st, ok := s.current(w); ok {
		s.writeJSON(w, st.Summary())
	}
}

func (s *Server) handleDrawMap(w http.ResponseWriter, r *http.Request) {
	st, ok := s.current(w)
	if !ok {
		return
	}
	calls := make([]drawCall, 0, len(st.DrawMap))
	for _, c := range st.DrawMap {
		calls = append(calls, drawCall{Start: c.Start, Count: c.Count, Texture: c.Texture})
	}
	s.writeJSON(w, calls)
}

func (s *Server) handleGLB(w http.ResponseWriter, r *http.Request) {
	st, ok := s.current(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, st.Collection, true); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Content-Disposition", `attachment; filename="scene.glb"`)
	s.writeBody(w, buf.Bytes())
}

// handleTexture serves a texture as PNG. Cube maps take a face letter
// in the face query parameter; without it the full image is served.
func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	st, ok := s.current(w)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	tex, found := st.Texture(name)
	if !found {
		s.writeError(w, http.StatusNotFound, errors.Errorf("texture %q not found", name))
		return
	}

	img := tex.Image
	if face := r.URL.Query().Get("face"); face != "" {
		i := strings.Index(drawable.CubeFaceOrder, strings.ToUpper(face))
		if len(face) != 1 || i < 0 || i >= len(tex.Faces) {
			s.writeError(w, http.StatusBadRequest, errors.Errorf("texture %q has no face %q", name, face))
			return
		}
		img = tex.Faces[i]
	}

	data, err := export.PNG(img)
	if err != nil {
		s.writeError(w, http.StatusNotFound, errors.Wrapf(err, "texture %q", name))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	s.writeBody(w, data)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	s.writeBody(w, data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	data, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.writeBody(w, data)
}

func (s *Server) writeBody(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		s.log.Debug("writing response", zap.Error(err))
	}
}
