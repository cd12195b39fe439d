// Package server exposes the current compiled scene over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/viewstate"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8090"

const shutdownTimeout = 5 * time.Second

// Server serves the state held by a viewstate.Store.
type Server struct {
	store    *viewstate.Store
	router   *mux.Router
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// New creates a server for store.
func New(store *viewstate.Store) *Server {
	s := &Server{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger.Named("server"),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scene", s.handleScene).Methods(http.MethodGet)
	api.HandleFunc("/scene/drawmap", s.handleDrawMap).Methods(http.MethodGet)
	api.HandleFunc("/scene.glb", s.handleGLB).Methods(http.MethodGet)
	api.HandleFunc("/textures/{name}", s.handleTexture).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents)
	s.router = r
	return s
}

// Handler returns the routes wrapped with panic recovery and request
// logging.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(s.log)))(h)
	h = handlers.LoggingHandler(zap.NewStdLog(s.log).Writer(), h)
	return h
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "serving")
	}
	return nil
}
