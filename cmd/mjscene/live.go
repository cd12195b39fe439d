package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/server"
	"github.com/Faultbox/mjscene/internal/viewstate"
	"github.com/Faultbox/mjscene/internal/watch"
)

// session recompiles a scene whenever one of its files changes and
// publishes each good compile. A failed compile keeps the previous
// state published.
type session struct {
	*env
	store   *viewstate.Store
	watcher *watch.Watcher
	log     *zap.Logger
}

func newSession(e *env) (*session, error) {
	w, err := watch.New(time.Duration(e.cfg.Watch.Debounce))
	if err != nil {
		return nil, err
	}
	if err := w.Add(e.scene); err != nil {
		w.Close()
		return nil, err
	}
	return &session{
		env:     e,
		store:   viewstate.NewStore(),
		watcher: w,
		log:     logger.Named("session"),
	}, nil
}

// compile compiles and publishes once, then starts watching every file
// the scene now references.
func (s *session) compile(ctx context.Context) error {
	res, err := s.compiler.CompileFile(ctx, s.scene)
	if err != nil {
		return err
	}

	gen := s.store.Publish(viewstate.NewState(s.scene, res.Collection))
	s.log.Info("published scene",
		zap.Uint64("generation", gen),
		zap.Int("meshes", len(res.Collection.Meshes)),
		zap.Int("vertices", res.Collection.VertexCount()))

	for _, f := range res.Tree.ToLoadFiles() {
		full, err := s.loader.Resolve(f)
		if err != nil {
			continue
		}
		if err := s.watcher.Add(full); err != nil {
			s.log.Warn("cannot watch file", zap.String("path", full), zap.Error(err))
		}
	}
	return nil
}

// run compiles, then recompiles on every change until ctx is done.
func (s *session) run(ctx context.Context) error {
	defer s.watcher.Close()

	if err := s.compile(ctx); err != nil {
		s.log.Error("compile failed, waiting for changes", zap.Error(err))
	}

	return s.watcher.Run(ctx, func(changed []string) {
		s.log.Info("files changed", zap.Strings("files", changed))
		for _, path := range changed {
			s.loader.Invalidate(path)
		}
		if err := s.compile(ctx); err != nil {
			s.log.Error("recompile failed, keeping previous scene",
				zap.Uint64("generation", s.store.Generation()),
				zap.Error(err))
		}
	})
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	e, err := setup(fs, args, 1, "mjscene watch <scene.xml>")
	if err != nil {
		return err
	}

	s, err := newSession(e)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return s.run(ctx)
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	e, err := setup(fs, args, 1, "mjscene serve [-addr host:port] <scene.xml>")
	if err != nil {
		return err
	}

	s, err := newSession(e)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	done := make(chan error, 1)
	go func() { done <- s.run(ctx) }()

	err = server.New(s.store).ListenAndServe(ctx, e.cfg.Server.Addr)
	stop()
	if werr := <-done; err == nil {
		err = werr
	}
	return err
}
