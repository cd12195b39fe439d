// Package compiler turns a scene document into a flat mesh collection by
// running an ordered list of named stages over one scene tree.
package compiler

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/drawable"
	"github.com/Faultbox/mjscene/internal/loader"
	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/plugin"
	"github.com/Faultbox/mjscene/internal/scene"
)

// Loader reads the files a scene references.
type Loader interface {
	LoadImage(ctx context.Context, path string) (*loader.Image, error)
	LoadText(ctx context.Context, path string) (string, error)
}

// Options configures a Compiler.
type Options struct {
	Geometry scene.Options
	// Plugins run between asset loading and geometry generation. Nil
	// means no plugins.
	Plugins *plugin.Manager
}

// DefaultOptions returns options with default tessellation and no
// plugins.
func DefaultOptions() Options {
	return Options{Geometry: scene.DefaultOptions()}
}

// Result is a compiled scene.
type Result struct {
	Tree       *scene.Tree
	Collection *drawable.Collection
	// Stages holds how long each stage took, in run order.
	Stages []StageTiming
}

// StageTiming records one stage run.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// Compiler runs the pipeline. It holds no per-document state, so one
// Compiler may compile many documents in turn.
type Compiler struct {
	loader Loader
	opts   Options
	log    *zap.Logger
}

// New creates a compiler reading referenced files through l. A nil
// loader leaves textures at their fallback colour and file meshes
// unloaded.
func New(l Loader, opts Options) *Compiler {
	return &Compiler{
		loader: l,
		opts:   opts,
		log:    logger.Named("compiler"),
	}
}

// CompileFile compiles the document at path.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening scene")
	}
	defer f.Close()
	return c.Compile(ctx, f)
}

// Compile compiles one document. Cancellation is checked between stages.
func (c *Compiler) Compile(ctx context.Context, r io.Reader) (*Result, error) {
	run := &pipeline{ctx: ctx, c: c, r: r, res: &Result{}}
	if err := c.run(run, run.stages()); err != nil {
		return nil, err
	}

	col := run.res.Collection
	c.log.Info("compiled scene",
		zap.Int("meshes", len(col.Meshes)),
		zap.Int("vertices", col.VertexCount()),
		zap.Int("indices", col.IndexCount()))
	return run.res, nil
}

// ResolveFile resolves the document at path.
func (c *Compiler) ResolveFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening scene")
	}
	defer f.Close()
	return c.Resolve(ctx, f)
}

// Resolve runs the stages up to asset binding only: the tree is parsed,
// defaults are applied and references are checked, but no file is read
// and no geometry is generated. The result has no Collection.
func (c *Compiler) Resolve(ctx context.Context, r io.Reader) (*Result, error) {
	run := &pipeline{ctx: ctx, c: c, r: r, res: &Result{}}
	if err := c.run(run, run.stages()[:resolveStages]); err != nil {
		return nil, err
	}
	return run.res, nil
}

func (c *Compiler) run(p *pipeline, stages []stage) error {
	for _, s := range stages {
		if err := p.ctx.Err(); err != nil {
			return errors.Wrapf(err, "before %s", s.name)
		}
		start := time.Now()
		if err := s.run(); err != nil {
			c.log.Debug("stage failed", zap.String("stage", s.name), zap.Error(err))
			return errors.Wrapf(err, "%s", s.name)
		}
		elapsed := time.Since(start)
		p.res.Stages = append(p.res.Stages, StageTiming{Name: s.name, Duration: elapsed})
		c.log.Debug("stage done", zap.String("stage", s.name), zap.Duration("took", elapsed))
	}
	return nil
}
