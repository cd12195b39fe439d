package compiler

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/scene"
)

// Stage names, in run order.
const (
	StageParse    = "parse"
	StageDefaults = "defaults"
	StageAssets   = "assets"
	StageLoad     = "load"
	StagePlugins  = "plugins"
	StageGeometry = "geometry"
)

// resolveStages is how many leading stages Resolve runs.
const resolveStages = 3

type stage struct {
	name string
	run  func() error
}

// pipeline is the state of one Compile call.
type pipeline struct {
	ctx  context.Context
	c    *Compiler
	r    io.Reader
	tree *scene.Tree
	res  *Result
}

func (p *pipeline) stages() []stage {
	return []stage{
		{StageParse, p.parse},
		{StageDefaults, func() error { return scene.ApplyDefaults(p.tree) }},
		{StageAssets, func() error { return scene.BindAssets(p.tree) }},
		{StageLoad, p.load},
		{StagePlugins, p.plugins},
		{StageGeometry, p.geometry},
	}
}

func (p *pipeline) parse() error {
	tree, err := scene.BuildReader(p.r)
	if err != nil {
		return err
	}
	p.tree = tree
	p.res.Tree = tree
	return nil
}

// load reads every referenced file and pushes the content back into the
// tree.
func (p *pipeline) load() error {
	if p.c.loader == nil {
		if files := p.tree.ToLoadFiles(); len(files) > 0 {
			p.c.log.Warn("no loader, referenced files skipped", zap.Strings("files", files))
		}
		return nil
	}

	dims := make(map[string]scene.Dimensions)
	pixels := make(map[string][]byte)
	for _, file := range p.tree.TextureFiles() {
		img, err := p.c.loader.LoadImage(p.ctx, file)
		if err != nil {
			return loadError(file, err)
		}
		dims[file] = scene.Dimensions{Width: img.Width, Height: img.Height}
		pixels[file] = img.Pix
	}
	p.tree.LoadDimensions(dims)
	p.tree.LoadFiles(pixels)

	texts := make(map[string]string)
	for _, file := range p.tree.MeshFiles() {
		text, err := p.c.loader.LoadText(p.ctx, file)
		if err != nil {
			return loadError(file, err)
		}
		texts[file] = text
	}
	return p.tree.LoadOBJMeshes(texts)
}

func loadError(file string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &scene.Error{Kind: scene.AssetResolutionError, Op: "load " + file, Err: err}
}

func (p *pipeline) plugins() error {
	if p.c.opts.Plugins == nil {
		return nil
	}
	return p.c.opts.Plugins.ProcessModelLoad(p.tree)
}

func (p *pipeline) geometry() error {
	col, err := p.tree.Geometries(p.c.opts.Geometry)
	if err != nil {
		return err
	}
	p.res.Collection = col
	return nil
}
