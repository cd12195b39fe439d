// mjscene compiles MJCF-style scene documents into renderable meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	"github.com/Faultbox/mjscene/internal/compiler"
	"github.com/Faultbox/mjscene/internal/config"
	"github.com/Faultbox/mjscene/internal/loader"
	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/plugin"
	"github.com/Faultbox/mjscene/internal/plugin/rubiks"
	"github.com/Faultbox/mjscene/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "compile", "c":
		err = cmdCompile(args)
	case "files":
		err = cmdFiles(args)
	case "tree":
		err = cmdTree(args)
	case "export", "x":
		err = cmdExport(args)
	case "watch":
		err = cmdWatch(args)
	case "serve":
		err = cmdServe(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mjscene - MJCF scene compiler

Usage:
  mjscene <command> [options] <scene.xml> [args]

Commands:
  compile <scene.xml>               Compile and print a summary
  files <scene.xml>                 List files the scene references
  tree <scene.xml>                  Print the resolved node hierarchy
  export <scene.xml> [out.glb]      Write the compiled scene as glTF
  watch <scene.xml>                 Recompile whenever a scene file changes
  serve <scene.xml>                 Watch and serve the scene over HTTP

Options (all commands):
  -config <file>   Config file (.yaml or .toml)
  -assets <dir>    Extra asset directory (repeatable)
  -segments <n>    Segments for round primitives
  -rubiks          Enable the Rubik's cube plugin
  -debug           Debug logging
  -log <file>      Also log to file

Examples:
  mjscene compile robot.xml
  mjscene export -assets ./meshes robot.xml robot.glb
  mjscene serve -addr :8090 -rubiks cube.xml`)
}

// env is what every command needs after flag parsing.
type env struct {
	cfg      *config.Config
	scene    string
	args     []string
	loader   *loader.Manager
	compiler *compiler.Compiler
}

// setup parses the common flags and builds the loader and compiler for
// the scene named by the first positional argument. minArgs counts the
// positional arguments including the scene.
func setup(fs *flag.FlagSet, args []string, minArgs int, usage string) (*env, error) {
	f := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < minArgs {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		os.Exit(1)
	}

	cfg, err := config.Load(f)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, errors.Wrap(err, "initializing logger")
	}

	scenePath, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return nil, err
	}

	// Configured dirs first so the scene's own directory wins.
	l := loader.NewManager(cfg.Assets.CacheEntries)
	for _, dir := range cfg.Assets.Dirs {
		if err := l.AddRoot(dir); err != nil {
			return nil, err
		}
	}
	if err := l.AddRoot(filepath.Dir(scenePath)); err != nil {
		return nil, err
	}

	plugins, err := newPlugins(cfg.Plugins)
	if err != nil {
		return nil, err
	}

	opts := compiler.Options{
		Geometry: scene.Options{
			SphereSegments:   cfg.Geometry.SphereSegments,
			CylinderSegments: cfg.Geometry.CylinderSegments,
		},
		Plugins: plugins,
	}

	return &env{
		cfg:      cfg,
		scene:    scenePath,
		args:     fs.Args()[1:],
		loader:   l,
		compiler: compiler.New(l, opts),
	}, nil
}

func newPlugins(cfg config.PluginsConfig) (*plugin.Manager, error) {
	m := plugin.NewManager()
	if cfg.Rubiks.Enabled {
		moves, err := rubiks.ParseMoves(cfg.Rubiks.Moves)
		if err != nil {
			return nil, errors.Wrap(err, "plugins.rubiks.moves")
		}
		m.Register(rubiks.New(cfg.Rubiks.CoreBody, moves), plugin.DefaultCapabilities())
	}
	return m, nil
}

// signalContext is cancelled on interrupt or terminate.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
