package config

import (
	"flag"
	"strings"
)

// Flags holds the command-line overrides shared by every subcommand.
type Flags struct {
	Config   string
	Debug    bool
	Assets   stringList
	LogFile  string
	Addr     string
	Segments int
	Rubiks   bool
}

// RegisterFlags defines the common flags on fs. Call fs.Parse before
// Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Var(&f.Assets, "assets", "Extra asset directory (repeatable)")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file as well")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address for serve")
	fs.IntVar(&f.Segments, "segments", 0, "Segments for spheres, cylinders and capsules")
	fs.BoolVar(&f.Rubiks, "rubiks", false, "Enable the Rubik's cube plugin")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if len(f.Assets) > 0 {
		cfg.Assets.Dirs = append(cfg.Assets.Dirs, f.Assets...)
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
	if f.Segments > 0 {
		cfg.Geometry.SphereSegments = f.Segments
		cfg.Geometry.CylinderSegments = f.Segments
	}
	if f.Rubiks {
		cfg.Plugins.Rubiks.Enabled = true
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
