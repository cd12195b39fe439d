// Package config handles mjscene configuration loading and management.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all mjscene settings.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Geometry GeometryConfig `yaml:"geometry" toml:"geometry"`
	Plugins  PluginsConfig  `yaml:"plugins" toml:"plugins"`
	Watch    WatchConfig    `yaml:"watch" toml:"watch"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// AssetsConfig holds where referenced files are looked up.
type AssetsConfig struct {
	Dirs         []string `yaml:"dirs" toml:"dirs"`                   // Searched after the scene's own directory, last first
	CacheEntries int      `yaml:"cache_entries" toml:"cache_entries"` // Zero means unbounded
}

// GeometryConfig holds tessellation settings.
type GeometryConfig struct {
	SphereSegments   int `yaml:"sphere_segments" toml:"sphere_segments"`
	CylinderSegments int `yaml:"cylinder_segments" toml:"cylinder_segments"`
}

// PluginsConfig holds per-plugin settings.
type PluginsConfig struct {
	Rubiks RubiksConfig `yaml:"rubiks" toml:"rubiks"`
}

// RubiksConfig configures the Rubik's cube plugin.
type RubiksConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	CoreBody string `yaml:"core_body" toml:"core_body"`
	Moves    string `yaml:"moves" toml:"moves"`
}

// WatchConfig holds live recompile settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// ServerConfig holds the HTTP endpoint settings.
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Binary bool `yaml:"binary" toml:"binary"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Duration is a time.Duration written as "200ms" in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			CacheEntries: 256,
		},
		Geometry: GeometryConfig{
			SphereSegments:   32,
			CylinderSegments: 32,
		},
		Plugins: PluginsConfig{
			Rubiks: RubiksConfig{
				Enabled:  false,
				CoreBody: "core",
				Moves:    "F+ B+ U+ R+ D+ L+ R+ R+ D+ F+",
			},
		},
		Watch: WatchConfig{
			Debounce: Duration(200 * time.Millisecond),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8090",
		},
		Export: ExportConfig{
			Binary: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Assets.CacheEntries < 0 {
		return fmt.Errorf("assets.cache_entries: must not be negative, got %d", c.Assets.CacheEntries)
	}
	if s := c.Geometry.SphereSegments; s != 0 && s < 3 {
		return fmt.Errorf("geometry.sphere_segments: need at least 3, got %d", s)
	}
	if s := c.Geometry.CylinderSegments; s != 0 && s < 3 {
		return fmt.Errorf("geometry.cylinder_segments: need at least 3, got %d", s)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce: must not be negative, got %v", time.Duration(c.Watch.Debounce))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
