package main

import (
	"testing"

	"github.com/Faultbox/mjscene/internal/config"
)

func TestExportPath(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		binary bool
		want   string
	}{
		{"scene name binary", nil, true, "robot.glb"},
		{"scene name json", nil, false, "robot.gltf"},
		{"explicit glb", []string{"out/r.glb"}, false, "out/r.glb"},
		{"explicit gltf", []string{"r.gltf"}, true, "r.gltf"},
		{"no extension", []string{"r"}, false, "r.gltf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exportPath("/scenes/robot.xml", tt.args, tt.binary); got != tt.want {
				t.Errorf("exportPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPlugins(t *testing.T) {
	cfg := config.Default().Plugins

	m, err := newPlugins(cfg)
	if err != nil {
		t.Fatalf("newPlugins: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected no plugins when disabled, got %d", m.Len())
	}

	cfg.Rubiks.Enabled = true
	if m, err = newPlugins(cfg); err != nil {
		t.Fatalf("newPlugins: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("expected the rubiks plugin, got %d plugins", m.Len())
	}

	cfg.Rubiks.Moves = "Q+"
	if _, err := newPlugins(cfg); err == nil {
		t.Error("expected error for invalid move, got nil")
	}
}
