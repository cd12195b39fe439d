// Package plugin runs scene hooks registered by optional extensions.
package plugin

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/internal/scene"
)

// Plugin is an extension that may rewrite a tree.
type Plugin interface {
	Name() string
	// ProcessModelLoad runs once after assets are bound and loaded, before
	// geometry is generated.
	ProcessModelLoad(t *scene.Tree) error
	// ProcessSimLoop runs once per simulation step.
	ProcessSimLoop(t *scene.Tree) error
}

// Capabilities selects which hooks of a plugin are called.
type Capabilities struct {
	ProcessModelLoad bool
	ProcessSimLoop   bool
}

// DefaultCapabilities enables the model-load hook only.
func DefaultCapabilities() Capabilities {
	return Capabilities{ProcessModelLoad: true}
}

type registration struct {
	plugin Plugin
	caps   Capabilities
}

// Manager holds plugins in registration order.
type Manager struct {
	plugins []registration
	log     *zap.Logger
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{log: logger.Named("plugin")}
}

// Register adds a plugin. Hooks run in the order plugins were registered.
func (m *Manager) Register(p Plugin, caps Capabilities) {
	m.plugins = append(m.plugins, registration{plugin: p, caps: caps})
	m.log.Debug("registered plugin",
		zap.String("plugin", p.Name()),
		zap.Bool("model_load", caps.ProcessModelLoad),
		zap.Bool("sim_loop", caps.ProcessSimLoop))
}

// Len returns the number of registered plugins.
func (m *Manager) Len() int { return len(m.plugins) }

// ProcessModelLoad calls every plugin with the model-load capability. The
// first error stops the run.
func (m *Manager) ProcessModelLoad(t *scene.Tree) error {
	for _, r := range m.plugins {
		if !r.caps.ProcessModelLoad {
			continue
		}
		m.log.Debug("model load", zap.String("plugin", r.plugin.Name()))
		if err := r.plugin.ProcessModelLoad(t); err != nil {
			return errors.Wrapf(err, "plugin %s", r.plugin.Name())
		}
	}
	return nil
}

// ProcessSimLoop calls every plugin with the sim-loop capability.
func (m *Manager) ProcessSimLoop(t *scene.Tree) error {
	for _, r := range m.plugins {
		if !r.caps.ProcessSimLoop {
			continue
		}
		if err := r.plugin.ProcessSimLoop(t); err != nil {
			return errors.Wrapf(err, "plugin %s", r.plugin.Name())
		}
	}
	return nil
}
