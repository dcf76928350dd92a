// Package features gates experimental behaviors behind named flags.
// Resolution order for each flag: CLI override, then config, then the
// flag's built-in default.
package features

import (
	"errors"
	"sync"

	"github.com/marcus/parley/internal/config"
)

// ErrNotInitialized is returned by operations that need a loaded config
// before Init has run.
var ErrNotInitialized = errors.New("feature manager not initialized")

// Feature describes one known flag.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

var (
	// InlineEdit gates in-place editing of transcript messages.
	InlineEdit = Feature{
		Name:        "inline_edit",
		Default:     true,
		Description: "Edit transcript messages in place",
	}

	// ClipboardYank gates copying messages to the system clipboard.
	ClipboardYank = Feature{
		Name:        "clipboard_yank",
		Default:     true,
		Description: "Copy the selected message to the clipboard",
	}
)

// catalog indexes every known flag by name. New flags register here.
var catalog = func() map[string]Feature {
	m := make(map[string]Feature)
	for _, f := range []Feature{InlineEdit, ClipboardYank} {
		m[f.Name] = f
	}
	return m
}()

// IsKnownFeature reports whether name is a registered flag.
func IsKnownFeature(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Manager resolves flag state against a config and CLI overrides.
type Manager struct {
	mu        sync.RWMutex
	cfg       *config.Config
	overrides map[string]bool
}

var active *Manager

// Init installs the process-wide manager. Call once at startup, after
// the config is loaded and before any override is applied.
func Init(cfg *config.Config) {
	active = &Manager{cfg: cfg, overrides: make(map[string]bool)}
}

// SetOverride pins a flag for the rest of the process, beating both
// config and default. A no-op before Init.
func SetOverride(name string, enabled bool) {
	if active == nil {
		return
	}
	active.mu.Lock()
	active.overrides[name] = enabled
	active.mu.Unlock()
}

// IsEnabled resolves a flag. Before Init only built-in defaults apply;
// unknown names are always off.
func IsEnabled(name string) bool {
	if active == nil {
		return catalog[name].Default
	}
	active.mu.RLock()
	defer active.mu.RUnlock()
	return active.resolve(name)
}

// resolve applies the precedence chain. Caller holds at least a read lock.
func (m *Manager) resolve(name string) bool {
	if enabled, ok := m.overrides[name]; ok {
		return enabled
	}
	if m.cfg != nil {
		if enabled, ok := m.cfg.Features.Flags[name]; ok {
			return enabled
		}
	}
	return catalog[name].Default
}

// List reports the resolved state of every known flag.
func List() map[string]bool {
	out := make(map[string]bool, len(catalog))
	if active == nil {
		for name, f := range catalog {
			out[name] = f.Default
		}
		return out
	}
	active.mu.RLock()
	defer active.mu.RUnlock()
	for name := range catalog {
		out[name] = active.resolve(name)
	}
	return out
}

// ListAll returns metadata for every known flag.
func ListAll() []Feature {
	out := make([]Feature, 0, len(catalog))
	for _, f := range catalog {
		out = append(out, f)
	}
	return out
}

// SetEnabled persists a flag value to the config file. The config is
// re-read first so concurrent edits from another process survive.
func SetEnabled(name string, enabled bool) error {
	if active == nil {
		return ErrNotInitialized
	}

	active.mu.Lock()
	defer active.mu.Unlock()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Features.Flags == nil {
		cfg.Features.Flags = make(map[string]bool)
	}
	cfg.Features.Flags[name] = enabled
	active.cfg.Features.Flags = cfg.Features.Flags

	return config.Save(cfg, config.ConfigPath())
}
