package plugin

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Registry owns the plugin lifecycle. A plugin whose Init fails (or
// panics) is dropped with a warning; the app runs with whatever
// registered cleanly.
type Registry struct {
	mu      sync.RWMutex
	ctx     *Context
	plugins []Plugin
}

func NewRegistry(ctx *Context) *Registry {
	return &Registry{ctx: ctx}
}

// Register initializes p and adds it to the active set.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := guard(func() error { return p.Init(r.ctx) })
	if err != nil {
		r.warn("plugin failed to initialize", p, err)
		return
	}
	r.plugins = append(r.plugins, p)
}

// Start collects the initial command from every active plugin.
func (r *Registry) Start() []tea.Cmd {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cmds []tea.Cmd
	for _, p := range r.plugins {
		var cmd tea.Cmd
		if err := guard(func() error { cmd = p.Start(); return nil }); err != nil {
			r.warn("plugin failed to start", p, err)
			continue
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Stop shuts plugins down in reverse registration order.
func (r *Registry) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.plugins) - 1; i >= 0; i-- {
		p := r.plugins[i]
		if err := guard(func() error { p.Stop(); return nil }); err != nil {
			r.warn("plugin failed to stop", p, err)
		}
	}
}

// Plugins returns a snapshot of the active set.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// guard runs fn, converting a panic into an error. Plugin code must
// never take the whole app down.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func (r *Registry) warn(msg string, p Plugin, err error) {
	if r.ctx != nil && r.ctx.Logger != nil {
		r.ctx.Logger.Warn(msg, "id", p.ID(), "err", err)
	}
}
