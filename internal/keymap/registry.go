// Package keymap resolves key presses to registered commands.
// Bindings are scoped to a context (a plugin ID or "global"); user
// overrides from config beat both.
package keymap

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Command is an invocable action a key can be bound to.
type Command struct {
	ID      string
	Name    string
	Handler func() tea.Cmd
	Context string
}

// Binding ties a key string (as produced by tea.KeyMsg.String) to a
// command ID within one context.
type Binding struct {
	Key     string
	Command string
	Context string
}

type Registry struct {
	mu        sync.RWMutex
	commands  map[string]Command
	bindings  map[string][]Binding
	overrides map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]Command),
		bindings:  make(map[string][]Binding),
		overrides: make(map[string]string),
	}
}

func (r *Registry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	r.commands[cmd.ID] = cmd
	r.mu.Unlock()
}

func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
	r.mu.Unlock()
}

// RegisterPluginBinding lets plugins bind keys without importing this
// package's types.
func (r *Registry) RegisterPluginBinding(key, command, context string) {
	r.RegisterBinding(Binding{Key: key, Command: command, Context: context})
}

// SetUserOverride rebinds a key to a command regardless of context.
func (r *Registry) SetUserOverride(key, commandID string) {
	r.mu.Lock()
	r.overrides[key] = commandID
	r.mu.Unlock()
}

// Handle resolves a key press and runs the bound command's handler.
// Precedence: user override, then the active context, then global.
// Returns nil when nothing is bound.
func (r *Registry) Handle(key tea.KeyMsg, activeContext string) tea.Cmd {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ks := key.String()

	if id, ok := r.overrides[ks]; ok {
		if cmd, ok := r.commands[id]; ok && cmd.Handler != nil {
			return cmd.Handler()
		}
	}

	contexts := []string{"global"}
	if activeContext != "" && activeContext != "global" {
		contexts = []string{activeContext, "global"}
	}
	for _, ctx := range contexts {
		for _, b := range r.bindings[ctx] {
			if b.Key != ks {
				continue
			}
			if cmd, ok := r.commands[b.Command]; ok && cmd.Handler != nil {
				return cmd.Handler()
			}
		}
	}
	return nil
}

func (r *Registry) GetCommand(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bindings[context]
}
