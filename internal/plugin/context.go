package plugin

import (
	"log/slog"

	"github.com/marcus/parley/internal/config"
	"github.com/marcus/parley/internal/event"
	"github.com/marcus/parley/internal/store"
)

// BindingRegistrar allows plugins to register key bindings dynamically.
// This is implemented by keymap.Registry.
type BindingRegistrar interface {
	RegisterPluginBinding(key, command, context string)
}

// Context provides shared resources to plugins during initialization.
type Context struct {
	WorkDir  string
	Config   *config.Config
	Store    *store.Store
	EventBus *event.Dispatcher
	Saver    *config.Saver
	Logger   *slog.Logger
	Keymap   BindingRegistrar
	Epoch    uint64 // Incremented on session switch to invalidate stale async messages
}
