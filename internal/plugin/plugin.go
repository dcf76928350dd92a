package plugin

import tea "github.com/charmbracelet/bubbletea"

// Plugin is a self-contained TUI panel managed by the registry.
type Plugin interface {
	// ID returns the stable plugin identifier.
	ID() string
	// Name returns the display name.
	Name() string
	// Init prepares the plugin with shared context. Called before Start.
	Init(ctx *Context) error
	// Start begins plugin operation and returns its initial command.
	Start() tea.Cmd
	// Stop releases plugin resources.
	Stop()
	// Update handles tea messages.
	Update(msg tea.Msg) (Plugin, tea.Cmd)
	// View renders the plugin into the given area.
	View(width, height int) string
	// SetFocused sets the focus state.
	SetFocused(focused bool)
	// IsFocused reports the focus state.
	IsFocused() bool
}

// TextInputConsumer is implemented by plugins that capture plain
// keystrokes while a text field is focused, so global single-key
// bindings don't steal typed characters.
type TextInputConsumer interface {
	ConsumesTextInput() bool
}

// EpochMessage is implemented by async messages that carry the epoch
// they were issued in, for stale-message detection after a session
// switch.
type EpochMessage interface {
	GetEpoch() uint64
}

// IsStale reports whether an async message belongs to a previous epoch.
func IsStale(ctx *Context, msg EpochMessage) bool {
	return ctx != nil && msg.GetEpoch() != ctx.Epoch
}

// PluginFocusedMsg is sent to a plugin when it becomes the focused panel.
type PluginFocusedMsg struct {
	ID string
}
