// Package app is the root Bubble Tea model: it hosts the plugin
// registry, routes keys through the keymap, and draws the header and
// footer chrome around the active plugin.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/parley/internal/config"
	"github.com/marcus/parley/internal/keymap"
	"github.com/marcus/parley/internal/plugin"
)

const chromeHeight = 2 // header + footer

// NextPluginMsg requests a switch to the next plugin tab.
type NextPluginMsg struct{}

// ToggleHelpMsg toggles the help overlay.
type ToggleHelpMsg struct{}

// ToastMsg displays a temporary status message in the footer.
type ToastMsg struct {
	Message  string
	Duration time.Duration
}

type tickMsg time.Time

// Model is the root Bubble Tea model for the parley application.
type Model struct {
	cfg *config.Config

	registry     *plugin.Registry
	activePlugin int

	keymap        *keymap.Registry
	activeContext string

	width, height int
	showHelp      bool
	ready         bool

	statusMsg    string
	statusExpiry time.Time
}

// New creates the application model.
func New(reg *plugin.Registry, km *keymap.Registry, cfg *config.Config) Model {
	registerDefaultBindings(km, cfg)

	m := Model{
		cfg:           cfg,
		registry:      reg,
		keymap:        km,
		activeContext: "global",
	}
	if p := m.ActivePlugin(); p != nil {
		p.SetFocused(true)
		m.activeContext = p.ID()
	}
	return m
}

// registerDefaultBindings installs the built-in global commands and
// applies the user's key overrides from config.
func registerDefaultBindings(km *keymap.Registry, cfg *config.Config) {
	km.RegisterCommand(keymap.Command{
		ID: "quit", Name: "Quit", Context: "global",
		Handler: func() tea.Cmd { return tea.Quit },
	})
	km.RegisterCommand(keymap.Command{
		ID: "next-plugin", Name: "Next panel", Context: "global",
		Handler: func() tea.Cmd { return func() tea.Msg { return NextPluginMsg{} } },
	})
	km.RegisterCommand(keymap.Command{
		ID: "help", Name: "Help", Context: "global",
		Handler: func() tea.Cmd { return func() tea.Msg { return ToggleHelpMsg{} } },
	})

	km.RegisterBinding(keymap.Binding{Key: "tab", Command: "next-plugin", Context: "global"})
	km.RegisterBinding(keymap.Binding{Key: "?", Command: "help", Context: "global"})
	km.RegisterBinding(keymap.Binding{Key: "ctrl+c", Command: "quit", Context: "global"})

	if cfg != nil {
		for key, commandID := range cfg.Keymap.Overrides {
			km.SetUserOverride(key, commandID)
		}
	}
}

// Init starts all registered plugins.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	for _, cmd := range m.registry.Start() {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// ActivePlugin returns the currently active plugin.
func (m Model) ActivePlugin() plugin.Plugin {
	plugins := m.registry.Plugins()
	if len(plugins) == 0 {
		return nil
	}
	if m.activePlugin >= len(plugins) {
		return plugins[0]
	}
	return plugins[m.activePlugin]
}

// NextPlugin switches focus to the next plugin.
func (m *Model) NextPlugin() tea.Cmd {
	plugins := m.registry.Plugins()
	if len(plugins) < 2 {
		return nil
	}
	if current := m.ActivePlugin(); current != nil {
		current.SetFocused(false)
	}
	m.activePlugin = (m.activePlugin + 1) % len(plugins)
	next := plugins[m.activePlugin]
	next.SetFocused(true)
	m.activeContext = next.ID()
	id := next.ID()
	return func() tea.Msg { return plugin.PluginFocusedMsg{ID: id} }
}

// ShowToast displays a temporary footer message.
func (m *Model) ShowToast(msg string, duration time.Duration) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(duration)
}

// clearExpiredToast clears the footer message once its time is up.
func (m *Model) clearExpiredToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m.forwardToAll(tea.WindowSizeMsg{
			Width:  msg.Width,
			Height: max(msg.Height-chromeHeight, 1),
		})

	case tickMsg:
		m.clearExpiredToast()
		return m, tickCmd()

	case NextPluginMsg:
		return m, m.NextPlugin()

	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil

	case ToastMsg:
		m.ShowToast(msg.Message, msg.Duration)
		return m, nil

	case plugin.PluginFocusedMsg:
		return m.forwardToActive(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToAll(msg)
}

// handleKey routes a key press: quit always wins, then the help
// overlay, then the keymap (unless the active plugin is capturing
// text), then the active plugin.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	active := m.ActivePlugin()
	consuming := false
	if c, ok := active.(plugin.TextInputConsumer); ok {
		consuming = c.ConsumesTextInput()
	}

	if !consuming {
		if cmd := m.keymap.Handle(msg, m.activeContext); cmd != nil {
			return m, cmd
		}
	}

	return m.forwardToActive(msg)
}

func (m Model) forwardToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	active := m.ActivePlugin()
	if active == nil {
		return m, nil
	}
	_, cmd := active.Update(msg)
	return m, cmd
}

func (m Model) forwardToAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	for _, p := range m.registry.Plugins() {
		if _, cmd := p.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}
