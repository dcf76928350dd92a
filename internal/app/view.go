package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/parley/internal/styles"
	"github.com/marcus/parley/internal/ui"
)

var (
	appNameStyle   = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	tabStyle       = lipgloss.NewStyle().Foreground(styles.TextMuted).Padding(0, 1)
	tabActiveStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary).Background(styles.BgSecondary).Padding(0, 1).Bold(true)
	helpTitleStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	helpKeyStyle   = lipgloss.NewStyle().Foreground(styles.Accent)
)

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - chromeHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if m.showHelp {
		body = m.renderHelp(bodyHeight)
	} else if active := m.ActivePlugin(); active != nil {
		body = active.View(m.width, bodyHeight)
	} else {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(bodyHeight).
			Align(lipgloss.Center).
			Render("no plugins available")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader draws the app name and plugin tabs.
func (m Model) renderHeader() string {
	var sb strings.Builder
	sb.WriteString(appNameStyle.Render(" parley "))

	for i, p := range m.registry.Plugins() {
		style := tabStyle
		if i == m.activePlugin {
			style = tabActiveStyle
		}
		sb.WriteString(style.Render(p.Name()))
	}

	// lipgloss measures display width through the ANSI styling.
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(sb.String())
}

// renderFooter draws the toast or the standing key hints.
func (m Model) renderFooter() string {
	text := " tab: switch · ?: help · ctrl+c: quit"
	if m.statusMsg != "" {
		text = " " + m.statusMsg
	}
	return styles.StatusBar.Render(ui.PadRight(text, m.width))
}

// renderHelp draws the key binding overlay.
func (m Model) renderHelp(height int) string {
	var sb strings.Builder
	sb.WriteString(helpTitleStyle.Render("Key bindings"))
	sb.WriteString("\n\n")

	for _, b := range m.keymap.BindingsForContext("global") {
		name := b.Command
		if cmd, ok := m.keymap.GetCommand(b.Command); ok {
			name = cmd.Name
		}
		sb.WriteString("  ")
		sb.WriteString(helpKeyStyle.Render(ui.PadRight(b.Key, 10)))
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render("  chat: esc selects · i composes · d deletes · e edits · y yanks · w windows"))
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render("  press any key to close"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		MaxHeight(height).
		Render(sb.String())
}
