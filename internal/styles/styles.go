// Package styles holds the shared color palette and common lipgloss
// styles used across the UI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette colors.
var (
	Primary   = lipgloss.Color("39")  // blue
	Secondary = lipgloss.Color("213") // pink
	Accent    = lipgloss.Color("214") // orange

	Success = lipgloss.Color("42")
	Warning = lipgloss.Color("214")
	Error   = lipgloss.Color("196")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("246")
	TextMuted     = lipgloss.Color("240")

	BgSecondary = lipgloss.Color("236")

	BorderNormal = lipgloss.Color("238")
	BorderActive = lipgloss.Color("39")
)

// Common styles.
var (
	Title = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)

	Button        = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	ButtonFocused = lipgloss.NewStyle().Foreground(TextPrimary).Background(BgSecondary).Padding(0, 1).Bold(true)
	ButtonActive  = lipgloss.NewStyle().Foreground(Success).Padding(0, 1).Bold(true)

	StatusBar = lipgloss.NewStyle().Background(BgSecondary).Foreground(TextMuted)
)
