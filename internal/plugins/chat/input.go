package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var inputStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

// Input is the compose field backed by a bubbles textarea.
type Input struct {
	textarea textarea.Model
	focused  bool
}

// NewInput creates a new Input with default settings.
func NewInput() *Input {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.MaxHeight = 5
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Blur()

	return &Input{textarea: ta}
}

// Update handles incoming tea messages.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		// Submit on Enter (Shift+Enter / Alt+Enter inserts newline via
		// textarea default).
		val := strings.TrimSpace(i.textarea.Value())
		if val == "" {
			return i, nil
		}
		i.textarea.Reset()
		return i, func() tea.Msg { return SendPromptMsg{Content: val} }
	}

	var cmd tea.Cmd
	i.textarea, cmd = i.textarea.Update(msg)
	return i, cmd
}

// View renders the input constrained to the given width.
func (i *Input) View(width int) string {
	if width <= 0 {
		width = 80
	}

	// Account for border + padding (2 sides * (border 1 + padding 1) = 4)
	innerWidth := width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}
	i.textarea.SetWidth(innerWidth)

	return inputStyle.Width(width - 2).Render(i.textarea.View())
}

// Focus focuses the textarea.
func (i *Input) Focus() {
	i.textarea.Focus()
	i.focused = true
}

// Blur blurs the textarea.
func (i *Input) Blur() {
	i.textarea.Blur()
	i.focused = false
}

// Value returns the current textarea text.
func (i *Input) Value() string {
	return i.textarea.Value()
}

// Reset clears the textarea content.
func (i *Input) Reset() {
	i.textarea.Reset()
}

// IsFocused returns whether the input is focused.
func (i *Input) IsFocused() bool {
	return i.focused
}
