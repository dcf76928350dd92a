// Package ui holds small shared rendering helpers.
package ui

import (
	"github.com/mattn/go-runewidth"

	"github.com/marcus/parley/internal/styles"
)

// RenderToggle renders an on/off toggle control.
func RenderToggle(label string, on, focused bool) string {
	state := "off"
	if on {
		state = "on"
	}
	text := label + ": " + state

	switch {
	case focused:
		return styles.ButtonFocused.Render(text)
	case on:
		return styles.ButtonActive.Render(text)
	default:
		return styles.Button.Render(text)
	}
}

// Truncate shortens s to fit within width display cells, appending an
// ellipsis when content is cut. Width is measured in cells, not bytes,
// so wide runes don't overflow the status bar.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// PadRight pads s with spaces to exactly width display cells,
// truncating first if it is too long.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	return s + spaces(width-runewidth.StringWidth(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
