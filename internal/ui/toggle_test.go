package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  string
	}{
		{"fits", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut with ellipsis", "abcdef", 5, "abcd…"},
		{"width one", "abc", 1, "…"},
		{"zero width", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.width); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncate_WideRunes(t *testing.T) {
	// Each CJK rune occupies two cells.
	got := Truncate("日本語テスト", 5)
	if w := runewidth.StringWidth(got); w > 5 {
		t.Fatalf("truncated width = %d, want <= 5", w)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated = %q, want ellipsis suffix", got)
	}
}

func TestPadRight(t *testing.T) {
	got := PadRight("ab", 5)
	if got != "ab   " {
		t.Fatalf("PadRight = %q, want %q", got, "ab   ")
	}
	if w := runewidth.StringWidth(PadRight("日本語", 4)); w != 4 {
		t.Fatalf("padded width = %d, want 4", w)
	}
}

func TestRenderToggle_ShowsState(t *testing.T) {
	on := RenderToggle("tail", true, false)
	off := RenderToggle("tail", false, false)
	if !strings.Contains(on, "on") || !strings.Contains(off, "off") {
		t.Fatalf("toggles = %q / %q, want on/off labels", on, off)
	}
}
