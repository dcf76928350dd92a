// Package markdown renders message bodies with glamour. Rendered
// output is cached per content+width because the chat view re-renders
// every element on each refresh.
package markdown

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/glamour"
)

// minWidthForMarkdown is the narrowest terminal glamour output still
// reads well at; below it RenderLines degrades to plain wrapping.
const minWidthForMarkdown = 30

// maxCacheEntries bounds the render cache. Eviction drops the whole
// map; transcripts are small enough that rebuilding is cheap.
const maxCacheEntries = 100

// Renderer is a width-aware glamour wrapper. Safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	tr    *glamour.TermRenderer
	width int
	cache map[uint64][]string
}

func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[uint64][]string)}
}

// RenderLines renders content as terminal markdown split into lines.
// On any glamour failure it returns the plain-wrapped text instead, so
// callers never see an error path.
func (r *Renderer) RenderLines(content string, width int) []string {
	if content == "" {
		return nil
	}
	if width < minWidthForMarkdown {
		return WrapText(content, width)
	}

	key := cacheKey(content, width)

	r.mu.Lock()
	defer r.mu.Unlock()

	if lines, ok := r.cache[key]; ok {
		return lines
	}

	tr, err := r.rendererLocked(width)
	if err != nil {
		return WrapText(content, width)
	}
	out, err := tr.Render(content)
	if err != nil {
		return WrapText(content, width)
	}

	lines := strings.Split(strings.TrimRight(out, "\n\r\t "), "\n")
	if len(r.cache) >= maxCacheEntries {
		r.cache = make(map[uint64][]string)
	}
	r.cache[key] = lines
	return lines
}

// rendererLocked returns a glamour renderer for width, rebuilding it
// (and invalidating the cache) when the width changed.
func (r *Renderer) rendererLocked(width int) (*glamour.TermRenderer, error) {
	if r.tr != nil && r.width == width {
		return r.tr, nil
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	r.tr = tr
	r.width = width
	r.cache = make(map[uint64][]string)
	return tr, nil
}

func cacheKey(content string, width int) uint64 {
	var wb [8]byte
	binary.LittleEndian.PutUint64(wb[:], uint64(width))

	h := xxhash.New()
	h.Write(wb[:])
	h.WriteString(content)
	return h.Sum64()
}

// WrapText greedily wraps text into lines of at most maxWidth bytes.
// Newlines in the input collapse to spaces; a non-positive width
// returns the text as-is.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
