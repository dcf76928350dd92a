package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/parley/internal/markdown"
	"github.com/marcus/parley/internal/store"
	"github.com/marcus/parley/internal/styles"
	"github.com/marcus/parley/internal/transcript"
	"github.com/marcus/parley/internal/ui"
)

var (
	userPrefixStyle = lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true)
	userTextStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	systemStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	selectedStyle   = lipgloss.NewStyle().Foreground(styles.Accent).Bold(true)
	bannerStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
)

func (p *Plugin) View(width, height int) string {
	p.width = width
	p.height = height

	if p.err != nil && p.sessionID == "" {
		content := lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(styles.Error).
			Render("\n\n⚠ " + p.err.Error())
		return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
	}

	inputView := p.input.View(width)
	inputHeight := lipgloss.Height(inputView)

	statusView := p.renderStatusBar(width)
	statusHeight := 1

	vpHeight := height - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	p.view.SetSize(width, vpHeight)

	content := lipgloss.JoinVertical(lipgloss.Left,
		statusView,
		p.view.View(),
		inputView,
	)

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

// renderStatusBar renders the one-line session and windowing status.
func (p *Plugin) renderStatusBar(width int) string {
	left := fmt.Sprintf(" %s · %d msgs", p.sessionID, len(p.messages))

	wcfg := p.WindowConfig()
	label := "window"
	if wcfg.Enabled {
		label = fmt.Sprintf("window %d", wcfg.Limit)
	}
	win := ui.RenderToggle(label, wcfg.Enabled, false)

	hint := "[esc] select"
	switch p.mode {
	case modeSelect:
		hint = "[i] compose  [d]el [e]dit [y]ank [w]indow [n]ext"
	case modeEdit:
		hint = "[enter] save  [esc] cancel"
	}

	right := win + "· " + hint + " "
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.StatusBar.Render(ui.PadRight(left, width))
	}
	return styles.StatusBar.Render(left + ui.PadRight("", gap) + right)
}

// element is one materialized message in the view. origin is the
// message's index in the backing log, maintained by the host so it
// stays accurate across deletions.
type element struct {
	origin  int
	editing bool
	msg     store.Message
	lines   []string
}

// MessageView owns the scrollable transcript area. It implements
// transcript.View so the windowing controller can drive it, and adds
// the host-side operations (selection, in-place editing, deletion
// re-tagging) the controller never touches.
type MessageView struct {
	viewport viewport.Model
	width    int
	height   int
	atBottom bool

	elements []element
	loadMore bool

	// selected is the origin of the selected element, or -1.
	selected int
	// editOrigin is the origin of the element being edited, or -1.
	editOrigin int
	editor     textarea.Model

	renderer    *markdown.Renderer
	useMarkdown bool
}

var _ transcript.View = (*MessageView)(nil)

// NewMessageView creates a message view with the given dimensions.
func NewMessageView(width, height int, useMarkdown bool) *MessageView {
	vp := viewport.New(width, height)
	vp.YPosition = 0
	return &MessageView{
		viewport:    vp,
		width:       width,
		height:      height,
		atBottom:    true,
		selected:    -1,
		editOrigin:  -1,
		renderer:    markdown.NewRenderer(),
		useMarkdown: useMarkdown,
	}
}

// Render materializes a message element per opts.
func (v *MessageView) Render(msg store.Message, opts transcript.RenderOptions) {
	el := element{origin: opts.Origin, msg: msg, lines: v.renderBody(msg)}

	inserted := false
	if opts.BeforeOrigin >= 0 {
		for i := range v.elements {
			if v.elements[i].origin == opts.BeforeOrigin {
				v.elements = append(v.elements[:i], append([]element{el}, v.elements[i:]...)...)
				inserted = true
				break
			}
		}
	}
	if !inserted {
		v.elements = append(v.elements, el)
	}

	v.refresh()
	if !opts.SuppressScroll {
		v.viewport.GotoBottom()
		v.atBottom = true
	}
}

// Remove discards the element tagged with origin, if present. Log
// indices did not shift (this is the append-trim path), so other tags
// are left alone.
func (v *MessageView) Remove(origin int) {
	for i := range v.elements {
		if v.elements[i].origin == origin {
			v.elements = append(v.elements[:i], v.elements[i+1:]...)
			break
		}
	}
	if v.selected == origin {
		v.selected = -1
	}
	v.refresh()
}

// RemoveDeleted discards the element for a deleted log index and
// shifts the tags of every later element down by one, keeping the
// element-to-log mapping exact after the log's indices moved.
func (v *MessageView) RemoveDeleted(index int) {
	kept := v.elements[:0]
	for _, el := range v.elements {
		if el.origin == index {
			continue
		}
		if el.origin > index {
			el.origin--
		}
		kept = append(kept, el)
	}
	v.elements = kept

	if v.selected == index {
		v.selected = -1
	} else if v.selected > index {
		v.selected--
	}
	if v.editOrigin == index {
		v.editOrigin = -1
	} else if v.editOrigin > index {
		v.editOrigin--
	}
	v.refresh()
}

// Clear drops every element.
func (v *MessageView) Clear() {
	v.elements = nil
	v.selected = -1
	v.editOrigin = -1
	v.refresh()
}

// ScrollToBottom scrolls the viewport to the newest message.
func (v *MessageView) ScrollToBottom() {
	v.viewport.GotoBottom()
	v.atBottom = true
}

// Elements returns the materialized elements in view order.
func (v *MessageView) Elements() []transcript.Element {
	out := make([]transcript.Element, len(v.elements))
	for i, el := range v.elements {
		out[i] = transcript.Element{Origin: el.origin, Editing: el.editing}
	}
	return out
}

// SetLoadMoreVisible shows or hides the earlier-history banner.
func (v *MessageView) SetLoadMoreVisible(visible bool) {
	v.loadMore = visible
	v.refresh()
}

// SetSize updates the viewport dimensions, re-rendering message bodies
// when the width changed.
func (v *MessageView) SetSize(width, height int) {
	rerender := width != v.width
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height
	if rerender {
		for i := range v.elements {
			v.elements[i].lines = v.renderBody(v.elements[i].msg)
		}
	}
	v.refresh()
}

// Update handles scroll keys and mouse wheel for the viewport.
func (v *MessageView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	v.atBottom = v.viewport.AtBottom()
	return cmd
}

// View returns the rendered viewport.
func (v *MessageView) View() string {
	return v.viewport.View()
}

// MoveSelection moves the selection by delta view positions, clamping
// at the ends. With no current selection it starts at the newest
// element.
func (v *MessageView) MoveSelection(delta int) {
	if len(v.elements) == 0 {
		return
	}
	pos := v.selectedPos()
	if pos < 0 {
		pos = len(v.elements) - 1
	} else {
		pos += delta
		if pos < 0 {
			pos = 0
		}
		if pos >= len(v.elements) {
			pos = len(v.elements) - 1
		}
	}
	v.selected = v.elements[pos].origin
	v.refresh()
	v.scrollToSelected(pos)
}

// SelectLast selects the newest element, if any.
func (v *MessageView) SelectLast() {
	if len(v.elements) == 0 {
		v.selected = -1
		return
	}
	v.selected = v.elements[len(v.elements)-1].origin
	v.refresh()
}

// ClearSelection drops the selection.
func (v *MessageView) ClearSelection() {
	v.selected = -1
	v.refresh()
}

// SelectedOrigin returns the selected element's log index.
func (v *MessageView) SelectedOrigin() (int, bool) {
	if v.selectedPos() < 0 {
		return 0, false
	}
	return v.selected, true
}

// SelectedMessage returns the selected element's message.
func (v *MessageView) SelectedMessage() (store.Message, bool) {
	pos := v.selectedPos()
	if pos < 0 {
		return store.Message{}, false
	}
	return v.elements[pos].msg, true
}

// StartEdit puts the selected element into in-place edit state and
// returns true if an edit actually started.
func (v *MessageView) StartEdit() bool {
	pos := v.selectedPos()
	if pos < 0 {
		return false
	}
	v.editOrigin = v.elements[pos].origin
	v.elements[pos].editing = true

	ta := textarea.New()
	ta.MaxHeight = 8
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetValue(v.elements[pos].msg.Content)
	ta.Focus()
	v.editor = ta

	v.refresh()
	return true
}

// UpdateEditor routes a message to the inline editor.
func (v *MessageView) UpdateEditor(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	v.refresh()
	return cmd
}

// EditorValue returns the inline editor's current text.
func (v *MessageView) EditorValue() string {
	return v.editor.Value()
}

// EndEdit leaves edit state. The caller persists the new content (or
// not, on cancel) and calls UpdateMessage separately.
func (v *MessageView) EndEdit() {
	for i := range v.elements {
		if v.elements[i].origin == v.editOrigin {
			v.elements[i].editing = false
		}
	}
	v.editOrigin = -1
	v.refresh()
}

// EditOrigin returns the log index of the element being edited.
func (v *MessageView) EditOrigin() (int, bool) {
	if v.editOrigin < 0 {
		return 0, false
	}
	return v.editOrigin, true
}

// UpdateMessage replaces the content of the element tagged with
// origin, re-rendering its body.
func (v *MessageView) UpdateMessage(origin int, msg store.Message) {
	for i := range v.elements {
		if v.elements[i].origin == origin {
			v.elements[i].msg = msg
			v.elements[i].lines = v.renderBody(msg)
			break
		}
	}
	v.refresh()
}

func (v *MessageView) selectedPos() int {
	if v.selected < 0 {
		return -1
	}
	for i := range v.elements {
		if v.elements[i].origin == v.selected {
			return i
		}
	}
	return -1
}

// scrollToSelected keeps the selected element's header in view.
func (v *MessageView) scrollToSelected(pos int) {
	line := 0
	if v.loadMore {
		line += 2
	}
	for i := 0; i < pos; i++ {
		line += len(v.elements[i].lines) + 2
	}
	if line < v.viewport.YOffset {
		v.viewport.SetYOffset(line)
	} else if line >= v.viewport.YOffset+v.height {
		v.viewport.SetYOffset(line - v.height + 1)
	}
	v.atBottom = v.viewport.AtBottom()
}

// renderBody renders a message body to display lines.
func (v *MessageView) renderBody(msg store.Message) []string {
	width := v.width - 2
	if width < 1 {
		width = 1
	}
	switch msg.Role {
	case "user":
		lines := markdown.WrapText(msg.Content, width-2)
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = userPrefixStyle.Render("> ") + userTextStyle.Render(l)
		}
		if len(out) == 0 {
			out = []string{userPrefixStyle.Render("> ")}
		}
		return out
	case "system":
		lines := markdown.WrapText(msg.Content, width)
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = systemStyle.Render(l)
		}
		return out
	default:
		if v.useMarkdown {
			return v.renderer.RenderLines(msg.Content, width)
		}
		return markdown.WrapText(msg.Content, width)
	}
}

// refresh rebuilds the viewport content from the element list.
func (v *MessageView) refresh() {
	var sb strings.Builder

	if v.loadMore {
		sb.WriteString(bannerStyle.Render("↑ earlier history"))
		sb.WriteString("\n\n")
	}

	if len(v.elements) == 0 {
		sb.WriteString(lipgloss.NewStyle().
			Width(v.width).
			Align(lipgloss.Center).
			Foreground(styles.TextMuted).
			Render("\n\nNo messages — type below to start"))
	}

	for i := range v.elements {
		el := &v.elements[i]
		if i > 0 {
			sb.WriteString("\n\n")
		}

		header := roleLabel(el.msg.Role)
		if el.origin == v.selected {
			header = selectedStyle.Render("❯ ") + header
		}
		sb.WriteString(header)
		sb.WriteString("\n")

		if el.editing {
			sb.WriteString(v.editor.View())
		} else {
			sb.WriteString(strings.Join(el.lines, "\n"))
		}
	}

	wasAtBottom := v.atBottom
	v.viewport.SetContent(sb.String())
	if wasAtBottom {
		v.viewport.GotoBottom()
	}
}

func roleLabel(role string) string {
	switch role {
	case "user":
		return userPrefixStyle.Render("you")
	case "system":
		return systemStyle.Render("system")
	default:
		return styles.Title.Render(role)
	}
}
