// Package chat is the transcript panel: it owns the in-memory message
// log, persists every mutation to the store, and publishes log events
// that the windowing controller reacts to in the overlay phase.
package chat

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/parley/internal/config"
	"github.com/marcus/parley/internal/event"
	"github.com/marcus/parley/internal/features"
	"github.com/marcus/parley/internal/plugin"
	"github.com/marcus/parley/internal/store"
	"github.com/marcus/parley/internal/transcript"
)

const (
	pluginID   = "chat"
	pluginName = "Chat"

	defaultSessionID = "default"

	// limitStep is how much the +/- keys move the window limit.
	limitStep = 5
)

// mode is the panel interaction mode.
type mode int

const (
	modeCompose mode = iota // typing into the input field
	modeSelect              // navigating messages
	modeEdit                // editing a message in place
)

// memoryLog adapts the plugin's message slice to transcript.Log.
type memoryLog struct {
	msgs *[]store.Message
}

func (l memoryLog) Len() int { return len(*l.msgs) }

func (l memoryLog) At(i int) (store.Message, bool) {
	if i < 0 || i >= len(*l.msgs) {
		return store.Message{}, false
	}
	return (*l.msgs)[i], true
}

// Plugin implements the chat TUI plugin.
type Plugin struct {
	ctx     *plugin.Context
	focused bool
	width   int
	height  int
	epoch   uint64

	sessionID string
	messages  []store.Message

	mode   mode
	view   *MessageView
	input  *Input
	window *transcript.Window
	tailer *store.Tailer
	err    error
}

// Compile-time interface assertion.
var _ plugin.Plugin = (*Plugin)(nil)
var _ plugin.TextInputConsumer = (*Plugin)(nil)

// New creates a new Chat plugin.
func New() *Plugin {
	return &Plugin{}
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return pluginName }

// Init initializes the plugin with context.
func (p *Plugin) Init(ctx *plugin.Context) error {
	p.ctx = ctx
	p.messages = nil
	p.sessionID = ""
	p.err = nil
	p.epoch = ctx.Epoch
	p.mode = modeCompose

	useMarkdown := ctx.Config == nil || ctx.Config.UI.Markdown
	p.view = NewMessageView(80, 20, useMarkdown)
	p.input = NewInput()
	p.input.Focus()

	wcfg := transcript.Config{Enabled: true, Limit: 50}
	if ctx.Config != nil {
		wcfg = transcript.Config{
			Enabled: ctx.Config.Window.Enabled,
			Limit:   ctx.Config.Window.Limit,
		}
	}
	p.window = transcript.New(memoryLog{&p.messages}, p.view, wcfg, ctx.Logger)

	if ctx.EventBus != nil {
		ctx.EventBus.Subscribe(event.PhaseHost, p.handleHostEvent)
		ctx.EventBus.Subscribe(event.PhaseOverlay, p.handleOverlayEvent)
	}

	if ctx.Config != nil && ctx.Config.Store.TailTranscripts && ctx.Store != nil {
		tailer, err := store.NewTailer(ctx.Config.Store.TranscriptDir, ctx.Logger)
		if err != nil {
			// The panel works without live import; note it and move on.
			if ctx.Logger != nil {
				ctx.Logger.Warn("transcript tailer unavailable", "err", err)
			}
		} else {
			p.tailer = tailer
		}
	}

	return nil
}

// Start begins plugin operation: load the initial session transcript
// and start listening for tailed messages.
func (p *Plugin) Start() tea.Cmd {
	if p.ctx == nil || p.ctx.Store == nil {
		return nil
	}

	cmds := []tea.Cmd{loadTranscript(p.ctx.Store, p.epoch)}
	if p.tailer != nil {
		cmds = append(cmds, listenForTail(p.tailer.Events(), p.epoch))
	}
	return tea.Batch(cmds...)
}

// Stop cleans up plugin resources.
func (p *Plugin) Stop() {
	if p.tailer != nil {
		p.tailer.Close()
		p.tailer = nil
	}
	p.messages = nil
	p.sessionID = ""
	p.err = nil
}

// Update handles tea messages.
func (p *Plugin) Update(msg tea.Msg) (plugin.Plugin, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = m.Width
		p.height = m.Height
		p.view.SetSize(m.Width, p.viewportHeight(m.Height))
		return p, nil

	case plugin.PluginFocusedMsg:
		if p.mode == modeCompose {
			p.input.Focus()
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(m)

	case TranscriptLoadedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.sessionID = m.SessionID
		p.messages = m.Messages
		p.publish(event.ContextSwitched{SessionID: m.SessionID})
		return p, nil

	case TailedMessageMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.importTailed(m.Event)
		if p.tailer == nil {
			return p, nil
		}
		return p, listenForTail(p.tailer.Events(), p.epoch)

	case TailerClosedMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.tailer = nil
		return p, nil

	case StoreErrorMsg:
		if plugin.IsStale(p.ctx, m) {
			return p, nil
		}
		p.err = m.Err
		if p.ctx.Logger != nil {
			p.ctx.Logger.Error("store operation failed", "err", m.Err)
		}
		return p, nil

	case SendPromptMsg:
		p.appendMessage("user", m.Content)
		return p, nil
	}

	return p, nil
}

// handleKey dispatches a key press per the current interaction mode.
func (p *Plugin) handleKey(msg tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch p.mode {
	case modeCompose:
		if msg.Type == tea.KeyEsc {
			p.mode = modeSelect
			p.input.Blur()
			p.view.SelectLast()
			return p, nil
		}
		newInput, cmd := p.input.Update(msg)
		p.input = newInput
		return p, cmd

	case modeSelect:
		return p.handleSelectKey(msg)

	case modeEdit:
		return p.handleEditKey(msg)
	}
	return p, nil
}

func (p *Plugin) handleSelectKey(msg tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		p.view.MoveSelection(-1)
		return p, nil
	case "down", "j":
		p.view.MoveSelection(1)
		return p, nil
	case "d":
		p.deleteSelected()
		return p, nil
	case "e":
		if features.IsEnabled(features.InlineEdit.Name) && p.view.StartEdit() {
			p.mode = modeEdit
		}
		return p, nil
	case "y":
		if features.IsEnabled(features.ClipboardYank.Name) {
			p.copySelected()
		}
		return p, nil
	case "w":
		cfg := p.window.Config()
		cfg.Enabled = !cfg.Enabled
		p.applyWindowConfig(cfg)
		return p, nil
	case "+", "=":
		cfg := p.window.Config()
		cfg.Limit += limitStep
		p.applyWindowConfig(cfg)
		return p, nil
	case "-":
		cfg := p.window.Config()
		cfg.Limit -= limitStep
		if cfg.Limit < 0 {
			cfg.Limit = 0
		}
		p.applyWindowConfig(cfg)
		return p, nil
	case "n":
		p.cycleSession()
		return p, nil
	case "i", "esc":
		p.mode = modeCompose
		p.view.ClearSelection()
		p.input.Focus()
		return p, nil
	}

	return p, p.view.Update(msg)
}

func (p *Plugin) handleEditKey(msg tea.KeyMsg) (plugin.Plugin, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		p.commitEdit()
		p.mode = modeSelect
		return p, nil
	case tea.KeyEsc:
		p.view.EndEdit()
		p.mode = modeSelect
		return p, nil
	}
	return p, p.view.UpdateEditor(msg)
}

// IsFocused returns whether the plugin is focused.
func (p *Plugin) IsFocused() bool { return p.focused }

// SetFocused sets the focus state.
func (p *Plugin) SetFocused(f bool) { p.focused = f }

// ConsumesTextInput reports whether the plugin is in a text-input context.
func (p *Plugin) ConsumesTextInput() bool {
	if p.mode == modeEdit {
		return true
	}
	return p.mode == modeCompose && p.input != nil && p.input.IsFocused()
}

// WindowConfig exposes the current windowing settings for the status bar.
func (p *Plugin) WindowConfig() transcript.Config {
	if p.window == nil {
		return transcript.Config{}
	}
	return p.window.Config()
}

// handleHostEvent is the host-phase subscriber: it applies each log
// mutation to the view natively, before the windowing overlay runs.
func (p *Plugin) handleHostEvent(ev any) {
	switch e := ev.(type) {
	case event.MessageAppended:
		if msg, ok := (memoryLog{&p.messages}).At(e.Index); ok {
			p.view.Render(msg, transcript.RenderOptions{
				Origin:       e.Index,
				BeforeOrigin: -1,
			})
		}
	case event.MessageDeleted:
		p.view.RemoveDeleted(e.Index)
	case event.ContextSwitched:
		p.renderNative()
	}
}

// handleOverlayEvent is the overlay-phase subscriber: the windowing
// controller adjusts whatever the host phase just did.
func (p *Plugin) handleOverlayEvent(ev any) {
	switch ev.(type) {
	case event.MessageAppended:
		p.window.HandleAppend()
	case event.MessageDeleted:
		p.window.HandleDelete()
	case event.ContextSwitched:
		p.window.Resync()
	}
}

// renderNative rebuilds the full untruncated transcript, the way the
// view looks with windowing off.
func (p *Plugin) renderNative() {
	p.view.Clear()
	for i, msg := range p.messages {
		p.view.Render(msg, transcript.RenderOptions{
			Origin:         i,
			SuppressScroll: true,
			BeforeOrigin:   -1,
		})
	}
	p.view.SetLoadMoreVisible(len(p.messages) > 0)
	p.view.ScrollToBottom()
}

// appendMessage persists a message, extends the in-memory log, and
// publishes the append event.
func (p *Plugin) appendMessage(role, content string) {
	if p.ctx == nil || p.ctx.Store == nil || p.sessionID == "" {
		return
	}
	msg, err := p.ctx.Store.Append(p.sessionID, role, content)
	if err != nil {
		p.err = err
		if p.ctx.Logger != nil {
			p.ctx.Logger.Error("append message", "session", p.sessionID, "err", err)
		}
		return
	}
	p.messages = append(p.messages, msg)
	p.publish(event.MessageAppended{Index: len(p.messages) - 1})
}

// deleteSelected removes the selected message from the store and the
// in-memory log, then publishes the delete event.
func (p *Plugin) deleteSelected() {
	index, ok := p.view.SelectedOrigin()
	if !ok || p.ctx == nil || p.ctx.Store == nil {
		return
	}
	if err := p.ctx.Store.Delete(p.sessionID, index); err != nil {
		p.err = err
		if p.ctx.Logger != nil {
			p.ctx.Logger.Error("delete message", "session", p.sessionID, "index", index, "err", err)
		}
		return
	}
	p.messages = append(p.messages[:index], p.messages[index+1:]...)
	for i := index; i < len(p.messages); i++ {
		p.messages[i].Seq = i
	}
	p.publish(event.MessageDeleted{Index: index})
}

// commitEdit persists the inline editor's content for the edited
// message and refreshes its element.
func (p *Plugin) commitEdit() {
	index, ok := p.view.EditOrigin()
	if !ok {
		return
	}
	content := p.view.EditorValue()
	p.view.EndEdit()

	if content == "" || index >= len(p.messages) || p.messages[index].Content == content {
		return
	}
	if err := p.ctx.Store.UpdateContent(p.sessionID, index, content); err != nil {
		p.err = err
		if p.ctx.Logger != nil {
			p.ctx.Logger.Error("edit message", "session", p.sessionID, "index", index, "err", err)
		}
		return
	}
	p.messages[index].Content = content
	p.view.UpdateMessage(index, p.messages[index])
}

// copySelected puts the selected message's content on the system
// clipboard.
func (p *Plugin) copySelected() {
	msg, ok := p.view.SelectedMessage()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(msg.Content); err != nil {
		if p.ctx != nil && p.ctx.Logger != nil {
			p.ctx.Logger.Warn("clipboard write failed", "err", err)
		}
	}
}

// applyWindowConfig pushes new windowing settings through the
// controller and schedules the config for persistence.
func (p *Plugin) applyWindowConfig(cfg transcript.Config) {
	p.window.SetConfig(cfg)
	p.window.Resync()

	if p.ctx != nil && p.ctx.Config != nil {
		p.ctx.Config.Window = config.WindowConfig{Enabled: cfg.Enabled, Limit: cfg.Limit}
		if p.ctx.Saver != nil {
			p.ctx.Saver.Schedule(p.ctx.Config)
		}
	}
}

// cycleSession switches to the next known session, wrapping around.
func (p *Plugin) cycleSession() {
	if p.ctx == nil || p.ctx.Store == nil {
		return
	}
	ids, err := p.ctx.Store.Sessions()
	if err != nil || len(ids) < 2 {
		return
	}
	next := ids[0]
	for i, id := range ids {
		if id == p.sessionID {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	if next == p.sessionID {
		return
	}

	msgs, err := p.ctx.Store.Messages(next)
	if err != nil {
		p.err = err
		return
	}
	p.sessionID = next
	p.messages = msgs
	p.publish(event.ContextSwitched{SessionID: next})
}

// importTailed persists one tailed message and, when it belongs to the
// active session, feeds it through the append path.
func (p *Plugin) importTailed(ev store.TailEvent) {
	if p.ctx == nil || p.ctx.Store == nil {
		return
	}
	if err := p.ctx.Store.EnsureSession(ev.SessionID, ev.SessionID); err != nil {
		p.err = err
		return
	}
	msg, err := p.ctx.Store.Append(ev.SessionID, ev.Role, ev.Content)
	if err != nil {
		p.err = err
		if p.ctx.Logger != nil {
			p.ctx.Logger.Error("import tailed message", "session", ev.SessionID, "err", err)
		}
		return
	}
	if ev.SessionID != p.sessionID {
		return
	}
	p.messages = append(p.messages, msg)
	p.publish(event.MessageAppended{Index: len(p.messages) - 1})
}

func (p *Plugin) publish(ev any) {
	if p.ctx != nil && p.ctx.EventBus != nil {
		p.ctx.EventBus.Publish(ev)
	}
}

func (p *Plugin) viewportHeight(total int) int {
	inputHeight := 3
	statusHeight := 1
	h := total - inputHeight - statusHeight
	if h < 1 {
		h = 1
	}
	return h
}

// loadTranscript reads the initial session from the store, creating
// the default session on first run.
func loadTranscript(s *store.Store, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		ids, err := s.Sessions()
		if err != nil {
			return StoreErrorMsg{Err: fmt.Errorf("list sessions: %w", err), Epoch: epoch}
		}

		sessionID := defaultSessionID
		if len(ids) > 0 {
			sessionID = ids[0]
		} else if err := s.EnsureSession(sessionID, "Default"); err != nil {
			return StoreErrorMsg{Err: err, Epoch: epoch}
		}

		msgs, err := s.Messages(sessionID)
		if err != nil {
			return StoreErrorMsg{Err: err, Epoch: epoch}
		}
		return TranscriptLoadedMsg{SessionID: sessionID, Messages: msgs, Epoch: epoch}
	}
}

// listenForTail waits for the next tailed message.
func listenForTail(ch <-chan store.TailEvent, epoch uint64) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return TailerClosedMsg{Epoch: epoch}
		}
		return TailedMessageMsg{Event: ev, Epoch: epoch}
	}
}
