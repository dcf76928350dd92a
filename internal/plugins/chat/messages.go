package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/parley/internal/store"
)

// TranscriptLoadedMsg carries a session's full message log read from
// the store. Implements tea.Msg and plugin.EpochMessage.
type TranscriptLoadedMsg struct {
	SessionID string
	Messages  []store.Message
	Epoch     uint64 // Epoch when the load was issued (for stale detection)
}

// GetEpoch implements plugin.EpochMessage.
func (m TranscriptLoadedMsg) GetEpoch() uint64 { return m.Epoch }

// SessionListMsg carries the known session IDs for cycling.
// Implements tea.Msg and plugin.EpochMessage.
type SessionListMsg struct {
	Sessions []string
	Epoch    uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m SessionListMsg) GetEpoch() uint64 { return m.Epoch }

// TailedMessageMsg carries one message parsed from an external agent
// transcript. Implements tea.Msg and plugin.EpochMessage.
type TailedMessageMsg struct {
	Event store.TailEvent
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m TailedMessageMsg) GetEpoch() uint64 { return m.Epoch }

// TailerClosedMsg signals that the transcript tailer channel closed.
// Implements tea.Msg and plugin.EpochMessage.
type TailerClosedMsg struct {
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m TailerClosedMsg) GetEpoch() uint64 { return m.Epoch }

// StoreErrorMsg carries a persistence error.
// Implements tea.Msg and plugin.EpochMessage.
type StoreErrorMsg struct {
	Err   error
	Epoch uint64
}

// GetEpoch implements plugin.EpochMessage.
func (m StoreErrorMsg) GetEpoch() uint64 { return m.Epoch }

// SendPromptMsg signals that the user submitted a message.
// Implements tea.Msg only (synchronous message, no epoch needed).
type SendPromptMsg struct {
	Content string
}

var _ tea.Msg = TranscriptLoadedMsg{}
var _ tea.Msg = SessionListMsg{}
var _ tea.Msg = TailedMessageMsg{}
var _ tea.Msg = TailerClosedMsg{}
var _ tea.Msg = StoreErrorMsg{}
var _ tea.Msg = SendPromptMsg{}
