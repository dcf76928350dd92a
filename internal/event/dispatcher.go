// Package event carries backing-log mutation notifications between the
// host chat components and the transcript windowing overlay.
//
// Delivery is two-phase: for every published event, all PhaseHost
// subscribers run before any PhaseOverlay subscriber. The overlay
// handlers therefore always observe a view the host has already
// finished updating for that event, without any timing tricks.
package event

import (
	"log/slog"
	"sync"
)

// MessageAppended signals that one message was appended to the backing
// log at Index (== new log length - 1).
type MessageAppended struct {
	Index int
}

// MessageDeleted signals that the message at Index was removed from
// the backing log; later indices have shifted down by one.
type MessageDeleted struct {
	Index int
}

// ContextSwitched signals that the active session changed and the view
// must be rebuilt from the new backing log.
type ContextSwitched struct {
	SessionID string
}

// Phase orders subscriber execution within a single Publish call.
type Phase int

const (
	// PhaseHost is for the host's own native render/removal handling.
	PhaseHost Phase = iota
	// PhaseOverlay is for handlers that adjust the host's result, such
	// as the transcript window controller.
	PhaseOverlay
)

// Handler receives a published event.
type Handler func(event any)

// Dispatcher fans events out to subscribers, host phase first.
// Publish is synchronous; all delivery happens on the caller's
// goroutine, which in this application is the bubbletea update loop.
type Dispatcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	handlers map[Phase][]Handler
	closed   bool
}

// NewWithLogger creates a dispatcher that logs deliveries at debug level.
func NewWithLogger(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[Phase][]Handler),
	}
}

// Subscribe registers a handler for the given phase. Handlers within a
// phase run in registration order.
func (d *Dispatcher) Subscribe(phase Phase, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[phase] = append(d.handlers[phase], h)
}

// Publish delivers the event to all host-phase handlers, then all
// overlay-phase handlers.
func (d *Dispatcher) Publish(event any) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return
	}
	host := d.handlers[PhaseHost]
	overlay := d.handlers[PhaseOverlay]
	d.mu.RUnlock()

	d.logger.Debug("dispatch event", "type", eventName(event),
		"host", len(host), "overlay", len(overlay))

	for _, h := range host {
		h(event)
	}
	for _, h := range overlay {
		h(event)
	}
}

// Close drops all subscriptions; subsequent publishes are no-ops.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.handlers = make(map[Phase][]Handler)
}

func eventName(event any) string {
	switch event.(type) {
	case MessageAppended:
		return "message-appended"
	case MessageDeleted:
		return "message-deleted"
	case ContextSwitched:
		return "context-switched"
	default:
		return "unknown"
	}
}
