// Package transcript caps how many message elements the chat view
// materializes, keeping the bounded rendered window consistent with
// the unbounded backing log across appends, deletions, and session
// switches. The backing log itself is never written here.
package transcript

import "log/slog"

// Config holds the user-facing windowing settings.
type Config struct {
	Enabled bool
	Limit   int
}

// Window synchronizes the rendered message window with the backing
// log. All methods must be called from the UI update loop; there is no
// internal locking.
type Window struct {
	log    Log
	view   View
	cfg    Config
	logger *slog.Logger

	// active marks that the view currently holds a window produced by
	// this controller rather than the host's full rendering. Disabling
	// while active forces one full re-render to restore the log.
	active bool
}

// New creates a window controller over the given log and view.
func New(log Log, view View, cfg Config, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{log: log, view: view, cfg: cfg, logger: logger}
}

// Config returns the current windowing settings.
func (w *Window) Config() Config { return w.cfg }

// SetConfig replaces the windowing settings. Callers follow up with
// Resync; the two steps are split so settings UIs can batch changes.
func (w *Window) SetConfig(cfg Config) { w.cfg = cfg }

// Active reports whether the view currently holds a controller-built
// window.
func (w *Window) Active() bool { return w.active }

// Resync rebuilds the entire visible window from the backing log's
// tail. It is the cold path: activation, settings changes, and session
// switches. While any element is being edited in place the resync is
// skipped so unsaved edits are not discarded.
func (w *Window) Resync() {
	if w.editing() {
		w.logger.Debug("transcript resync skipped, edit in progress")
		return
	}

	if !w.cfg.Enabled {
		if w.active {
			w.renderAll()
			w.active = false
		}
		return
	}

	if w.cfg.Limit <= 0 {
		w.logger.Debug("transcript window limit not positive, rendering nothing",
			"limit", w.cfg.Limit)
		w.view.Clear()
		w.view.SetLoadMoreVisible(false)
		w.active = true
		return
	}

	length := w.log.Len()
	start := length - w.cfg.Limit
	if start < 0 {
		start = 0
	}

	w.view.Clear()
	for i := start; i < length; i++ {
		msg, ok := w.log.At(i)
		if !ok {
			continue
		}
		w.view.Render(msg, RenderOptions{Origin: i, SuppressScroll: true, BeforeOrigin: -1})
	}
	w.view.SetLoadMoreVisible(false)
	w.view.ScrollToBottom()
	w.active = true
}

// HandleAppend reacts to a single new message after the host has
// rendered it natively. If the window is now over capacity, the single
// oldest visible element is trimmed; nothing else changes, so the hot
// append path never pays for a full resync.
func (w *Window) HandleAppend() {
	if !w.cfg.Enabled {
		return
	}
	els := w.view.Elements()
	if len(els) <= w.cfg.Limit {
		return
	}
	w.view.Remove(els[0].Origin)
}

// HandleDelete reacts to a message removal after the host has dropped
// its element. While the visible count is under the limit and older
// history exists beyond the window, one older message at a time is
// backfilled in front of the current oldest element. The shortfall is
// recomputed each step, so bursts of deletions still converge.
func (w *Window) HandleDelete() {
	if !w.cfg.Enabled {
		return
	}
	for {
		els := w.view.Elements()
		count := len(els)
		if count >= w.cfg.Limit {
			return
		}
		if w.log.Len() <= count {
			return
		}
		if count == 0 {
			// Every element is gone; backfill has no anchor origin.
			w.Resync()
			return
		}

		oldest := els[0].Origin
		backfill := oldest - 1
		if backfill < 0 {
			return
		}
		msg, ok := w.log.At(backfill)
		if !ok {
			w.logger.Debug("transcript backfill index missing", "index", backfill)
			return
		}
		w.view.Render(msg, RenderOptions{
			Origin:         backfill,
			SuppressScroll: true,
			BeforeOrigin:   oldest,
		})
	}
}

// renderAll restores the full untruncated transcript.
func (w *Window) renderAll() {
	w.view.Clear()
	for i := 0; i < w.log.Len(); i++ {
		msg, ok := w.log.At(i)
		if !ok {
			continue
		}
		w.view.Render(msg, RenderOptions{Origin: i, SuppressScroll: true, BeforeOrigin: -1})
	}
	w.view.SetLoadMoreVisible(true)
	w.view.ScrollToBottom()
}

// editing reports whether any visible element is in an in-place edit
// state. Only Resync consults it; the incremental handlers never
// discard content, they only add or remove at the window boundary.
func (w *Window) editing() bool {
	for _, el := range w.view.Elements() {
		if el.Editing {
			return true
		}
	}
	return false
}
