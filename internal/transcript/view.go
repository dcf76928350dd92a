package transcript

import "github.com/marcus/parley/internal/store"

// Log is a read-only view of the backing message log. The window
// controller never mutates the log; all writes happen in the host.
type Log interface {
	Len() int
	At(i int) (store.Message, bool)
}

// Element describes one materialized message element in the view.
type Element struct {
	// Origin is the index the message had in the backing log when it
	// was rendered. It is an identity tag, not the element's position
	// in view order, and is never renumbered.
	Origin int
	// Editing reports whether the element is in an in-place edit state.
	Editing bool
}

// RenderOptions control how a message element is materialized.
type RenderOptions struct {
	// Origin is the backing-log index to tag the element with.
	Origin int
	// SuppressScroll keeps the view from auto-scrolling on render.
	SuppressScroll bool
	// BeforeOrigin, when >= 0, inserts the element immediately before
	// the element tagged with that origin. Otherwise the element is
	// appended at the tail.
	BeforeOrigin int
}

// View is the render primitive the window controller drives. The chat
// viewport implements it; tests use a fake.
type View interface {
	Render(msg store.Message, opts RenderOptions)
	// Remove discards the element tagged with origin, if present.
	Remove(origin int)
	Clear()
	ScrollToBottom()
	// Elements returns the materialized elements in view order,
	// oldest first.
	Elements() []Element
	// SetLoadMoreVisible shows or hides the host's load-earlier
	// affordance. It is meaningless while the view is windowed.
	SetLoadMoreVisible(visible bool)
}
