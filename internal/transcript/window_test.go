package transcript

import (
	"fmt"
	"testing"

	"github.com/marcus/parley/internal/store"
)

// fakeLog is an in-memory backing log.
type fakeLog struct {
	msgs []store.Message
}

func newFakeLog(n int) *fakeLog {
	l := &fakeLog{}
	for i := 0; i < n; i++ {
		l.msgs = append(l.msgs, store.Message{
			ID:      int64(i + 1),
			Seq:     i,
			Role:    "user",
			Content: fmt.Sprintf("message %d", i),
		})
	}
	return l
}

func (l *fakeLog) Len() int { return len(l.msgs) }

func (l *fakeLog) At(i int) (store.Message, bool) {
	if i < 0 || i >= len(l.msgs) {
		return store.Message{}, false
	}
	return l.msgs[i], true
}

func (l *fakeLog) append() {
	i := len(l.msgs)
	l.msgs = append(l.msgs, store.Message{ID: int64(i + 1), Seq: i, Content: fmt.Sprintf("message %d", i)})
}

func (l *fakeLog) deleteAt(i int) {
	l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
}

// fakeView records materialized elements in view order.
type fakeView struct {
	elements []Element
	loadMore bool
	scrolls  int
	clears   int
}

func (v *fakeView) Render(msg store.Message, opts RenderOptions) {
	el := Element{Origin: opts.Origin}
	if opts.BeforeOrigin >= 0 {
		for i, existing := range v.elements {
			if existing.Origin == opts.BeforeOrigin {
				v.elements = append(v.elements[:i], append([]Element{el}, v.elements[i:]...)...)
				return
			}
		}
	}
	v.elements = append(v.elements, el)
}

func (v *fakeView) Remove(origin int) {
	for i, el := range v.elements {
		if el.Origin == origin {
			v.elements = append(v.elements[:i], v.elements[i+1:]...)
			return
		}
	}
}

func (v *fakeView) Clear() {
	v.elements = nil
	v.clears++
}

func (v *fakeView) ScrollToBottom() { v.scrolls++ }

func (v *fakeView) Elements() []Element {
	out := make([]Element, len(v.elements))
	copy(out, v.elements)
	return out
}

func (v *fakeView) SetLoadMoreVisible(visible bool) { v.loadMore = visible }

func (v *fakeView) origins() []int {
	out := make([]int, len(v.elements))
	for i, el := range v.elements {
		out[i] = el.Origin
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResync_WindowSize(t *testing.T) {
	tests := []struct {
		name   string
		length int
		limit  int
		want   int
	}{
		{"empty log", 0, 20, 0},
		{"log shorter than limit", 5, 20, 5},
		{"log equals limit", 20, 20, 20},
		{"log longer than limit", 25, 20, 20},
		{"limit one", 100, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newFakeLog(tt.length)
			view := &fakeView{}
			w := New(log, view, Config{Enabled: true, Limit: tt.limit}, nil)
			w.Resync()
			if got := len(view.elements); got != tt.want {
				t.Fatalf("visible count = %d, want %d", got, tt.want)
			}
			if !w.Active() {
				t.Fatal("window should be active after enabled resync")
			}
		})
	}
}

func TestResync_SuffixOrigins(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync()

	want := make([]int, 0, 20)
	for i := 5; i < 25; i++ {
		want = append(want, i)
	}
	if got := view.origins(); !equalInts(got, want) {
		t.Fatalf("origins = %v, want %v", got, want)
	}
	if view.scrolls == 0 {
		t.Fatal("resync should scroll to bottom")
	}
	if view.loadMore {
		t.Fatal("resync should hide the load-more affordance")
	}
}

func TestResync_LimitNotPositive_RendersNothing(t *testing.T) {
	for _, limit := range []int{0, -3} {
		log := newFakeLog(10)
		view := &fakeView{}
		w := New(log, view, Config{Enabled: true, Limit: limit}, nil)
		w.Resync()
		if len(view.elements) != 0 {
			t.Fatalf("limit=%d: visible count = %d, want 0", limit, len(view.elements))
		}
		if !w.Active() {
			t.Fatalf("limit=%d: window should still be marked active", limit)
		}
	}
}

func TestResync_DisableRestoresFullView(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync()
	if len(view.elements) != 20 {
		t.Fatalf("setup: visible count = %d, want 20", len(view.elements))
	}

	w.SetConfig(Config{Enabled: false, Limit: 20})
	w.Resync()

	if got := len(view.elements); got != 25 {
		t.Fatalf("visible count after disable = %d, want 25", got)
	}
	if w.Active() {
		t.Fatal("window should be inactive after disable")
	}
	if !view.loadMore {
		t.Fatal("disable should restore the load-more affordance")
	}

	// Disabled and inactive: further resyncs must not touch the view.
	clears := view.clears
	w.Resync()
	if view.clears != clears {
		t.Fatal("disabled inactive resync should be a no-op")
	}
}

func TestResync_EditGuard(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync()

	before := view.origins()
	view.elements[3].Editing = true

	log.append()
	w.Resync()

	if got := view.origins(); !equalInts(got, before) {
		t.Fatalf("origins changed during edit: %v, want %v", got, before)
	}

	// Guard clears with the edit state; the next resync proceeds.
	view.elements[3].Editing = false
	w.Resync()
	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count after edit ended = %d, want 20", got)
	}
	if got := view.elements[0].Origin; got != 6 {
		t.Fatalf("oldest origin after edit ended = %d, want 6", got)
	}
}

func TestHandleAppend_TrimsOldest(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync()

	// Host appends and renders the new message natively.
	log.append()
	msg, _ := log.At(25)
	view.Render(msg, RenderOptions{Origin: 25, BeforeOrigin: -1})

	w.HandleAppend()

	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count = %d, want 20", got)
	}
	if got := view.elements[0].Origin; got != 6 {
		t.Fatalf("oldest origin = %d, want 6", got)
	}
	if got := view.elements[19].Origin; got != 25 {
		t.Fatalf("newest origin = %d, want 25", got)
	}

	// Idempotent with no new append.
	w.HandleAppend()
	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count after repeat = %d, want 20", got)
	}
}

func TestHandleAppend_UnderCap_NoOp(t *testing.T) {
	log := newFakeLog(5)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync()

	w.HandleAppend()
	if got := len(view.elements); got != 5 {
		t.Fatalf("visible count = %d, want 5", got)
	}
}

func TestHandleAppend_Disabled_NoOp(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	for i := 0; i < 25; i++ {
		msg, _ := log.At(i)
		view.Render(msg, RenderOptions{Origin: i, BeforeOrigin: -1})
	}
	w := New(log, view, Config{Enabled: false, Limit: 20}, nil)

	w.HandleAppend()
	if got := len(view.elements); got != 25 {
		t.Fatalf("visible count = %d, want 25", got)
	}
}

func TestHandleDelete_BackfillsOneOlder(t *testing.T) {
	log := newFakeLog(26)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync() // origins [6..25]

	// Host deletes log index 10 and drops its element.
	log.deleteAt(10)
	view.Remove(10)

	w.HandleDelete()

	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count = %d, want 20", got)
	}
	if got := view.elements[0].Origin; got != 5 {
		t.Fatalf("backfilled origin = %d, want 5", got)
	}
}

func TestHandleDelete_NoOlderHistory(t *testing.T) {
	log := newFakeLog(5)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync() // origins [0..4]

	log.deleteAt(2)
	view.Remove(2)

	w.HandleDelete()
	if got := len(view.elements); got != 4 {
		t.Fatalf("visible count = %d, want 4", got)
	}
}

func TestHandleDelete_RecomputesShortfall(t *testing.T) {
	log := newFakeLog(30)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)
	w.Resync() // origins [10..29]

	// Burst of three deletions before the overlay handler runs once.
	for _, idx := range []int{12, 12, 12} {
		log.deleteAt(idx)
	}
	view.Remove(12)
	view.Remove(13)
	view.Remove(14)

	w.HandleDelete()

	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count = %d, want 20", got)
	}
	if got := view.elements[0].Origin; got != 7 {
		t.Fatalf("oldest origin = %d, want 7", got)
	}
}

func TestHandleDelete_EmptyViewRebuildsFromTail(t *testing.T) {
	log := newFakeLog(10)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 1}, nil)
	w.Resync() // origins [9]

	log.deleteAt(9)
	view.Remove(9)

	w.HandleDelete()
	if got := view.origins(); !equalInts(got, []int{8}) {
		t.Fatalf("origins = %v, want [8]", got)
	}
}

func TestHandleDelete_Disabled_NoOp(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: false, Limit: 20}, nil)
	w.HandleDelete()
	if len(view.elements) != 0 {
		t.Fatal("disabled delete handler must not render")
	}
}

// TestScenario_AppendThenDelete walks the full append/delete sequence:
// resync at L=25, one append, then a deletion in the middle of the log.
func TestScenario_AppendThenDelete(t *testing.T) {
	log := newFakeLog(25)
	view := &fakeView{}
	w := New(log, view, Config{Enabled: true, Limit: 20}, nil)

	w.Resync()
	if got := view.elements[0].Origin; got != 5 {
		t.Fatalf("oldest origin after resync = %d, want 5", got)
	}

	// Append: host renders origin 25, trim drops origin 5.
	log.append()
	msg, _ := log.At(25)
	view.Render(msg, RenderOptions{Origin: 25, BeforeOrigin: -1})
	w.HandleAppend()
	if got := view.origins()[0]; got != 6 {
		t.Fatalf("oldest origin after append = %d, want 6", got)
	}
	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count after append = %d, want 20", got)
	}

	// Delete at index 10: indices above 10 shift down in the log, the
	// element tags stay; one older message is backfilled.
	log.deleteAt(10)
	view.Remove(10)
	w.HandleDelete()

	if got := len(view.elements); got != 20 {
		t.Fatalf("visible count after delete = %d, want 20", got)
	}
	if got := view.elements[0].Origin; got != 5 {
		t.Fatalf("oldest origin after backfill = %d, want 5", got)
	}
}
