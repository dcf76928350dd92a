package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "parley.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, session string, contents ...string) {
	t.Helper()
	if err := s.EnsureSession(session, session); err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	for _, c := range contents {
		if _, err := s.Append(session, "user", c); err != nil {
			t.Fatalf("append %q: %v", c, err)
		}
	}
}

func TestAppend_AssignsDenseSeq(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "default")

	for want := 0; want < 3; want++ {
		msg, err := s.Append("default", "user", "hi")
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if msg.Seq != want {
			t.Fatalf("seq = %d, want %d", msg.Seq, want)
		}
	}
}

func TestAppend_SeqIsPerSession(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "a", "one", "two")
	seed(t, s, "b")

	msg, err := s.Append("b", "user", "first in b")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.Seq != 0 {
		t.Fatalf("seq in fresh session = %d, want 0", msg.Seq)
	}
}

func TestMessages_OrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "default", "a", "b", "c")

	msgs, err := s.Messages("default")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("count = %d, want 3", len(msgs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].Seq != i || msgs[i].Content != want {
			t.Fatalf("msgs[%d] = {seq %d, %q}, want {seq %d, %q}", i, msgs[i].Seq, msgs[i].Content, i, want)
		}
	}
}

func TestDelete_ResequencesLaterRows(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "default", "a", "b", "c", "d")

	if err := s.Delete("default", 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	msgs, err := s.Messages("default")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	want := []string{"a", "c", "d"}
	if len(msgs) != len(want) {
		t.Fatalf("count = %d, want %d", len(msgs), len(want))
	}
	for i := range want {
		if msgs[i].Seq != i || msgs[i].Content != want[i] {
			t.Fatalf("msgs[%d] = {seq %d, %q}, want {seq %d, %q}", i, msgs[i].Seq, msgs[i].Content, i, want[i])
		}
	}
}

func TestDelete_OutOfRange(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "default", "a")

	if err := s.Delete("default", 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestUpdateContent(t *testing.T) {
	s := openTestStore(t)
	seed(t, s, "default", "before")

	if err := s.UpdateContent("default", 0, "after"); err != nil {
		t.Fatalf("update: %v", err)
	}
	msgs, _ := s.Messages("default")
	if msgs[0].Content != "after" {
		t.Fatalf("content = %q, want %q", msgs[0].Content, "after")
	}

	if err := s.UpdateContent("default", 9, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestEnsureSession_Idempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.EnsureSession("default", "Default"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := s.EnsureSession("default", "Renamed"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	ids, err := s.Sessions()
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "default" {
		t.Fatalf("sessions = %v, want [default]", ids)
	}
}
