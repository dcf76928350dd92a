// Package store persists chat transcripts in a local SQLite database.
// It is the authoritative message log; view components only ever read it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrIndexOutOfRange is returned when a message index does not exist
// in the requested session.
var ErrIndexOutOfRange = errors.New("message index out of range")

// Message is a single transcript entry. Seq is the message's position
// within its session, dense from 0; deletions resequence later rows.
type Message struct {
	ID        int64
	Seq       int
	Role      string // "user", "assistant", "system"
	Content   string
	CreatedAt time.Time
}

// Store wraps the SQLite database holding sessions and messages.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS messages (
	message_id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(session_id),
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_session_seq
	ON messages(session_id, seq);
`

// Open opens (creating if necessary) the store at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}

	// Serialize writers; the tailer goroutine appends concurrently with
	// the UI loop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSession creates the session row if it does not exist.
func (s *Store) EnsureSession(sessionID, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, title)
		VALUES (?, ?)
		ON CONFLICT(session_id) DO NOTHING
	`, sessionID, title)
	if err != nil {
		return fmt.Errorf("ensure session %q: %w", sessionID, err)
	}
	return nil
}

// Sessions returns all known session IDs, oldest first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT session_id FROM sessions ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}

// Messages returns the full ordered transcript for a session.
func (s *Store) Messages(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT message_id, seq, role, content, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages for %q: %w", sessionID, err)
	}
	defer rows.Close()

	msgs := make([]Message, 0, 64)
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Seq, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// Append adds a message to the end of the session transcript and
// returns the stored row, including its assigned Seq.
func (s *Store) Append(sessionID, role, content string) (Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Message{}, fmt.Errorf("begin append transaction: %w", err)
	}
	rollback := true
	defer func() {
		if rollback {
			_ = tx.Rollback()
		}
	}()

	var seq int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(seq) + 1, 0) FROM messages WHERE session_id = ?
	`, sessionID).Scan(&seq); err != nil {
		return Message{}, fmt.Errorf("compute next seq for %q: %w", sessionID, err)
	}

	now := time.Now().UTC()
	result, err := tx.Exec(`
		INSERT INTO messages (session_id, seq, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, seq, role, content, now.Format(timeLayout))
	if err != nil {
		return Message{}, fmt.Errorf("insert message seq=%d: %w", seq, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Message{}, fmt.Errorf("read message ID for seq=%d: %w", seq, err)
	}

	if err := tx.Commit(); err != nil {
		return Message{}, fmt.Errorf("commit append transaction: %w", err)
	}
	rollback = false

	return Message{ID: id, Seq: seq, Role: role, Content: content, CreatedAt: now}, nil
}

// Delete removes the message at the given index and resequences the
// rows after it so Seq stays dense.
func (s *Store) Delete(sessionID string, index int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	rollback := true
	defer func() {
		if rollback {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.Exec(`
		DELETE FROM messages WHERE session_id = ? AND seq = ?
	`, sessionID, index)
	if err != nil {
		return fmt.Errorf("delete message seq=%d: %w", index, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message seq=%d: %w", index, err)
	}
	if n == 0 {
		return ErrIndexOutOfRange
	}

	if _, err := tx.Exec(`
		UPDATE messages SET seq = seq - 1
		WHERE session_id = ? AND seq > ?
	`, sessionID, index); err != nil {
		return fmt.Errorf("resequence after delete seq=%d: %w", index, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete transaction: %w", err)
	}
	rollback = false
	return nil
}

// UpdateContent replaces the content of the message at the given index.
// Used by in-place edits; never called by the windowing layer.
func (s *Store) UpdateContent(sessionID string, index int, content string) error {
	result, err := s.db.Exec(`
		UPDATE messages SET content = ?
		WHERE session_id = ? AND seq = ?
	`, content, sessionID, index)
	if err != nil {
		return fmt.Errorf("update message seq=%d: %w", index, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update message seq=%d: %w", index, err)
	}
	if n == 0 {
		return ErrIndexOutOfRange
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05"

func parseTime(raw string) time.Time {
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
