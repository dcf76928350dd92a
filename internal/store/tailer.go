package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// TailEvent is one message parsed from an external transcript file.
type TailEvent struct {
	SessionID string
	Role      string
	Content   string
}

type tailLine struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tailer watches a directory of per-session JSONL transcripts written
// by external agent processes and emits lines appended after startup.
// File base names (minus .jsonl) are session IDs.
type Tailer struct {
	watcher *fsnotify.Watcher
	dir     string
	logger  *slog.Logger
	offsets map[string]int64
	events  chan TailEvent
}

// NewTailer starts watching dir. Existing file content is skipped;
// only appends observed after the tailer starts are emitted.
func NewTailer(dir string, logger *slog.Logger) (*Tailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create transcript watcher: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("create transcript directory %q: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch transcript directory %q: %w", dir, err)
	}

	t := &Tailer{
		watcher: watcher,
		dir:     dir,
		logger:  logger,
		offsets: make(map[string]int64),
		events:  make(chan TailEvent, 32),
	}
	t.primeOffsets()

	go t.run()
	return t, nil
}

// Events returns the channel of tailed messages. It is closed when the
// tailer shuts down.
func (t *Tailer) Events() <-chan TailEvent {
	return t.events
}

// Close stops the watcher goroutine.
func (t *Tailer) Close() error {
	return t.watcher.Close()
}

// primeOffsets records current file sizes so pre-existing content is
// not replayed into the store.
func (t *Tailer) primeOffsets() {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		if info, err := e.Info(); err == nil {
			t.offsets[e.Name()] = info.Size()
		}
	}
}

func (t *Tailer) run() {
	defer close(t.events)

	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".jsonl") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			t.drain(event.Name)

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Warn("transcript watcher error", "err", err)
		}
	}
}

// drain reads complete lines appended since the last read and emits
// them. A trailing partial line stays unconsumed until its newline
// arrives.
func (t *Tailer) drain(path string) {
	base := filepath.Base(path)
	sessionID := strings.TrimSuffix(base, ".jsonl")

	f, err := os.Open(path)
	if err != nil {
		t.logger.Warn("open transcript", "file", base, "err", err)
		return
	}
	defer f.Close()

	offset := t.offsets[base]
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		t.logger.Warn("seek transcript", "file", base, "err", err)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		t.logger.Warn("read transcript", "file", base, "err", err)
		return
	}

	consumed := int64(0)
	for {
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			break
		}
		line := data[:nl]
		data = data[nl+1:]
		consumed += int64(nl + 1)

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var parsed tailLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			t.logger.Debug("skip malformed transcript line", "file", base, "err", err)
			continue
		}
		if parsed.Content == "" {
			continue
		}
		role := parsed.Role
		if role == "" {
			role = "assistant"
		}
		t.events <- TailEvent{SessionID: sessionID, Role: role, Content: parsed.Content}
	}

	t.offsets[base] = offset + consumed
}
