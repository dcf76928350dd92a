package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Save writes the config to the given path, creating parent
// directories as needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Saver coalesces rapid config mutations into a single delayed write,
// so settings controls don't hit disk on every keystroke.
type Saver struct {
	mu      sync.Mutex
	path    string
	delay   time.Duration
	logger  *slog.Logger
	timer   *time.Timer
	pending *Config
}

// NewSaver creates a debounced saver writing to path after delay.
func NewSaver(path string, delay time.Duration, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{path: path, delay: delay, logger: logger}
}

// Schedule records cfg as the value to persist and (re)starts the
// debounce timer. The config is copied; later mutations by the caller
// don't race the write.
func (s *Saver) Schedule(cfg *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *cfg
	s.pending = &snapshot

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// Flush writes any pending config immediately. Called on shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	cfg := s.pending
	s.pending = nil
	s.mu.Unlock()

	if cfg == nil {
		return
	}
	if err := Save(cfg, s.path); err != nil {
		s.logger.Warn("config save failed", "path", s.path, "err", err)
	}
}
