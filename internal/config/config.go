package config

// Config is the root configuration structure.
type Config struct {
	Store    StoreConfig    `json:"store"`
	Window   WindowConfig   `json:"window"`
	UI       UIConfig       `json:"ui"`
	Keymap   KeymapConfig   `json:"keymap"`
	Features FeaturesConfig `json:"features"`
}

// StoreConfig configures transcript persistence.
type StoreConfig struct {
	// Path is the SQLite database file. Defaults under ~/.local/share/parley.
	Path string `json:"path"`
	// TranscriptDir holds per-session JSONL transcripts written by
	// external agents; the tailer imports appends from it.
	TranscriptDir string `json:"transcriptDir"`
	// TailTranscripts enables the JSONL tailer.
	TailTranscripts bool `json:"tailTranscripts"`
}

// WindowConfig configures transcript view windowing: when enabled, at
// most Limit message elements are kept materialized in the chat view.
type WindowConfig struct {
	Enabled bool `json:"enabled"`
	Limit   int  `json:"limit"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowStatusBar bool `json:"showStatusBar"`
	Markdown      bool `json:"markdown"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// FeaturesConfig holds feature flag settings.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			TailTranscripts: true,
		},
		Window: WindowConfig{
			Enabled: true,
			Limit:   50,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			Markdown:      true,
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		Features: FeaturesConfig{
			Flags: make(map[string]bool),
		},
	}
}

// Validate checks the configuration and fills defaults for unset
// paths. The window limit is deliberately left alone: a non-positive
// limit means "render nothing" and is handled by the view layer.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}
	if c.Store.TranscriptDir == "" {
		c.Store.TranscriptDir = DefaultTranscriptDir()
	}
	if c.Keymap.Overrides == nil {
		c.Keymap.Overrides = make(map[string]string)
	}
	if c.Features.Flags == nil {
		c.Features.Flags = make(map[string]bool)
	}
	return nil
}
