package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/marcus/parley/internal/app"
	"github.com/marcus/parley/internal/config"
	"github.com/marcus/parley/internal/event"
	"github.com/marcus/parley/internal/features"
	"github.com/marcus/parley/internal/keymap"
	"github.com/marcus/parley/internal/plugin"
	"github.com/marcus/parley/internal/plugins/chat"
	"github.com/marcus/parley/internal/store"
)

// Version is set at build time via ldflags
var Version = ""

const saveDebounce = 2 * time.Second

var (
	configPath   = flag.String("config", "", "path to config file")
	storePath    = flag.String("store", "", "path to the transcript database (overrides config)")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	featureFlags = flag.String("features", "", "comma-separated feature overrides (name to enable, !name to disable)")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("parley version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "parley requires an interactive terminal")
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}

	features.Init(cfg)
	applyFeatureOverrides(*featureFlags, logger)

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open transcript store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	dispatcher := event.NewWithLogger(logger)
	defer dispatcher.Close()

	saver := config.NewSaver(config.ConfigPath(), saveDebounce, logger)
	defer saver.Flush()

	// Keymap registry first; plugins may register bindings during Init.
	km := keymap.NewRegistry()

	pluginCtx := &plugin.Context{
		Config:   cfg,
		Store:    st,
		EventBus: dispatcher,
		Saver:    saver,
		Logger:   logger,
		Keymap:   km,
		Epoch:    1,
	}

	registry := plugin.NewRegistry(pluginCtx)
	registry.Register(chat.New())
	defer registry.Stop()

	model := app.New(registry, km, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// applyFeatureOverrides parses the -features flag. A leading "!"
// disables the named feature.
func applyFeatureOverrides(spec string, logger *slog.Logger) {
	if spec == "" {
		return
	}
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		enabled := true
		if strings.HasPrefix(name, "!") {
			enabled = false
			name = name[1:]
		}
		if !features.IsKnownFeature(name) {
			logger.Warn("unknown feature flag", "name", name)
			continue
		}
		features.SetOverride(name, enabled)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: parley [options]\n\n")
		fmt.Fprintf(os.Stderr, "A TUI for browsing and curating chat transcripts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
