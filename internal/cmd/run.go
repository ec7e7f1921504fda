package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/runger/flit/internal/apps"
	"github.com/runger/flit/internal/config"
	"github.com/runger/flit/internal/fswalk"
	"github.com/runger/flit/internal/launch"
	"github.com/runger/flit/internal/launcher"
	"github.com/runger/flit/internal/usage"
)

// runLauncher runs one interactive launcher session: preflight the
// terminal, take the single-instance lock, assemble the backends, and
// hand control to the TUI until a launch or a cancel.
func runLauncher() error {
	if err := checkTTY(); err != nil {
		return err
	}
	if err := checkTERM(); err != nil {
		return err
	}

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	lockFd, err := acquireLock(paths.LockFile())
	if err != nil {
		return err
	}
	defer releaseLock(lockFd)

	// The terminal belongs to the TUI; session diagnostics go to a file.
	if logFile, err := os.OpenFile(paths.LogFile(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugLog("search root %s, max results %d", cfg.Search.Root, cfg.Search.MaxResults)

	index, err := apps.NewIndex(&apps.CachedSource{
		Path:    paths.AppCacheFile(),
		Wrapped: apps.NewDesktopSource(),
	})
	if err != nil {
		return fmt.Errorf("failed to build application index: %w", err)
	}
	debugLog("indexed %d applications", index.Len())

	store, err := usage.Open(paths.DatabaseFile())
	if err != nil {
		return fmt.Errorf("failed to open usage store: %w", err)
	}
	defer store.Close()

	// A missing snapshot degrades ranking to pure fuzzy scores; the
	// session still runs.
	records, err := store.All(context.Background())
	if err != nil {
		log.Printf("usage snapshot unavailable: %v", err)
		records = nil
	}

	model := launcher.NewModel(launcher.Options{
		Config:   cfg,
		Index:    index,
		Walker:   fswalk.New(cfg.Search.Root, cfg.Search.MaxDepth, cfg.Search.ShowHidden, cfg.Search.IgnoreDirs),
		Records:  records,
		Recorder: store,
		Launcher: &launch.ExecLauncher{
			Terminal: cfg.Launch.Terminal,
			Editor:   cfg.Launch.Editor,
		},
	})

	// Run the TUI on /dev/tty so stdout stays clean for scripting.
	// Detect the color profile from the real tty: when stdout is a pipe
	// lipgloss would otherwise default to Ascii. SetColorProfile mutates
	// the default renderer in-place so the package-level styles in
	// launcher/view.go pick it up.
	tty, err := openTTY()
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if tty != nil {
		defer tty.Close()
		lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())
		opts = append(opts, tea.WithInput(tty), tea.WithOutput(tty))
	}

	finalModel, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(launcher.Model)
	if !ok {
		return fmt.Errorf("unexpected model type %T", finalModel)
	}

	if launched := m.Launched(); launched != "" {
		log.Printf("launched %s", launched)
	}
	return nil
}

// debugLog logs a message to stderr when FLIT_DEBUG=1.
func debugLog(format string, args ...any) {
	if os.Getenv("FLIT_DEBUG") == "1" {
		fmt.Fprintf(os.Stderr, "flit: debug: "+format+"\n", args...)
	}
}
