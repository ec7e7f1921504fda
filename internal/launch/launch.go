// Package launch spawns the selected application or opens the selected
// file in an editor. The core only inspects success/failure for status
// reporting; the spawned process is fully detached.
package launch

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/sys/execabs"

	"github.com/runger/flit/internal/apps"
	"github.com/runger/flit/internal/usage"
)

// Launcher is the external launch collaborator used by the event loop.
type Launcher interface {
	// LaunchApp starts app with the resolved launch mode.
	LaunchApp(app apps.AppRef, mode usage.Mode) error
	// OpenFile opens a filesystem entry in the configured editor.
	// Launch mode does not apply to files.
	OpenFile(path string) error
}

// ExecLauncher launches via the local exec facilities. Terminal is the
// emulator prefix used for terminal-wrapped launches (e.g. "kitty -e");
// Editor is the command files are opened with.
type ExecLauncher struct {
	Terminal string
	Editor   string
}

var _ Launcher = (*ExecLauncher)(nil)

// spawn is a test seam around process creation.
var spawn = spawnDetached

// LaunchApp implements Launcher.
func (l *ExecLauncher) LaunchApp(app apps.AppRef, mode usage.Mode) error {
	argv, err := appArgv(app, mode, l.Terminal)
	if err != nil {
		return err
	}
	if err := spawn(argv); err != nil {
		return fmt.Errorf("failed to launch %s: %w", app.Name, err)
	}
	return nil
}

// OpenFile implements Launcher. The editor runs inside the terminal
// wrapper so it gets its own window after the launcher session ends.
func (l *ExecLauncher) OpenFile(path string) error {
	argv, err := fileArgv(path, l.Editor, l.Terminal)
	if err != nil {
		return err
	}
	if err := spawn(argv); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}

// appArgv builds the argument vector for launching app in mode.
// Freedesktop field codes (%f, %U, ...) carry no meaning for a launcher
// without a selection context and are stripped.
func appArgv(app apps.AppRef, mode usage.Mode, terminal string) ([]string, error) {
	argv, err := splitCommand(app.Exec)
	if err != nil {
		return nil, fmt.Errorf("malformed exec command %q: %w", app.Exec, err)
	}
	argv = stripFieldCodes(argv)
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty exec command for %s", app.Name)
	}

	if mode == usage.ModeTerminal {
		prefix, err := splitCommand(terminal)
		if err != nil || len(prefix) == 0 {
			return nil, fmt.Errorf("malformed terminal command %q", terminal)
		}
		argv = append(prefix, argv...)
	}
	return argv, nil
}

// fileArgv builds the argument vector for opening path in the editor.
func fileArgv(path, editor, terminal string) ([]string, error) {
	argv, err := splitCommand(editor)
	if err != nil || len(argv) == 0 {
		return nil, fmt.Errorf("malformed editor command %q", editor)
	}
	argv = append(argv, path)

	prefix, err := splitCommand(terminal)
	if err != nil || len(prefix) == 0 {
		return nil, fmt.Errorf("malformed terminal command %q", terminal)
	}
	return append(prefix, argv...), nil
}

func splitCommand(command string) ([]string, error) {
	return shlex.Split(strings.TrimSpace(command))
}

// stripFieldCodes removes %-prefixed desktop-entry placeholders.
func stripFieldCodes(argv []string) []string {
	out := argv[:0]
	for _, arg := range argv {
		if strings.HasPrefix(arg, "%") {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// spawnDetached starts argv[0] in its own session so it survives the
// launcher exiting. execabs refuses binaries resolved to relative paths.
func spawnDetached(argv []string) error {
	cmd := execabs.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return err
	}
	// Let the child run independently; we never wait on it.
	return cmd.Process.Release()
}
