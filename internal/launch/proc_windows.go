//go:build windows

package launch

import "os/exec"

// setProcAttr is a no-op on Windows; Start already creates a detached
// process for GUI subsystem binaries.
func setProcAttr(cmd *exec.Cmd) {}
