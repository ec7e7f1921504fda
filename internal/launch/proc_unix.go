//go:build !windows

package launch

import (
	"os/exec"
	"syscall"
)

// setProcAttr detaches the child into its own session so closing the
// launcher's terminal does not kill it.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
