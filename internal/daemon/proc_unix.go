//go:build unix

package daemon

import (
	"os/exec"
	"syscall"
)

// Detaches cmd from the caller's session and controlling terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
