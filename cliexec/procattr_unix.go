//go:build !windows

package cliexec

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so
// procutil.KillProcessGroup can terminate it and its descendants with one
// signal.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
