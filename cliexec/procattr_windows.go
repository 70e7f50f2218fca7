//go:build windows

package cliexec

import "os/exec"

// setProcessGroup is a no-op on windows, which has no POSIX process-group
// concept; procutil falls back to killing the immediate child only on this
// platform.
func setProcessGroup(cmd *exec.Cmd) {}
