//go:build !(linux || darwin)

package procutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
)

// KillProcessGroup kills pid directly. On every platform other than linux
// and darwin only the immediate child is terminated; its descendants are
// not reached.
func KillProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing process %d: %w", pid, err)
	}
	return nil
}

// KillMany kills every pid in pids, coalescing failures.
func KillMany(pids []int) error {
	var result error
	for _, pid := range pids {
		if err := KillProcessGroup(pid); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
