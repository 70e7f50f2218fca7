//go:build linux || darwin

// Package procutil terminates a spawned child process together with its
// descendants, for use when a pool abort needs to reclaim a worker's
// in-flight subprocess tree.
package procutil

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// KillProcessGroup sends SIGKILL to the process group led by pid. Callers
// are expected to have started that child with its own process group
// (Setpgid), so pid also names the group — this reaches every descendant
// that did not detach into its own group, the portable alternative Design
// Note 9 calls out to walking /proc for descendants. A group that has
// already exited is not an error.
func KillProcessGroup(pid int) error {
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("killing process group %d: %w", pid, err)
	}
	return nil
}

// KillMany kills every pid in pids, coalescing failures rather than
// stopping at the first one — a single stuck process tree should not
// prevent the others from being reclaimed.
func KillMany(pids []int) error {
	var result error
	for _, pid := range pids {
		if err := KillProcessGroup(pid); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
