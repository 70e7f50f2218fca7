package pool_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxops/cliworker/cliexec"
	"github.com/lxops/cliworker/pool"
)

// Scenario 5: a numbered sequence of real subprocesses, run two at a time.
// Every label from 0..9 appears exactly once, with no duplicates.
func TestNumberedSequenceRealSubprocess(t *testing.T) {
	work := cliexec.WorkFunc(func(_ int) *cliexec.Controller {
		return &cliexec.Controller{CallString: "sleep 0.01"}
	})

	mgr := pool.New(work, 2)

	items := make(chan int, 10)
	for i := 0; i < 10; i++ {
		items <- i
	}
	close(items)

	seen := map[int]bool{}
	for res := range mgr.Run(context.Background(), items) {
		assert.False(t, seen[res.Label], "duplicate label %d", res.Label)
		seen[res.Label] = true
	}
	require.NoError(t, mgr.Err())
	assert.Len(t, seen, 10)
}

// Abort kills a tracked child process before it finishes: a long sleep
// followed by a marker-file touch must never produce the marker once the
// pool has torn down in response to a sibling's failure.
func TestAbortKillsTrackedChildProcess(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	work := func(ctx context.Context, tracker *pool.ProcessTracker, item int) (int, error) {
		if item == 0 {
			return 0, haltError{}
		}
		c := &cliexec.Controller{CallString: "sleep 2 && touch " + marker}
		err := c.Run(ctx, tracker)
		return 0, err
	}

	mgr := pool.New(work, 2)
	items := make(chan int, 2)
	items <- 0
	items <- 1
	close(items)

	start := time.Now()
	for range mgr.Run(context.Background(), items) {
	}
	elapsed := time.Since(start)

	require.Error(t, mgr.Err())
	assert.Less(t, elapsed, 2*time.Second, "shutdown should kill the sleeping child well before it exits on its own")

	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err), "marker file should never be created once the child was killed")
}
