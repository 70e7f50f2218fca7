package pool_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxops/cliworker/pool"
)

func double(_ context.Context, _ *pool.ProcessTracker, item int) (int, error) {
	return item * 10, nil
}

// P1: for any input sequence of size M processed with N workers, the
// multiset of work-function calls equals the input exactly once.
func TestFanOutProducesEveryResultExactlyOnce(t *testing.T) {
	mgr := pool.New(double, 3)

	items := make(chan int, 6)
	for i := 0; i < 6; i++ {
		items <- i
	}
	close(items)

	got := map[int]int{}
	for res := range mgr.Run(context.Background(), items) {
		got[res.Label] = res.Value
	}
	require.NoError(t, mgr.Err())

	want := map[int]int{0: 0, 1: 10, 2: 20, 3: 30, 4: 40, 5: 50}
	assert.Equal(t, want, got)
}

// Scenario 2: N=4, input of 6 items, work-doer raises on its third
// invocation. The stream terminates with that error, having quiesced every
// worker.
func TestShutdownOnThirdCall(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	work := func(_ context.Context, _ *pool.ProcessTracker, item int) (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 3 {
			return 0, haltError{}
		}
		time.Sleep(20 * time.Millisecond)
		return item, nil
	}

	mgr := pool.New(work, 4)
	items := make(chan int, 6)
	for i := 0; i < 6; i++ {
		items <- i
	}
	close(items)

	for range mgr.Run(context.Background(), items) {
		// drain; failing items never appear here
	}

	err := mgr.Err()
	require.Error(t, err)
	var he haltError
	assert.ErrorAs(t, err, &he)
}

// Scenario 4: labeled inputs, work-doer raises on payload 3, errorOnLabel
// equals "3".
func TestLabeledFailureIdentification(t *testing.T) {
	work := func(_ context.Context, _ *pool.ProcessTracker, item int) (int, error) {
		if item == 3 {
			return 0, haltError{}
		}
		return item, nil
	}

	mgr := pool.NewLabeled[string](work, 3)
	items := make(chan pool.Labeled[string, int], 6)
	for i := 0; i < 6; i++ {
		items <- pool.Labeled[string, int]{Label: fmt.Sprintf("%d", i), Payload: i}
	}
	close(items)

	for range mgr.RunLabeled(context.Background(), items) {
	}

	require.Error(t, mgr.Err())
	label, ok := mgr.FailedLabel()
	require.True(t, ok)
	assert.Equal(t, "3", label)
}

// P4: once permission is false, the work function is invoked zero
// additional times across all workers.
func TestNoWorkAfterShutdown(t *testing.T) {
	var mu sync.Mutex
	var calls int32

	work := func(_ context.Context, _ *pool.ProcessTracker, item int) (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return 0, haltError{}
		}
		time.Sleep(50 * time.Millisecond)
		return item, nil
	}

	mgr := pool.New(work, 2)
	items := make(chan int, 200)
	for i := 0; i < 200; i++ {
		items <- i
	}
	close(items)

	for range mgr.Run(context.Background(), items) {
	}
	require.Error(t, mgr.Err())

	mu.Lock()
	finalCalls := calls
	mu.Unlock()

	// With only 2 workers, at most one more item can already be in flight
	// (or have raced into the loop) when the first failure fires.
	assert.LessOrEqual(t, int(finalCalls), 3)
}

// Caller abort: a canceled context is treated the same as a work-item
// failure for shutdown purposes.
func TestContextCancellationTriggersShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{}, 1)
	work := func(ctx context.Context, _ *pool.ProcessTracker, item int) (int, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}

	mgr := pool.New(work, 2)
	items := make(chan int, 10)
	for i := 0; i < 10; i++ {
		items <- i
	}
	close(items)

	go func() {
		<-started
		cancel()
	}()

	for range mgr.Run(ctx, items) {
	}

	require.Error(t, mgr.Err())
}
