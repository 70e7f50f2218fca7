package pool

import (
	"context"
	"fmt"
	"runtime/debug"
)

// WorkFunc is the per-item work function a Manager drives across its worker
// goroutines. tracker is never nil but is inert unless the work function
// spawns a child process and wants the pool able to kill it on abort.
type WorkFunc[T, R any] func(ctx context.Context, tracker *ProcessTracker, item T) (R, error)

// envelope wraps a WorkFunc with panic trapping, mirroring the worker
// envelope's contract: while the item is in flight, nothing the work
// function raises escapes the worker goroutine uncaught. A returned error
// and a recovered panic both come back as a *WorkError carrying the stack.
type envelope[T, R any] struct {
	work WorkFunc[T, R]
}

func (e envelope[T, R]) invoke(ctx context.Context, tracker *ProcessTracker, item T) (res R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newWorkError(fmt.Errorf("panic: %v", r), string(debug.Stack()))
		}
	}()
	res, err = e.work(ctx, tracker, item)
	if err != nil {
		err = newWorkError(err, string(debug.Stack()))
	}
	return res, err
}
