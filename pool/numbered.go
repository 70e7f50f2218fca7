package pool

import "context"

// NumberedManager drives work in numberSeqItems mode: the manager assigns
// ordinal labels itself, starting at 0, in the order items are read off the
// input channel. Construct with New.
type NumberedManager[T, R any] struct {
	inner *Manager[int, T, R]
}

// New constructs a Manager in numberSeqItems mode. numProc <= 0 defaults to
// runtime.NumCPU().
func New[T, R any](work WorkFunc[T, R], numProc int, opts ...Option) *NumberedManager[T, R] {
	return &NumberedManager[T, R]{inner: newManager[int](work, numProc, opts...)}
}

// Run drains items, assigning each an ordinal label, and yields one Result
// per successfully completed item in completion order. See
// Manager.RunLabeled for the shutdown protocol this follows.
func (m *NumberedManager[T, R]) Run(ctx context.Context, items <-chan T) <-chan Result[int, R] {
	labeled := make(chan Labeled[int, T])

	go func() {
		defer close(labeled)
		n := 0
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-items:
				if !ok {
					return
				}
				select {
				case labeled <- Labeled[int, T]{Label: n, Payload: item}:
					n++
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return m.inner.RunLabeled(ctx, labeled)
}

// Err returns the terminal error from the run, if any.
func (m *NumberedManager[T, R]) Err() error {
	return m.inner.Err()
}

// FailedLabel returns the ordinal label of the item whose work function
// first failed, if the run failed.
func (m *NumberedManager[T, R]) FailedLabel() (int, bool) {
	return m.inner.FailedLabel()
}
