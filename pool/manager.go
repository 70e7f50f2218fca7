package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lxops/cliworker/logger"
)

// Option configures a Manager at construction time.
type Option func(*config)

type config struct {
	log *logger.Logger
}

// WithLogger overrides the ambient logger a Manager reports shutdown and
// cleanup activity through. The default logs to stderr at info level.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// Manager owns one invocation's worker pool, shared control state and
// shutdown protocol. Construct a numbered-label manager with New, or a
// caller-labeled one with NewLabeled — the two input modes are mutually
// exclusive by construction rather than by a runtime flag.
type Manager[L comparable, T, R any] struct {
	work    WorkFunc[T, R]
	numProc int
	log     *logger.Logger
	pids    *pidRegistry

	mu        sync.Mutex
	err       error
	failedLbl L
	hasFailed bool
}

func newManager[L comparable, T, R any](work WorkFunc[T, R], numProc int, opts ...Option) *Manager[L, T, R] {
	if numProc <= 0 {
		numProc = runtime.NumCPU()
	}

	c := &config{log: logger.New()}
	for _, opt := range opts {
		opt(c)
	}

	return &Manager[L, T, R]{
		work:    work,
		numProc: numProc,
		log:     c.log,
		pids:    newPIDRegistry(c.log),
	}
}

// NewLabeled constructs a Manager driven in labeledItems mode: the caller
// supplies a (label, payload) pair per item and gets the label back
// attached to its result, though results may complete out of order.
func NewLabeled[L comparable, T, R any](work WorkFunc[T, R], numProc int, opts ...Option) *Manager[L, T, R] {
	return newManager[L](work, numProc, opts...)
}

// RunLabeled drains items, fanning work across numProc worker goroutines,
// and yields one Result per successfully completed item, in completion
// order. Shutdown begins the moment a work function fails (or panics), or
// ctx is canceled: every worker goroutine is told to quiesce, every tracked
// child process is killed, and the triggering error becomes available from
// Err once the returned channel is drained and closed.
func (m *Manager[L, T, R]) RunLabeled(ctx context.Context, items <-chan Labeled[L, T]) <-chan Result[L, R] {
	results := make(chan Result[L, R])

	shutdownCh := make(chan struct{})
	parkCh := make(chan struct{})
	var ackWG sync.WaitGroup
	ackWG.Add(m.numProc)

	env := envelope[T, R]{work: m.work}

	g, gctx := errgroup.WithContext(ctx)

	// errgroup cancels gctx the instant the first worker returns a non-nil
	// error (or ctx itself is canceled), before the other workers have any
	// chance to notice on their own. Announce shutdown and kill every
	// tracked child right then, rather than waiting for g.Wait() to return —
	// otherwise a sibling still draining items (especially a work function
	// that ignores the ctx it's handed) would keep running, or never stop
	// at all against an infinite input sequence.
	var announceOnce sync.Once
	announce := func() {
		announceOnce.Do(func() {
			close(shutdownCh)
			m.killTracked()
			ackWG.Wait()
			close(parkCh)
		})
	}
	stop := context.AfterFunc(gctx, announce)

	for i := 0; i < m.numProc; i++ {
		worker := fmt.Sprintf("worker-%d", i)
		g.Go(func() error {
			var ackOnce sync.Once
			ack := func() { ackOnce.Do(ackWG.Done) }
			defer ack()
			tracker := &ProcessTracker{registry: m.pids, worker: worker}

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-shutdownCh:
					ack()
					<-parkCh
					return nil
				case item, ok := <-items:
					if !ok {
						return nil
					}
					select {
					case <-shutdownCh:
						ack()
						<-parkCh
						return nil
					default:
					}

					val, err := env.invoke(gctx, tracker, item.Payload)
					tracker.Clear()
					if err != nil {
						m.recordFailure(item.Label)
						return err
					}

					select {
					case results <- Result[L, R]{Label: item.Label, Value: val}:
					case <-shutdownCh:
						ack()
						<-parkCh
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		})
	}

	go func() {
		defer close(results)
		defer stop()

		werr := g.Wait()
		if werr != nil {
			m.log.Debugf("work item failed, beginning pool shutdown: %v", werr)
		}
		announce()
		m.setErr(werr)
	}()

	return results
}

func (m *Manager[L, T, R]) killTracked() {
	if err := m.pids.killAll(); err != nil {
		m.log.Warnf("killing tracked child processes during shutdown: %v", err)
	}
}

func (m *Manager[L, T, R]) recordFailure(label L) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasFailed {
		m.hasFailed = true
		m.failedLbl = label
	}
}

func (m *Manager[L, T, R]) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Err returns the terminal error from the run, if any. Read it only after
// the channel returned by RunLabeled (or Run, via NumberedManager) has been
// drained and closed.
func (m *Manager[L, T, R]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// FailedLabel returns the label of the item whose work function first
// failed, if the run failed.
func (m *Manager[L, T, R]) FailedLabel() (L, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failedLbl, m.hasFailed
}
