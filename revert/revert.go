// Package revert provides a LIFO stack of cleanup actions scoped to one
// invocation, grounded on the teacher codebase's own revert package
// (canonical-lxd's lxd/revert — Add/Fail/Success), extended with the
// temp-file/temp-dir/random-name operations a scoped resource stack needs
// for managing filesystem state across a command-line invocation's
// lifetime.
package revert

import (
	"errors"
	"io"
	"sync"
)

// ErrSealed is returned by EnterTempDir, WriteTempFile, WriteTempFileFunc
// and RandomName when called after Fail or Success has already run: the
// stack is single-use, scoped to one invocation. Add, AddFunc, Push and
// RegisterForRemoval return no error; a closer they are given after that
// point is ignored and never runs.
var ErrSealed = errors.New("revert: stack already closed")

// Reverter is a LIFO stack of cleanup actions. Closers registered with
// Add/AddFunc/Push run in reverse order of registration when Fail is
// called; Success discards them instead, for the happy path where cleanup
// should not run.
type Reverter struct {
	mu     sync.Mutex
	fns    []func() error
	sealed bool
}

// New returns an empty Reverter.
func New() *Reverter {
	return &Reverter{}
}

// Add registers fn to run on Fail.
func (r *Reverter) Add(fn func()) {
	r.AddFunc(func() error { fn(); return nil })
}

// AddFunc registers fn to run on Fail. Its error, if any, is coalesced with
// any other failing closer's error rather than stopping the remaining
// closers from running.
func (r *Reverter) AddFunc(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	r.fns = append(r.fns, fn)
}

// Push registers closer's Close method to run on Fail — the scoped resource
// stack's push(closer) operation, for handles that already satisfy
// io.Closer.
func (r *Reverter) Push(closer io.Closer) {
	r.AddFunc(closer.Close)
}

// Fail runs every registered closer in reverse order of registration,
// coalescing any failures into a single combined error, and seals the stack
// against further use. Calling Fail a second time (including via a deferred
// call after Success already ran) is a no-op.
func (r *Reverter) Fail() error {
	r.mu.Lock()
	if r.sealed {
		r.mu.Unlock()
		return nil
	}
	r.sealed = true
	fns := r.fns
	r.fns = nil
	r.mu.Unlock()

	var result error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			result = appendError(result, err)
		}
	}
	return result
}

// Success seals the stack without running any registered closer: whatever
// was registered has transferred to the caller's successful return path.
func (r *Reverter) Success() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	r.fns = nil
}

func (r *Reverter) isSealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}
