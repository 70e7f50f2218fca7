package pool

// WorkError wraps an error (or recovered panic) raised by a work function.
// It is this implementation's encoding of the (kind, value, trace) triple
// spec describes for cross-process exception transport: Go has no
// cross-goroutine traceback object, so the captured stack rides alongside
// the error as text instead (see Design Note on cross-process exception
// transport, option (a)). Unwrap exposes the original error so errors.Is
// and errors.As still see through to it.
type WorkError struct {
	Err   error
	Stack string
}

func (e *WorkError) Error() string {
	return e.Err.Error()
}

func (e *WorkError) Unwrap() error {
	return e.Err
}

func newWorkError(err error, stack string) *WorkError {
	return &WorkError{Err: err, Stack: stack}
}
