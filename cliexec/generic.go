package cliexec

import (
	"context"

	"github.com/lxops/cliworker/pool"
)

// GenericController is the structured-construction analogue of a
// SimpleGenericCLIcontroller: NewGenericController fixes Command and
// OptionEncodings as the driven command's identity by copying them onto
// the Invocation it is given, and a fresh GenericController is built per
// call. Run renders only that Invocation: changing Command or
// OptionEncodings, or replacing the Invocation, after construction does
// not reapply them.
type GenericController struct {
	Controller
	Command         string
	OptionEncodings map[string]string
}

// ControllerOption configures stdio/working-directory behaviour on a
// Controller at construction time.
type ControllerOption func(*Controller)

// WithCapture captures both stdout and stderr.
func WithCapture() ControllerOption {
	return func(c *Controller) { c.StdoutMode = Capture; c.StderrMode = Capture }
}

// WithSilence silences both stdout and stderr.
func WithSilence() ControllerOption {
	return func(c *Controller) { c.StdoutMode = Silence; c.StderrMode = Silence }
}

// WithMergeStderr merges stderr into stdout, overriding whatever
// capture/silence disposition stderr would otherwise have had.
func WithMergeStderr() ControllerOption {
	return func(c *Controller) { c.MergeStderrIntoStdout = true }
}

// InTempDir runs the command inside a freshly created temp directory
// beneath loc (the OS default if empty).
func InTempDir(loc string) ControllerOption {
	return func(c *Controller) { c.InTmpdir = true; c.TmpdirLoc = loc }
}

// NewGenericController builds a GenericController that will render inv
// under the given command name and option encodings.
func NewGenericController(command string, encodings map[string]string, inv *Invocation, opts ...ControllerOption) *GenericController {
	inv.Command = command
	inv.OptionEncodings = encodings

	c := &GenericController{
		Controller:      Controller{Invocation: inv},
		Command:         command,
		OptionEncodings: encodings,
	}
	for _, opt := range opts {
		opt(&c.Controller)
	}
	return c
}

// Factory is the "partial factory" a pool.Manager instantiates once per
// work item: a function bound to whatever is fixed across calls that
// produces one Controller per item.
type Factory[T any] func(item T) *Controller

// Output is the result a WorkFunc-adapted Controller reports back through
// the pool.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// WorkFunc adapts a Factory into a pool.WorkFunc that runs the controller
// produced for each item and reports its captured output.
func WorkFunc[T any](factory Factory[T]) pool.WorkFunc[T, Output] {
	return func(ctx context.Context, tracker *pool.ProcessTracker, item T) (Output, error) {
		c := factory(item)
		err := c.Run(ctx, tracker)
		return Output{Stdout: c.CapturedStdout, Stderr: c.CapturedStderr}, err
	}
}
