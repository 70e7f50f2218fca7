package cliexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/lxops/cliworker/pool"
	"github.com/lxops/cliworker/revert"
)

// StdioMode selects how a stream is wired up for the child process.
type StdioMode int

const (
	// Inherit routes the stream straight to the parent's corresponding
	// stream. The zero value, so a bare Controller behaves like running the
	// command directly at a terminal.
	Inherit StdioMode = iota
	// Capture routes the stream to an in-memory buffer, available after Run
	// returns via Controller.CapturedStdout/CapturedStderr.
	Capture
	// Silence routes the stream to the null device.
	Silence
)

// Controller builds and runs a single command-line invocation. Two
// construction modes coexist: set CallString directly for a pre-rendered
// line, or set Invocation and let Run render one.
type Controller struct {
	CallString string
	Invocation *Invocation

	InTmpdir  bool
	TmpdirLoc string

	StdoutMode            StdioMode
	StderrMode            StdioMode
	MergeStderrIntoStdout bool

	CapturedStdout []byte
	CapturedStderr []byte

	dir string
}

// Run resolves the call string, enters a temp directory if requested, wires
// up stdio per the capture-over-silence-over-inherit priority
// (MergeStderrIntoStdout overrides stderr's disposition independently of
// capture/silence), spawns the child through a shell in its own process
// group, and blocks until it exits. tracker may be nil; when non-nil its PID
// is published immediately after the child starts and cleared once it has
// been waited on, regardless of outcome. The temp directory (removed, and
// the prior working directory restored) and the null device handle are
// released when Run returns, whatever the outcome; a cleanup failure is
// returned when the run itself succeeded.
func (c *Controller) Run(ctx context.Context, tracker *pool.ProcessTracker) (retErr error) {
	rv := revert.New()
	defer func() {
		if cerr := rv.Fail(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("cliexec: cleaning up: %w", cerr)
		}
	}()

	callString := c.CallString
	if c.Invocation != nil {
		rendered, err := c.Invocation.Render()
		if err != nil {
			return err
		}
		callString = rendered
	}
	if callString == "" {
		return fmt.Errorf("cliexec: nothing to run: set CallString or Invocation")
	}

	dir := "."
	if c.InTmpdir {
		tmp, err := rv.EnterTempDir(c.TmpdirLoc, "tmp", "")
		if err != nil {
			return fmt.Errorf("entering temp directory: %w", err)
		}
		dir = tmp
	}
	c.dir = dir

	cmd := exec.CommandContext(ctx, "sh", "-c", callString)
	setProcessGroup(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer

	needsNull := c.StdoutMode == Silence || (c.StderrMode == Silence && !c.MergeStderrIntoStdout)
	var nullFile *os.File
	if needsNull {
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("opening null device: %w", err)
		}
		nullFile = f
		rv.Push(f)
	}

	switch c.StdoutMode {
	case Capture:
		cmd.Stdout = &stdoutBuf
	case Silence:
		cmd.Stdout = nullFile
	default:
		cmd.Stdout = os.Stdout
	}

	switch {
	case c.MergeStderrIntoStdout:
		cmd.Stderr = cmd.Stdout
	case c.StderrMode == Capture:
		cmd.Stderr = &stderrBuf
	case c.StderrMode == Silence:
		cmd.Stderr = nullFile
	default:
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %q: %w", callString, err)
	}

	tracker.Publish(cmd.Process.Pid)
	runErr := cmd.Wait()
	tracker.Clear()

	if c.StdoutMode == Capture {
		c.CapturedStdout = stdoutBuf.Bytes()
	}
	if c.StderrMode == Capture && !c.MergeStderrIntoStdout {
		c.CapturedStderr = stderrBuf.Bytes()
	}

	if runErr != nil {
		return fmt.Errorf("running %q: %w", callString, runErr)
	}

	return nil
}

// InWorkdir joins name against the working directory the last Run used:
// "." by default, or, if InTmpdir was set, the path of the temp directory
// Run entered (that directory is removed when Run returns).
func (c *Controller) InWorkdir(name string) string {
	return filepath.Join(c.dir, name)
}
