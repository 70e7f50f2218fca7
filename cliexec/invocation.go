// Package cliexec builds and runs a single command-line invocation,
// disciplining its stdio, working directory, and PID visibility so a
// pool.Manager can track and kill the child process tree it spawns.
package cliexec

import (
	"errors"
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// ErrNoCommand is returned by Invocation.Render when neither Command nor a
// leading positional argument supplies a command name.
var ErrNoCommand = errors.New("cliexec: no command name: set Invocation.Command or supply it as the first positional argument")

// Option is a single named option to be rendered onto a command line. It is
// carried in a slice, not a map, specifically so rendering preserves the
// order options were supplied in.
type Option struct {
	Name  string
	Value any
}

// Invocation describes a structured command-line invocation to be rendered
// into a single call string before it is handed to a shell.
type Invocation struct {
	Command         string
	Positional      []string
	Options         []Option
	OptionSeparator string
	OptionEncodings map[string]string
}

// Render builds the call string: command name first (Command if non-empty,
// else the first positional argument, consumed), then every option in
// input order (an OptionEncodings entry is preferred over inferred
// prefixing), then the remaining positional arguments. Values containing
// shell metacharacters are quoted via shellquote so the rendered string
// stays safe to hand to a shell; plain tokens are left exactly as the
// option-rendering rules produce them.
func (inv *Invocation) Render() (string, error) {
	sep := inv.OptionSeparator
	if sep == "" {
		sep = "="
	}

	positional := inv.Positional
	command := inv.Command
	if command == "" {
		if len(positional) == 0 {
			return "", ErrNoCommand
		}
		command = positional[0]
		positional = positional[1:]
	}

	pieces := []string{command}
	for _, opt := range inv.Options {
		if rendered, ok := renderOption(opt, sep, inv.OptionEncodings); ok {
			pieces = append(pieces, rendered)
		}
	}
	pieces = append(pieces, positional...)

	return shellquote.Join(pieces...), nil
}

func renderOption(opt Option, sep string, encodings map[string]string) (string, bool) {
	if v, ok := opt.Value.(bool); ok && !v {
		return "", false
	}

	prefix := opt.Name
	separator := sep
	if encoding, ok := encodings[opt.Name]; ok {
		prefix, separator = splitEncoding(encoding)
	} else if !strings.HasPrefix(prefix, "-") {
		if len(prefix) == 1 {
			prefix = "-" + prefix
		} else {
			prefix = "--" + prefix
		}
	}

	if v, ok := opt.Value.(bool); ok && v {
		return prefix, true
	}

	return fmt.Sprintf("%s%s%v", prefix, separator, opt.Value), true
}

// splitEncoding treats the configured encoding as the literal flag prefix;
// any trailing run of non-alphanumeric characters (e.g. "=") is taken as
// the separator, matching the rule that an encoding is written verbatim and
// its tail (if any) supplies the separator.
func splitEncoding(encoding string) (prefix, sep string) {
	i := len(encoding)
	for i > 0 && !isAlnum(rune(encoding[i-1])) {
		i--
	}
	return encoding[:i], encoding[i:]
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
