// Package command runs external tools. It is the only package in the module
// that spawns processes; everything above it stays testable by substituting
// the Runner interface.
package command

import (
	"context"
	"strings"
	"time"
)

// Spec describes one external command invocation: a program and its argument
// list, already fully substituted. No shell is involved and the spec is never
// re-parsed or re-escaped.
type Spec struct {
	Program string
	Args    []string
	Dir     string // working directory; empty means inherit
}

// String renders the argv for display and dry-run output.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Program
	}
	return s.Program + " " + strings.Join(s.Args, " ")
}

// Mode selects between real execution and dry-run simulation.
type Mode int

const (
	// Execute invokes the external process.
	Execute Mode = iota
	// Simulate performs no I/O and reports the command that would have run.
	Simulate
)

// Outcome is the result of running (or simulating) a command.
type Outcome struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Simulated bool
	Duration  time.Duration
}

// Ok reports whether the command exited zero (simulated outcomes are
// always ok).
func (o *Outcome) Ok() bool { return o.ExitCode == 0 }

// Runner executes or simulates a command. A non-zero exit code is reported
// through the Outcome, not as an error; the error return is reserved for
// spawn failures, timeouts and cancellation. Deciding whether a non-zero
// exit is fatal belongs to the caller.
type Runner interface {
	Run(ctx context.Context, spec Spec, mode Mode) (*Outcome, error)
}
