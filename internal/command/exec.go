package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ExecRunner runs commands with os/exec, capturing both output streams.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero means no timeout; the external
	// build and upload tools can legitimately run for many minutes.
	Timeout time.Duration
}

// Run executes the command in Execute mode or returns a synthetic success in
// Simulate mode. A timeout is reported as a distinct error so callers can
// surface "timed out" instead of a bare exit status.
func (r *ExecRunner) Run(ctx context.Context, spec Spec, mode Mode) (*Outcome, error) {
	if mode == Simulate {
		return &Outcome{Simulated: true}, nil
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command %q timed out after %s", spec.String(), r.Timeout)
		}
		if ctx.Err() == context.Canceled {
			return nil, fmt.Errorf("command %q cancelled: %w", spec.String(), ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return nil, fmt.Errorf("starting command %q: %w", spec.String(), err)
	}

	return out, nil
}
