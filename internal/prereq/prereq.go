// Package prereq validates environment readiness before the release pipeline
// is allowed to start.
package prereq

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Requirement is one capability test over the environment.
type Requirement struct {
	ID    string
	Check func(ctx context.Context) error
	Hint  string // what the operator should do when the check fails
}

// Failure identifies the first requirement that did not hold.
type Failure struct {
	ID     string
	Reason string
	Hint   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("prerequisite %q not met: %s", f.ID, f.Reason)
}

// Check evaluates requirements in order and short-circuits at the first
// failure. A nil return means all requirements are satisfied.
func Check(ctx context.Context, reqs []Requirement) *Failure {
	for _, r := range reqs {
		if err := r.Check(ctx); err != nil {
			return &Failure{ID: r.ID, Reason: err.Error(), Hint: r.Hint}
		}
	}
	return nil
}

// ToolPresent builds a requirement that the named program is on PATH.
func ToolPresent(id, program, hint string) Requirement {
	return Requirement{
		ID: id,
		Check: func(ctx context.Context) error {
			if _, err := exec.LookPath(program); err != nil {
				return fmt.Errorf("%s not found on PATH", program)
			}
			return nil
		},
		Hint: hint,
	}
}

// FileExists builds a requirement that path exists and is a regular file.
func FileExists(id, path, hint string) Requirement {
	return Requirement{
		ID: id,
		Check: func(ctx context.Context) error {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("%s: %v", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory, expected a file", path)
			}
			return nil
		},
		Hint: hint,
	}
}
