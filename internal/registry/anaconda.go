// Package registry adapts the anaconda.org client tool behind typed results.
// It is the only place that interprets the tool's output text; callers see a
// Presence value or an error, never scraped strings.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
)

// ErrConflict means the destination already has this exact artifact and
// skip-existing was not requested.
var ErrConflict = errors.New("artifact already present at destination")

// Presence is the typed result of a registry visibility query.
type Presence int

const (
	Unknown Presence = iota
	Present
	Missing
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Missing:
		return "missing"
	default:
		return "unknown"
	}
}

// Client drives the registry CLI through a command Runner.
type Client struct {
	Runner command.Runner
	Tool   string // client binary, normally "anaconda"
	Org    string // destination organization/user on the registry
	Label  string // release label/channel, e.g. "main"
}

// UploadSpec builds the upload invocation for one artifact. Exposed so the
// upload stage can render it in dry-run output.
func (c *Client) UploadSpec(path string, skipExisting bool) command.Spec {
	args := []string{"upload", "--user", c.Org}
	if c.Label != "" {
		args = append(args, "--label", c.Label)
	}
	if skipExisting {
		args = append(args, "--skip-existing")
	}
	args = append(args, path)
	return command.Spec{Program: c.Tool, Args: args}
}

// Upload pushes one artifact. With skipExisting the registry treats an
// already-present artifact as success; without it a duplicate surfaces as
// ErrConflict. Any other non-zero exit is fatal and carries the tool's
// stderr verbatim.
func (c *Client) Upload(ctx context.Context, path string, skipExisting bool, mode command.Mode) error {
	spec := c.UploadSpec(path, skipExisting)
	out, err := c.Runner.Run(ctx, spec, mode)
	if err != nil {
		return err
	}
	if out.Ok() {
		return nil
	}
	if isConflict(out.Stderr) {
		if skipExisting {
			// The client is expected to exit zero with --skip-existing,
			// but some versions still report the conflict. Not a failure.
			return nil
		}
		return fmt.Errorf("%w: %s", ErrConflict, path)
	}
	return fmt.Errorf("upload of %s exited %d: %s", path, out.ExitCode, strings.TrimSpace(out.Stderr))
}

// ShowSpec builds the visibility query for the named package.
func (c *Client) ShowSpec(pkg string) command.Spec {
	return command.Spec{Program: c.Tool, Args: []string{"show", c.Org + "/" + pkg}}
}

// Show reports whether the named package is visible under the client's
// organization.
func (c *Client) Show(ctx context.Context, pkg string, mode command.Mode) (Presence, error) {
	out, err := c.Runner.Run(ctx, c.ShowSpec(pkg), mode)
	if err != nil {
		return Unknown, err
	}
	if out.Simulated {
		return Unknown, nil
	}
	if out.Ok() {
		return Present, nil
	}
	if strings.Contains(strings.ToLower(out.Stderr), "not found") {
		return Missing, nil
	}
	return Unknown, fmt.Errorf("show %s/%s exited %d: %s", c.Org, pkg, out.ExitCode, strings.TrimSpace(out.Stderr))
}

// Whoami verifies an authenticated registry session. The anaconda client
// exits zero even when anonymous, so the output is checked as well.
func (c *Client) Whoami(ctx context.Context, mode command.Mode) error {
	out, err := c.Runner.Run(ctx, command.Spec{Program: c.Tool, Args: []string{"whoami"}}, mode)
	if err != nil {
		return err
	}
	if out.Simulated {
		return nil
	}
	if !out.Ok() {
		return fmt.Errorf("%s whoami exited %d: %s", c.Tool, out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	if strings.Contains(strings.ToLower(out.Stdout+out.Stderr), "anonymous") {
		return fmt.Errorf("not logged in to the registry; run `%s login`", c.Tool)
	}
	return nil
}

// isConflict recognizes the registry's duplicate-upload refusal.
func isConflict(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "already exists") || strings.Contains(s, "conflict")
}
