package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
)

// fakeRunner records invocations and replays canned outcomes.
type fakeRunner struct {
	specs    []command.Spec
	modes    []command.Mode
	outcomes []*command.Outcome
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, spec command.Spec, mode command.Mode) (*command.Outcome, error) {
	f.specs = append(f.specs, spec)
	f.modes = append(f.modes, mode)
	if f.err != nil {
		return nil, f.err
	}
	if mode == command.Simulate {
		return &command.Outcome{Simulated: true}, nil
	}
	out := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return out, nil
}

func newClient(r command.Runner) *Client {
	return &Client{Runner: r, Tool: "anaconda", Org: "nb-tudelft", Label: "main"}
}

func TestUploadSpecArgs(t *testing.T) {
	c := newClient(nil)

	spec := c.UploadSpec("dist/linux-64/alpaca_kernel_2-1.2.0-py_0.tar.bz2", true)
	got := spec.String()
	for _, want := range []string{"upload", "--user nb-tudelft", "--label main", "--skip-existing", "alpaca_kernel_2-1.2.0-py_0.tar.bz2"} {
		if !strings.Contains(got, want) {
			t.Errorf("spec %q missing %q", got, want)
		}
	}

	spec = c.UploadSpec("pkg.tar.bz2", false)
	if strings.Contains(spec.String(), "--skip-existing") {
		t.Error("skip-existing flag present when not requested")
	}
}

func TestUploadSuccess(t *testing.T) {
	f := &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 0}}}
	if err := newClient(f).Upload(context.Background(), "pkg.tar.bz2", true, command.Execute); err != nil {
		t.Errorf("Upload() error = %v", err)
	}
}

func TestUploadConflictWithSkipExisting(t *testing.T) {
	f := &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 1, Stderr: "Distribution already exists"}}}
	if err := newClient(f).Upload(context.Background(), "pkg.tar.bz2", true, command.Execute); err != nil {
		t.Errorf("conflict with skip-existing should not fail: %v", err)
	}
}

func TestUploadConflictWithoutSkipExisting(t *testing.T) {
	f := &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 1, Stderr: "Distribution already exists"}}}
	err := newClient(f).Upload(context.Background(), "pkg.tar.bz2", false, command.Execute)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestUploadFailureCarriesStderr(t *testing.T) {
	f := &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 2, Stderr: "401 unauthorized"}}}
	err := newClient(f).Upload(context.Background(), "pkg.tar.bz2", true, command.Execute)
	if err == nil || !strings.Contains(err.Error(), "401 unauthorized") {
		t.Errorf("error = %v, want captured stderr surfaced verbatim", err)
	}
}

func TestShowPresence(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *command.Outcome
		expected Presence
		wantErr  bool
	}{
		{"visible package", &command.Outcome{ExitCode: 0, Stdout: "alpaca_kernel_2 1.2.0"}, Present, false},
		{"missing package", &command.Outcome{ExitCode: 1, Stderr: "error 404: not found"}, Missing, false},
		{"other failure", &command.Outcome{ExitCode: 1, Stderr: "connection refused"}, Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRunner{outcomes: []*command.Outcome{tt.outcome}}
			p, err := newClient(f).Show(context.Background(), "alpaca_kernel_2", command.Execute)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if p != tt.expected {
				t.Errorf("presence = %s, want %s", p, tt.expected)
			}
		})
	}
}

func TestShowSimulatedDoesNotQuery(t *testing.T) {
	f := &fakeRunner{}
	p, err := newClient(f).Show(context.Background(), "alpaca_kernel_2", command.Simulate)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if p != Unknown {
		t.Errorf("presence = %s, want unknown under simulation", p)
	}
	if f.modes[0] != command.Simulate {
		t.Error("simulated show reached Execute mode")
	}
}

func TestWhoami(t *testing.T) {
	f := &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 0, Stdout: "Anonymous User"}}}
	if err := newClient(f).Whoami(context.Background(), command.Execute); err == nil {
		t.Error("anonymous session should fail the auth check")
	}

	f = &fakeRunner{outcomes: []*command.Outcome{{ExitCode: 0, Stdout: "Username: nb-tudelft"}}}
	if err := newClient(f).Whoami(context.Background(), command.Execute); err != nil {
		t.Errorf("Whoami() error = %v", err)
	}
}
