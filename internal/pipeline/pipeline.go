// Package pipeline sequences the release stages: a strictly linear state
// machine where each stage's outputs are the next stage's required inputs.
package pipeline

import (
	"context"
	"time"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
)

// Outcome classifies how a stage ended.
type Outcome string

const (
	Succeeded   Outcome = "succeeded"
	Skipped     Outcome = "skipped"
	Failed      Outcome = "failed"
	SimulatedOk Outcome = "simulated"
)

// ActionResult is what a stage's action reports on success.
type ActionResult struct {
	Message   string
	Artifacts []string // paths produced or consumed, for the report
}

// Stage is one unit of release work. Ordering is fixed and significant:
// build before convert before upload before verify.
type Stage struct {
	Name string
	// Skip marks the stage as explicitly disabled by the operator. A
	// skipped stage does not halt the pipeline.
	Skip bool
	// Precondition encodes the stage's hard data dependency. A failing
	// precondition halts the pipeline without attempting the action.
	Precondition func(ctx context.Context) error
	// Action does the work, running any external commands in the given
	// mode. In Simulate mode it must not touch the outside world.
	Action func(ctx context.Context, mode command.Mode) (*ActionResult, error)
}

// StageResult records one stage's outcome. Immutable once appended.
type StageResult struct {
	Stage     string        `json:"stage"`
	Outcome   Outcome       `json:"outcome"`
	Message   string        `json:"message,omitempty"`
	Artifacts []string      `json:"artifacts,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
}

// Report is the ordered, append-only record of a pipeline run.
type Report struct {
	Results     []StageResult `json:"results"`
	FailedStage string        `json:"failed_stage,omitempty"`
}

// Succeeded reports whether no stage failed.
func (r *Report) Succeeded() bool { return r.FailedStage == "" }

// Result returns the recorded result for the named stage, or nil.
func (r *Report) Result(stage string) *StageResult {
	for i := range r.Results {
		if r.Results[i].Stage == stage {
			return &r.Results[i]
		}
	}
	return nil
}

func (r *Report) append(sr StageResult) {
	r.Results = append(r.Results, sr)
	if sr.Outcome == Failed && r.FailedStage == "" {
		r.FailedStage = sr.Stage
	}
}
