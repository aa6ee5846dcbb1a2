package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
	vlog "github.com/NB-TUDelft/alpaca-kernel-2/internal/log"
)

// Engine runs stages in order, honoring skip flags and dry-run mode and
// halting on the first failure.
type Engine struct {
	DryRun  bool
	Display *Display // optional; nil disables terminal output
}

// Run executes every stage in order and returns the accumulated report.
//
// Per stage: a set skip flag records Skipped and moves on; a failing
// precondition records Failed and halts; otherwise the action runs in the
// mode implied by DryRun and its error, if any, halts the pipeline. In
// dry-run mode preconditions are bypassed — they describe data dependencies
// of real runs, and simulated stages produce no artifacts for later
// preconditions to find.
//
// Cancellation is honored between stages only: an in-flight external tool is
// allowed to report its own exit status rather than being torn down into an
// ambiguous half-done state.
func (e *Engine) Run(ctx context.Context, stages []Stage) *Report {
	rep := &Report{}
	mode := command.Execute
	if e.DryRun {
		mode = command.Simulate
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			sr := StageResult{Stage: st.Name, Outcome: Failed, Message: fmt.Sprintf("cancelled before stage started: %v", err)}
			rep.append(sr)
			e.display().StageFailed(st.Name, fmt.Errorf("cancelled"))
			break
		}

		if st.Skip {
			vlog.Debug("stage skipped by operator", "stage", st.Name)
			rep.append(StageResult{Stage: st.Name, Outcome: Skipped, Message: "skipped by flag"})
			e.display().StageSkipped(st.Name)
			continue
		}

		if !e.DryRun && st.Precondition != nil {
			if err := st.Precondition(ctx); err != nil {
				sr := StageResult{Stage: st.Name, Outcome: Failed, Message: fmt.Sprintf("precondition failed: %v", err)}
				rep.append(sr)
				e.display().StageFailed(st.Name, err)
				break
			}
		}

		e.display().StageStart(st.Name)
		start := time.Now()
		res, err := st.Action(ctx, mode)
		duration := time.Since(start)

		if err != nil {
			rep.append(StageResult{Stage: st.Name, Outcome: Failed, Message: err.Error(), Duration: duration})
			e.display().StageFailed(st.Name, err)
			break
		}

		sr := StageResult{Stage: st.Name, Duration: duration}
		if res != nil {
			sr.Message = res.Message
			sr.Artifacts = res.Artifacts
		}
		if e.DryRun {
			sr.Outcome = SimulatedOk
			rep.append(sr)
			e.display().StageSimulated(st.Name, sr.Message)
			continue
		}
		sr.Outcome = Succeeded
		rep.append(sr)
		e.display().StageDone(st.Name, sr.Message, duration)
	}

	e.display().Summary(rep)
	return rep
}

// display returns the configured Display or a no-op one.
func (e *Engine) display() *Display {
	if e.Display != nil {
		return e.Display
	}
	return nopDisplay
}
