// Package run persists one release run's report under
// .alpaca-release/runs/ for later inspection.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/pipeline"
)

// baseDir is relative to the working directory, like the project config.
var baseDir = filepath.Join(".alpaca-release", "runs")

// Run represents a single pipeline execution on disk.
type Run struct {
	ID   string
	Dir  string
	Meta Meta
}

// Meta is the persisted run report, written to report.json.
type Meta struct {
	StartedAt   time.Time              `json:"started_at"`
	Version     string                 `json:"version"`
	Org         string                 `json:"org"`
	DryRun      bool                   `json:"dry_run,omitempty"`
	Status      string                 `json:"status"` // "running" | "completed" | "failed"
	FailedStage string                 `json:"failed_stage,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Stages      []pipeline.StageResult `json:"stages"`
}

// New creates a new run directory and writes the initial report.
func New(version, org string, dryRun bool) (*Run, error) {
	now := time.Now()
	id := fmt.Sprintf("%s-%s", now.Format("20060102-150405"), sanitizeSlug(version))

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating runs dir: %w", err)
	}

	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}

	r := &Run{
		ID:  id,
		Dir: dir,
		Meta: Meta{
			StartedAt: now,
			Version:   version,
			Org:       org,
			DryRun:    dryRun,
			Status:    "running",
		},
	}

	if err := r.Save(); err != nil {
		return nil, err
	}

	if err := updateLatestLink(baseDir, id); err != nil {
		return nil, err
	}

	return r, nil
}

// LogFile opens the run's log file for appending. The caller owns the
// returned handle.
func (r *Run) LogFile() (*os.File, error) {
	return os.OpenFile(filepath.Join(r.Dir, "release.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// Save writes report.json to the run directory.
func (r *Run) Save() error {
	data, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(filepath.Join(r.Dir, "report.json"), data, 0644)
}

// Record stores the pipeline report and final status.
func (r *Run) Record(rep *pipeline.Report) error {
	r.Meta.Stages = rep.Results
	if rep.Succeeded() {
		r.Meta.Status = "completed"
	} else {
		r.Meta.Status = "failed"
		r.Meta.FailedStage = rep.FailedStage
		if sr := rep.Result(rep.FailedStage); sr != nil {
			r.Meta.Error = sr.Message
		}
	}
	return r.Save()
}

// Fail marks the run as failed before the pipeline produced a report,
// e.g. when a prerequisite check did not pass.
func (r *Run) Fail(msg string) error {
	r.Meta.Status = "failed"
	r.Meta.Error = msg
	return r.Save()
}

// Latest loads the report of the most recent run.
func Latest() (*Run, error) {
	dir := filepath.Join(baseDir, "latest")
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		return nil, fmt.Errorf("no recorded runs: %w", err)
	}
	r := &Run{Dir: dir}
	if err := json.Unmarshal(data, &r.Meta); err != nil {
		return nil, fmt.Errorf("parsing report.json: %w", err)
	}
	if target, err := os.Readlink(dir); err == nil {
		r.ID = filepath.Base(target)
	}
	return r, nil
}

// updateLatestLink atomically updates the "latest" symlink.
func updateLatestLink(baseDir, id string) error {
	latestPath := filepath.Join(baseDir, "latest")
	tmpPath := latestPath + ".tmp"

	// Remove any stale tmp link
	os.Remove(tmpPath)

	if err := os.Symlink(id, tmpPath); err != nil {
		return fmt.Errorf("creating temp symlink: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("updating latest symlink: %w", err)
	}
	return nil
}

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9.]+`)

// sanitizeSlug converts a version string to a directory-name-safe slug.
func sanitizeSlug(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		s = "run"
	}
	return s
}
