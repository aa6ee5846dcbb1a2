package release

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/artifact"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/config"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/pipeline"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/prereq"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/registry"
)

// Stages returns the release stages in their fixed order. Each stage's
// inputs are the previous stage's outputs, so the ordering is significant.
func Stages(cfg Config, app *config.Config, runner command.Runner, client *registry.Client) []pipeline.Stage {
	return []pipeline.Stage{
		buildStage(cfg, app, runner),
		convertStage(cfg, app, runner),
		uploadStage(cfg, app, client),
		verifyStage(cfg, app, client),
	}
}

func buildSpec(app *config.Config) command.Spec {
	args := append(append([]string{}, app.Build.Args...), "--output-folder", app.Build.OutputDir)
	return command.Spec{Program: app.Build.Command, Args: args}
}

// buildStage runs the external build tool and locates what it produced.
// Re-running with a previous attempt's artifact still on disk is fine; only
// the operator's skip flag controls whether a rebuild happens.
func buildStage(cfg Config, app *config.Config, runner command.Runner) pipeline.Stage {
	return pipeline.Stage{
		Name: "build",
		Skip: cfg.SkipBuild,
		Precondition: prereq.FileExists("manifest", app.Build.Manifest, "").Check,
		Action: func(ctx context.Context, mode command.Mode) (*pipeline.ActionResult, error) {
			spec := buildSpec(app)
			out, err := runner.Run(ctx, spec, mode)
			if err != nil {
				return nil, err
			}
			if out.Simulated {
				return &pipeline.ActionResult{Message: spec.String()}, nil
			}
			if !out.Ok() {
				return nil, fmt.Errorf("build tool exited %d: %s", out.ExitCode, strings.TrimSpace(out.Stderr))
			}

			art, err := artifact.Locate(app.Build.OutputDir, app.Build.Pattern)
			if err != nil {
				return nil, fmt.Errorf("build tool succeeded but produced nothing locatable: %w", err)
			}
			return &pipeline.ActionResult{
				Message:   "built " + filepath.Base(art.Path),
				Artifacts: []string{art.Path},
			}, nil
		},
	}
}

// convertStage derives one artifact per target platform from the build
// output. Its precondition is the hard data dependency on the build stage:
// absence of a build artifact means there is nothing to convert, which is
// reported distinctly from a conversion failure.
func convertStage(cfg Config, app *config.Config, runner command.Runner) pipeline.Stage {
	return pipeline.Stage{
		Name: "convert",
		Skip: cfg.SkipConvert,
		Precondition: func(ctx context.Context) error {
			_, err := artifact.Locate(app.Build.OutputDir, app.Build.Pattern)
			return err
		},
		Action: func(ctx context.Context, mode command.Mode) (*pipeline.ActionResult, error) {
			var src string
			if mode == command.Simulate {
				// Nothing has necessarily been built in a dry run.
				src = filepath.Join(app.Build.OutputDir, app.Build.Pattern)
			} else {
				a, err := artifact.Locate(app.Build.OutputDir, app.Build.Pattern)
				if err != nil {
					return nil, err
				}
				src = a.Path
			}

			var lines []string
			for _, platform := range cfg.Platforms {
				spec := command.Spec{
					Program: app.Convert.Command,
					Args:    []string{"convert", "-p", platform, src, "-o", app.Convert.OutputDir},
				}
				out, err := runner.Run(ctx, spec, mode)
				if err != nil {
					return nil, err
				}
				if out.Simulated {
					lines = append(lines, spec.String())
					continue
				}
				if !out.Ok() {
					return nil, fmt.Errorf("converting to %s exited %d: %s",
						platform, out.ExitCode, strings.TrimSpace(out.Stderr))
				}
			}
			if mode == command.Simulate {
				return &pipeline.ActionResult{Message: strings.Join(lines, "\n")}, nil
			}

			arts, err := artifact.LocateAll(app.Convert.OutputDir, app.Build.Pattern)
			if err != nil {
				return nil, fmt.Errorf("conversion succeeded but produced nothing locatable: %w", err)
			}
			paths := make([]string, 0, len(arts))
			for _, a := range arts {
				paths = append(paths, a.Path)
			}
			return &pipeline.ActionResult{
				Message:   fmt.Sprintf("converted to %d platform artifact(s)", len(paths)),
				Artifacts: paths,
			}, nil
		},
	}
}

// uploadSources lists what the upload stage will push: converted artifacts
// when present, otherwise the build artifact itself (convert may have been
// skipped for a noarch release). Only the not-found condition triggers the
// fallback; an invalid convert directory is a configuration error and is
// reported as such.
func uploadSources(app *config.Config) ([]*artifact.Artifact, error) {
	arts, err := artifact.LocateAll(app.Convert.OutputDir, app.Build.Pattern)
	if errors.Is(err, artifact.ErrNotFound) {
		return artifact.LocateAll(app.Build.OutputDir, app.Build.Pattern)
	}
	return arts, err
}

func uploadStage(cfg Config, app *config.Config, client *registry.Client) pipeline.Stage {
	return pipeline.Stage{
		Name: "upload",
		Skip: cfg.SkipUpload,
		Precondition: func(ctx context.Context) error {
			_, err := uploadSources(app)
			return err
		},
		Action: func(ctx context.Context, mode command.Mode) (*pipeline.ActionResult, error) {
			if mode == command.Simulate {
				arts, err := uploadSources(app)
				if err != nil && !errors.Is(err, artifact.ErrNotFound) {
					return nil, err
				}
				paths := []string{filepath.Join(app.Convert.OutputDir, "<platform>", app.Build.Pattern)}
				if err == nil {
					paths = paths[:0]
					for _, a := range arts {
						paths = append(paths, a.Path)
					}
				}
				var lines []string
				for _, p := range paths {
					lines = append(lines, client.UploadSpec(p, cfg.SkipExisting).String())
				}
				return &pipeline.ActionResult{Message: strings.Join(lines, "\n")}, nil
			}

			arts, err := uploadSources(app)
			if err != nil {
				return nil, err
			}
			var paths []string
			for _, a := range arts {
				if err := client.Upload(ctx, a.Path, cfg.SkipExisting, mode); err != nil {
					return nil, err
				}
				paths = append(paths, a.Path)
			}
			return &pipeline.ActionResult{
				Message:   fmt.Sprintf("uploaded %d artifact(s) to %s", len(paths), client.Org),
				Artifacts: paths,
			}, nil
		},
	}
}

// verifyStage is terminal and read-only: it confirms the package is visible
// at the destination. A missing package after a successful upload usually
// means registry propagation delay; the stage fails and advises a retry
// rather than retrying itself.
func verifyStage(cfg Config, app *config.Config, client *registry.Client) pipeline.Stage {
	subject := app.Package
	if cfg.Version != "" {
		subject += " " + cfg.Version
	}
	return pipeline.Stage{
		Name: "verify",
		Skip: cfg.SkipVerify,
		Action: func(ctx context.Context, mode command.Mode) (*pipeline.ActionResult, error) {
			if mode == command.Simulate {
				return &pipeline.ActionResult{Message: client.ShowSpec(app.Package).String()}, nil
			}
			presence, err := client.Show(ctx, app.Package, mode)
			if err != nil {
				return nil, err
			}
			if presence != registry.Present {
				return nil, fmt.Errorf("%s/%s is not visible on the registry; "+
					"if the upload just finished this may be propagation delay — retry after a short wait",
					client.Org, subject)
			}
			return &pipeline.ActionResult{
				Message: fmt.Sprintf("%s/%s is visible", client.Org, subject),
			}, nil
		},
	}
}
