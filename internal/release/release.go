// Package release assembles the build → convert → upload → verify pipeline
// for publishing the kernel package to the registry.
package release

import (
	"context"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/config"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/prereq"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/registry"
)

// Config is the per-run release configuration, resolved once from flags and
// file config at process start and never mutated afterwards.
type Config struct {
	Version      string
	Platforms    []string
	SkipBuild    bool
	SkipConvert  bool
	SkipUpload   bool
	SkipVerify   bool
	SkipExisting bool // treat already-uploaded artifacts as success
	DryRun       bool
}

// Requirements builds the ordered pre-flight checks. All of them must hold
// before the pipeline may start; every stage assumes tool availability and a
// valid credential context. In Simulate mode the authentication check does
// not spawn the registry client.
func Requirements(app *config.Config, client *registry.Client, mode command.Mode) []prereq.Requirement {
	return []prereq.Requirement{
		prereq.ToolPresent("build-tool", app.Build.Command,
			"install conda: https://docs.conda.io"),
		prereq.ToolPresent("convert-tool", app.Convert.Command,
			"install conda: https://docs.conda.io"),
		prereq.ToolPresent("registry-client", app.Registry.Tool,
			"install the anaconda client: conda install anaconda-client"),
		{
			ID: "authenticated",
			Check: func(ctx context.Context) error {
				return client.Whoami(ctx, mode)
			},
			Hint: "run `" + app.Registry.Tool + " login`",
		},
		prereq.FileExists("manifest", app.Build.Manifest,
			"the build recipe must exist at "+app.Build.Manifest),
	}
}
