package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/config"
	vlog "github.com/NB-TUDelft/alpaca-kernel-2/internal/log"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/pipeline"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/prereq"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/registry"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/release"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/run"
	"github.com/spf13/cobra"
)

var (
	relVersion   string
	relOrg       string
	relLabel     string
	relPlatforms []string
	skipBuild    bool
	skipConvert  bool
	skipUpload   bool
	skipVerify   bool
	skipExisting bool
	dryRun       bool
	verbose      bool
)

var releaseCmd = &cobra.Command{
	Use:          "release",
	Short:        "Run the full release pipeline",
	SilenceUsage: true,
	RunE:         runRelease,
}

func init() {
	releaseCmd.Flags().StringVar(&relVersion, "version", "", "Version being released (default: contents of the VERSION file)")
	releaseCmd.Flags().StringVar(&relOrg, "org", "", "Destination registry organization")
	releaseCmd.Flags().StringVar(&relLabel, "label", "", "Release label/channel")
	releaseCmd.Flags().StringSliceVar(&relPlatforms, "platforms", nil, "Conversion target platforms")
	releaseCmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Skip the build stage")
	releaseCmd.Flags().BoolVar(&skipConvert, "skip-convert", false, "Skip the convert stage")
	releaseCmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Skip the upload stage")
	releaseCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip the verify stage")
	releaseCmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Treat artifacts already at the destination as uploaded")
	releaseCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the commands that would run without executing anything")
	releaseCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Org == "" {
		return fmt.Errorf("destination organization is required (--org or config)")
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	version := relVersion
	if version == "" {
		version = versionFromFile()
	}

	runner := &command.ExecRunner{Timeout: timeout}
	client := &registry.Client{
		Runner: runner,
		Tool:   cfg.Registry.Tool,
		Org:    cfg.Org,
		Label:  cfg.Label,
	}

	relCfg := release.Config{
		Version:      version,
		Platforms:    cfg.Platforms,
		SkipBuild:    skipBuild,
		SkipConvert:  skipConvert,
		SkipUpload:   skipUpload,
		SkipVerify:   skipVerify,
		SkipExisting: skipExisting,
		DryRun:       dryRun,
	}

	mode := command.Execute
	if dryRun {
		mode = command.Simulate
	}

	rec, err := run.New(version, cfg.Org, dryRun)
	if err != nil {
		vlog.Warn("cannot record run", "err", err)
		rec = nil
	}

	// Log alongside the run report so a failed release can be inspected later.
	var logWriter io.Writer
	if rec != nil {
		if f, err := rec.LogFile(); err == nil {
			logWriter = f
			defer f.Close()
		} else {
			vlog.Warn("cannot open run log", "err", err)
		}
	}
	vlog.Init(cfg.LogLevel, logWriter)

	// Pre-flight: no stage runs in an unready environment.
	if f := prereq.Check(cmd.Context(), release.Requirements(cfg, client, mode)); f != nil {
		if rec != nil {
			if err := rec.Fail(f.Error()); err != nil {
				vlog.Warn("cannot record failure", "err", err)
			}
		}
		if f.Hint != "" {
			return fmt.Errorf("%s (%s)", f.Error(), f.Hint)
		}
		return f
	}

	display := pipeline.NewDisplay(verbose)
	display.Header(fmt.Sprintf("Releasing %s %s → %s", cfg.Package, version, cfg.Org))

	engine := &pipeline.Engine{DryRun: dryRun, Display: display}
	rep := engine.Run(cmd.Context(), release.Stages(relCfg, cfg, runner, client))

	if rec != nil {
		if err := rec.Record(rep); err != nil {
			vlog.Warn("cannot record run report", "err", err)
		}
	}

	if !rep.Succeeded() {
		return fmt.Errorf("release failed at stage %q", rep.FailedStage)
	}
	return nil
}

// applyOverrides copies non-empty flag values over the file config.
func applyOverrides(cfg *config.Config) {
	if relOrg != "" {
		cfg.Org = relOrg
	}
	if relLabel != "" {
		cfg.Label = relLabel
	}
	if len(relPlatforms) > 0 {
		cfg.Platforms = relPlatforms
	}
}

// versionFromFile reads the VERSION file the package itself is versioned by.
func versionFromFile() string {
	data, err := os.ReadFile("VERSION")
	if err != nil {
		return "unversioned"
	}
	return strings.TrimSpace(string(data))
}
