package cli

import (
	"fmt"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/pipeline"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/run"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:          "report",
	Short:        "Show the most recent release run report",
	SilenceUsage: true,
	RunE:         runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	r, err := run.Latest()
	if err != nil {
		return err
	}

	header := fmt.Sprintf("%s — version %s → %s (%s)", r.ID, r.Meta.Version, r.Meta.Org, r.Meta.Status)
	if r.Meta.DryRun {
		header += " [dry-run]"
	}
	fmt.Println(header)

	for _, sr := range r.Meta.Stages {
		marker := map[pipeline.Outcome]string{
			pipeline.Succeeded:   "✔",
			pipeline.Skipped:     "–",
			pipeline.Failed:      "✘",
			pipeline.SimulatedOk: "≈",
		}[sr.Outcome]
		fmt.Printf("  %s %-10s %s\n", marker, sr.Stage, sr.Message)
		for _, a := range sr.Artifacts {
			fmt.Printf("      %s\n", a)
		}
	}

	if r.Meta.Error != "" && r.Meta.FailedStage == "" {
		fmt.Printf("  error: %s\n", r.Meta.Error)
	}
	return nil
}
