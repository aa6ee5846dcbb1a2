package cli

import (
	"fmt"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/command"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/config"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/registry"
	"github.com/NB-TUDelft/alpaca-kernel-2/internal/release"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check release prerequisites and configuration",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Printf("✅ %s\n", label)
		} else {
			fmt.Printf("❌ %s — %s\n", label, hint)
			allOK = false
		}
	}

	cfg, cfgErr := config.Load()
	check("config loadable", cfgErr == nil, fmt.Sprintf("fix config: %v", cfgErr))
	if cfgErr != nil {
		return nil
	}
	validateErr := cfg.Validate()
	check("config valid", validateErr == nil, fmt.Sprintf("%v", validateErr))
	check("destination org set", cfg.Org != "", "set org in .alpaca-release/config.yaml or pass --org")

	timeout, _ := cfg.Timeout()
	client := &registry.Client{
		Runner: &command.ExecRunner{Timeout: timeout},
		Tool:   cfg.Registry.Tool,
		Org:    cfg.Org,
		Label:  cfg.Label,
	}

	// Unlike the release pre-flight, the doctor evaluates every requirement
	// so the operator sees all problems at once.
	for _, req := range release.Requirements(cfg, client, command.Execute) {
		err := req.Check(cmd.Context())
		hint := req.Hint
		if err != nil {
			hint = fmt.Sprintf("%v — %s", err, req.Hint)
		}
		check(req.ID, err == nil, hint)
	}

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed. Ready to release.")
	} else {
		fmt.Println("Some checks failed. Fix the issues above before releasing.")
	}
	return nil
}
