// Package cli defines the alpaca-release command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/NB-TUDelft/alpaca-kernel-2/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "alpaca-release",
	Short: "Build, convert, upload and verify the kernel package release",
	Long: `alpaca-release drives the package release pipeline: it builds the conda
package, converts it to the target platforms, uploads everything to the
registry organization and verifies the package is visible afterwards.`,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alpaca-release %s\n", version.Version)
	},
}
