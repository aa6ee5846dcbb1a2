package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize release configuration in the current repository",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir := ".alpaca-release"
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists: %s\n", configPath)
		return nil
	}

	defaultConfig := `# alpaca-release configuration
package: alpaca_kernel_2
org: ""           # destination organization on the registry (required)
label: main

platforms: [linux-64, osx-64, win-64]

build:
  command: conda
  args: [build, .]
  output_dir: dist/conda
  manifest: meta.yaml
  pattern: "*.tar.bz2"

convert:
  command: conda
  output_dir: dist/converted

registry:
  tool: anaconda

command_timeout: 30m
log_level: info
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Set the destination org, then run `alpaca-release doctor` to verify the environment.")
	return nil
}
