// Package config loads the release tool configuration from YAML, merging
// defaults, user-level and project-level files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Package        string         `yaml:"package"`
	Org            string         `yaml:"org"`
	Label          string         `yaml:"label"`
	Platforms      []string       `yaml:"platforms"`
	Build          BuildConfig    `yaml:"build"`
	Convert        ConvertConfig  `yaml:"convert"`
	Registry       RegistryConfig `yaml:"registry"`
	CommandTimeout string         `yaml:"command_timeout"`
	LogLevel       string         `yaml:"log_level"`
}

// BuildConfig describes the external build tool invocation.
type BuildConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	OutputDir string   `yaml:"output_dir"`
	Manifest  string   `yaml:"manifest"`
	Pattern   string   `yaml:"pattern"` // artifact filename glob in the output dir
}

// ConvertConfig describes the platform conversion tool.
type ConvertConfig struct {
	Command   string `yaml:"command"`
	OutputDir string `yaml:"output_dir"`
}

// RegistryConfig names the registry client tool.
type RegistryConfig struct {
	Tool string `yaml:"tool"`
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Package == "" {
		return fmt.Errorf("package is required")
	}
	if c.Build.Command == "" {
		return fmt.Errorf("build.command is required")
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("platforms must name at least one conversion target")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses the per-command timeout. Zero means unbounded.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("command_timeout: %w", err)
	}
	return d, nil
}

// Load resolves config from defaults → user → project.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".alpaca-release", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".alpaca-release", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		Package:   "alpaca_kernel_2",
		Label:     "main",
		Platforms: []string{"linux-64", "osx-64", "win-64"},
		Build: BuildConfig{
			Command:   "conda",
			Args:      []string{"build", "."},
			OutputDir: filepath.Join("dist", "conda"),
			Manifest:  "meta.yaml",
			Pattern:   "*.tar.bz2",
		},
		Convert: ConvertConfig{
			Command:   "conda",
			OutputDir: filepath.Join("dist", "converted"),
		},
		Registry: RegistryConfig{
			Tool: "anaconda",
		},
		CommandTimeout: "30m",
		LogLevel:       "info",
	}
}
