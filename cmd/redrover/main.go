// Package main is the entry point for the redrover CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redrover-dev/redrover/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redrover",
		Short: "Derive repository coding standards from recent pull requests",
		Long: `Redrover reads the diffs of recently closed pull requests, asks a chat model
for the design patterns they show, and condenses them into a short standards
document or a code review prompt.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(runCmd(modeStandards))
	cmd.AddCommand(runCmd(modePrompt))
	cmd.AddCommand(tokensCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
