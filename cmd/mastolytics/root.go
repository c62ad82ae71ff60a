// Package main provides the entry point for the mastolytics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mastolytics.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mastolytics",
		Short: "Sentiment analytics for Mastodon NDJSON dumps",
		Long: `mastolytics analyzes Mastodon NDJSON dumps for sentiment trends: the
happiest and saddest hours, days, and users, language distribution, and
interaction totals.

It also scaffolds an analysis workspace and submits the 1-core, 8-core,
and 16-core batch scripts to a Slurm cluster in sequence, so the same
analysis can be timed across worker configurations.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewSubmitCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
