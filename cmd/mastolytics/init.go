package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manishghoshal99/mastolytics/internal/workspace"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Scaffold an analysis workspace",
		Long: `Init creates the directory layout and seed files for an analysis project.

The generated workspace contains:
- data/ for NDJSON dumps
- slurm/ with the 1node1core, 1node8core, and 2node8core batch scripts
- output/results, output/logs, and output/figures for run artifacts
- a .mastolytics configuration file with commented defaults

Running init again is safe: existing files are left untouched unless
--force is given, and directories are never removed.

Examples:
  # Scaffold the current directory
  mastolytics init

  # Scaffold a new project directory
  mastolytics init myproject

  # Restore the seed scripts over edited copies
  mastolytics init -f`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInitCmd,
	}

	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing seed files with the embedded templates")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	scaffolder := workspace.NewScaffolder(root, workspace.WithForce(force))
	if err := scaffolder.Run(); err != nil {
		return fmt.Errorf("failed to scaffold workspace: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace: %s\n", scaffolder.Root())
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Place your NDJSON dump under data/")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Run 'mastolytics analyze data/<file>.ndjson' locally")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Run 'mastolytics submit' to queue the batch scripts on Slurm")

	return nil
}
