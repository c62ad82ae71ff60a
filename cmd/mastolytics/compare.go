package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manishghoshal99/mastolytics/internal/config"
	"github.com/manishghoshal99/mastolytics/internal/database"
)

// NewCompareCmd creates the compare command.
// This command compares run times across worker configurations using
// historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [ndjson-file]",
		Short: "Compare run times across worker configurations",
		Long: `Compare shows how the analysis scales with the number of workers.

For each distinct worker count recorded for the dataset, the most recent
run is selected, and speedup and parallel efficiency are computed against
the slowest configuration (usually the serial baseline):

  speedup    = baseline time / run time
  efficiency = speedup / workers

The comparison requires runs from at least two worker configurations.
Use 'mastolytics analyze -w <n>' or the batch scripts to produce them.

Examples:
  # Compare worker configurations for a dataset
  mastolytics compare data/mastodon-144Gb.ndjson

  # List all run history for a dataset
  mastolytics compare --list data/mastodon-144Gb.ndjson

  # List all datasets in the database
  mastolytics compare --list-datasets

  # Output comparison in JSON format
  mastolytics compare --json data/mastodon-144Gb.ndjson`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified dataset")
	cmd.Flags().BoolP("list-datasets", "L", false,
		"List all datasets in the database")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDatasets, err := cmd.Flags().GetBool("list-datasets")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	var dataset string
	if !listDatasets {
		if len(args) == 0 {
			return errors.New("dataset is required (use --list-datasets to see available datasets)")
		}
		dataset = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if listDatasets {
		return listKnownDatasets(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, dataset)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	return runComparison(ctx, db, dataset, jsonOutput, markdownOutput)
}

// listKnownDatasets lists all datasets that have run records.
func listKnownDatasets(ctx context.Context, db *database.RunDB) error {
	datasets, err := db.ListDatasets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No runs found in the database.")
		fmt.Println("\nUse 'mastolytics analyze <file>' to analyze a dataset.")
		return nil
	}

	fmt.Printf("Datasets (%d):\n\n", len(datasets))
	for _, d := range datasets {
		fmt.Printf("  • %s\n", d)
	}
	fmt.Println("\nUse 'mastolytics compare --list <dataset>' to see run history.")

	return nil
}

// listRunHistory lists all run records for a dataset.
func listRunHistory(ctx context.Context, db *database.RunDB, dataset string) error {
	runs, err := db.ListRuns(ctx, dataset)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", dataset)
		fmt.Println("\nUse 'mastolytics analyze' to analyze this dataset.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", dataset, len(runs))
	fmt.Printf("  %-36s  %-20s  %-8s  %-12s  %s\n", "Run ID", "Started", "Workers", "Duration", "Lines")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, run := range runs {
		fmt.Printf("  %-36s  %-20s  %-8d  %-12s  %d\n",
			run.ID,
			run.StartedAt.Format(timestampFormat),
			run.Workers,
			run.Duration.Round(time.Millisecond),
			run.ProcessedLines,
		)
	}

	fmt.Println("\nUse 'mastolytics compare <dataset>' to compare worker configurations.")

	return nil
}

// ComparisonResult holds the scaling comparison for one dataset.
type ComparisonResult struct {
	// Dataset is the compared dataset path.
	Dataset string `json:"dataset"`

	// Baseline is the slowest configuration all others are measured
	// against.
	Baseline ConfigurationRun `json:"baseline"`

	// Runs holds one entry per worker configuration, ordered by
	// ascending worker count.
	Runs []ConfigurationRun `json:"runs"`
}

// ConfigurationRun is one worker configuration's most recent run with
// its scaling metrics.
type ConfigurationRun struct {
	// RunID is the underlying run's UUID.
	RunID string `json:"run_id"`

	// Workers is the shard worker count.
	Workers int `json:"workers"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the run's wall-clock time.
	Duration time.Duration `json:"duration"`

	// ProcessedLines is the number of lines that contributed.
	ProcessedLines int64 `json:"processed_lines"`

	// Speedup is baseline duration divided by this run's duration.
	Speedup float64 `json:"speedup"`

	// Efficiency is speedup divided by the worker count.
	Efficiency float64 `json:"efficiency"`
}

// runComparison builds and outputs the scaling comparison.
func runComparison(ctx context.Context, db *database.RunDB, dataset string, jsonOutput, markdownOutput bool) error {
	runs, err := db.ListRuns(ctx, dataset)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", dataset)
	}

	result, err := buildComparison(dataset, runs)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputComparisonJSON(result)
	}
	if markdownOutput {
		return outputComparisonMarkdown(result)
	}
	return outputComparisonText(result)
}

// buildComparison selects the newest run per worker count and computes
// speedup and efficiency against the slowest configuration.
func buildComparison(dataset string, runs []*database.RunRecord) (*ComparisonResult, error) {
	// Runs are newest first; keep the first (newest) per worker count.
	newest := make(map[int]*database.RunRecord)
	for _, run := range runs {
		if _, seen := newest[run.Workers]; !seen {
			newest[run.Workers] = run
		}
	}

	if len(newest) < 2 {
		return nil, fmt.Errorf("runs from at least 2 worker configurations are required for comparison (found %d)", len(newest))
	}

	configs := make([]ConfigurationRun, 0, len(newest))
	for workers, run := range newest {
		if run.Duration <= 0 {
			return nil, fmt.Errorf("run %s has no recorded duration", run.ID)
		}
		configs = append(configs, ConfigurationRun{
			RunID:          run.ID,
			Workers:        workers,
			StartedAt:      run.StartedAt,
			Duration:       run.Duration,
			ProcessedLines: run.ProcessedLines,
		})
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Workers < configs[j].Workers
	})

	// The slowest configuration is the baseline.
	baseline := configs[0]
	for _, c := range configs[1:] {
		if c.Duration > baseline.Duration {
			baseline = c
		}
	}

	for i := range configs {
		configs[i].Speedup = float64(baseline.Duration) / float64(configs[i].Duration)
		configs[i].Efficiency = configs[i].Speedup / float64(configs[i].Workers)
	}

	result := &ComparisonResult{
		Dataset: dataset,
		Runs:    configs,
	}
	for _, c := range configs {
		if c.RunID == baseline.RunID {
			result.Baseline = c
			break
		}
	}

	return result, nil
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scaling Comparison: %s\n\n", result.Dataset)

	fmt.Printf("Baseline: %d worker(s), %s\n\n",
		result.Baseline.Workers, result.Baseline.Duration.Round(time.Millisecond))

	fmt.Println("| Workers | Duration | Speedup | Efficiency | Run Date |")
	fmt.Println("|---------|----------|---------|------------|----------|")
	for _, c := range result.Runs {
		fmt.Printf("| %d | %s | %.2fx | %.0f%% | %s |\n",
			c.Workers,
			c.Duration.Round(time.Millisecond),
			c.Speedup,
			c.Efficiency*100,
			c.StartedAt.Format("2006-01-02 15:04"),
		)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scaling Comparison: %s\n", result.Dataset)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nBaseline: %d worker(s), %s\n\n",
		result.Baseline.Workers, result.Baseline.Duration.Round(time.Millisecond))

	fmt.Printf("  %-8s  %-12s  %-8s  %-11s  %s\n", "Workers", "Duration", "Speedup", "Efficiency", "Run Date")
	fmt.Println("  " + strings.Repeat("-", 60))
	for _, c := range result.Runs {
		fmt.Printf("  %-8d  %-12s  %-8s  %-11s  %s\n",
			c.Workers,
			c.Duration.Round(time.Millisecond),
			fmt.Sprintf("%.2fx", c.Speedup),
			fmt.Sprintf("%.0f%%", c.Efficiency*100),
			c.StartedAt.Format(timestampFormat),
		)
	}

	return nil
}
