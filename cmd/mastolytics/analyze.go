package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manishghoshal99/mastolytics/internal/config"
	"github.com/manishghoshal99/mastolytics/internal/database"
	"github.com/manishghoshal99/mastolytics/internal/log"
	"github.com/manishghoshal99/mastolytics/internal/model"
	"github.com/manishghoshal99/mastolytics/internal/pipeline"
	"github.com/manishghoshal99/mastolytics/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [ndjson-file...]",
		Short: "Analyze Mastodon NDJSON dumps for sentiment trends",
		Long: `Analyze reads one or more NDJSON dumps and computes sentiment rankings.

The file is split into equal line ranges and processed by concurrent
workers, then the partial results are merged. The output includes:
- Happiest and saddest hours, days, and users
- Most active users and busiest hours
- Language distribution and interaction totals
- Sentiment distribution statistics (mean, median, std, min, max)

Examples:
  # Analyze with one worker per CPU
  mastolytics analyze data/mastodon-144Gb.ndjson

  # Analyze with a fixed worker count
  mastolytics analyze -w 8 data/mastodon-144Gb.ndjson

  # Top 10 entries per ranking, JSON output
  mastolytics analyze -n 10 --json data/mastodon-144Gb.ndjson

  # Write per-category text files for the cluster tooling
  mastolytics analyze -d output/results data/mastodon-144Gb.ndjson

  # Analyze several dumps, two at a time
  mastolytics analyze -b 2 data/part1.ndjson data/part2.ndjson data/part3.ndjson

Configuration file (.mastolytics) example:
  defaults:
    workers: 8
    top_n: 5
  datasets:
    data/mastodon-144Gb.ndjson:
      workers: 16
      chunk_size: 50000`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Analysis behavior flags
	cmd.Flags().IntP("workers", "w", 0,
		"Number of concurrent shard workers (default: number of CPUs)")
	cmd.Flags().Int("chunk", config.DefaultChunkSize,
		"Lines read per chunk within a shard")
	cmd.Flags().IntP("top", "n", config.DefaultTopN,
		"Number of entries per ranking")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of datasets analyzed concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mastolytics in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("output-dir", "d", "",
		"Write per-category text files (happiest_hours.txt etc.) to this directory")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	cfg.ChunkSize, err = cmd.Flags().GetInt("chunk")
	if err != nil {
		return nil, err
	}

	cfg.TopN, err = cmd.Flags().GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-dataset configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.DatasetConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.DatasetConfigs = &config.File{
			Datasets: make(map[string]config.DatasetConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	// Always save runs to the database using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the datasets
	cfg.Datasets = args

	return cfg, nil
}

// runAnalyze executes the analysis.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Datasets) == 0 {
		return errors.New("no datasets provided (specify one or more NDJSON files as arguments)")
	}

	logger.Info("starting analysis",
		"datasets", cfg.Datasets,
		"workers", cfg.Workers,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled.
	// A broken database degrades to a warning: the analysis itself is
	// the point, persistence is a convenience.
	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run history disabled, could not open database", "dir", cfg.DBDir, "error", err)
			db = nil
		} else {
			defer db.Close()
			logger.Info("database opened", "path", db.Path())
		}
	}

	if len(cfg.Datasets) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalyze(ctx, cfg, db, logger)
	}

	return runSequentialAnalyze(ctx, cfg, db, logger)
}

// runSequentialAnalyze analyzes datasets one at a time.
func runSequentialAnalyze(ctx context.Context, cfg *config.Config, db *database.RunDB, logger *slog.Logger) error {
	for _, dataset := range cfg.Datasets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForDataset(cfg, logger, dataset)
		analysisReport := model.NewAnalysisReport(dataset)

		fmt.Printf("Analyzing %s...\n", dataset)
		startTime := time.Now()

		if err := p.Execute(ctx, analysisReport); err != nil {
			logger.Error("analysis failed", "dataset", dataset, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", dataset, err)
			continue
		}

		finishReport(analysisReport)
		fmt.Printf("Analysis completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, analysisReport, dataset); err != nil {
			logger.Error("report failed", "dataset", dataset, "error", err)
		}

		if err := saveRun(ctx, db, analysisReport, logger); err != nil {
			logger.Error("failed to save run", "dataset", dataset, "error", err)
		}
	}

	return nil
}

// runBatchAnalyze analyzes multiple datasets concurrently using BatchProcessor.
func runBatchAnalyze(ctx context.Context, cfg *config.Config, db *database.RunDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch analysis of %d datasets (concurrency: %d)...\n\n",
		len(cfg.Datasets), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(dataset string) *pipeline.Pipeline {
			return createPipelineForDataset(cfg, logger, dataset)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Datasets, func(analysisReport *model.AnalysisReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		finishReport(analysisReport)
		fmt.Printf("[%d/%d] Analysis completed: %s\n", index+1, len(cfg.Datasets), analysisReport.Dataset)

		if err := outputReport(cfg, analysisReport, analysisReport.Dataset); err != nil {
			logger.Error("report failed", "dataset", analysisReport.Dataset, "error", err)
		}

		if err := saveRun(ctx, db, analysisReport, logger); err != nil {
			logger.Error("failed to save run", "dataset", analysisReport.Dataset, "error", err)
		}
	})

	fmt.Printf("\nBatch analysis completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// finishReport stamps the run's total wall-clock time onto the report.
// The duration is measured from the report's own StartedAt so that
// concurrent batch runs record per-dataset times, not batch elapsed time.
func finishReport(analysisReport *model.AnalysisReport) {
	if analysisReport.Perf == nil {
		analysisReport.Perf = &model.PerfStats{}
	}
	analysisReport.Perf.TotalTime = time.Since(analysisReport.StartedAt)
}

// createPipelineForDataset creates a pipeline honoring per-dataset
// config-file overrides.
func createPipelineForDataset(cfg *config.Config, logger *slog.Logger, dataset string) *pipeline.Pipeline {
	workers := cfg.Workers
	chunkSize := cfg.ChunkSize
	topN := cfg.TopN

	if cfg.DatasetConfigs != nil {
		override := cfg.DatasetConfigs.ForDataset(dataset)
		if override.Workers > 0 {
			workers = override.Workers
		}
		if override.ChunkSize > 0 {
			chunkSize = override.ChunkSize
		}
		if override.TopN > 0 {
			topN = override.TopN
		}
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	return pipeline.DefaultPipeline(pipelineOpts,
		pipeline.WithPipelineWorkers(workers),
		pipeline.WithPipelineChunkSize(chunkSize),
		pipeline.WithPipelineTopN(topN),
	)
}

// outputReport outputs the analysis report in the requested format.
func outputReport(cfg *config.Config, analysisReport *model.AnalysisReport, dataset string) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithPerf(true))
	}

	if _, err := w.Write(analysisReport); err != nil {
		return err
	}

	// Per-category text files for downstream tooling
	if cfg.OutputDir != "" {
		outputDir := cfg.OutputDir
		if cfg.DatasetConfigs != nil {
			if override := cfg.DatasetConfigs.ForDataset(dataset); override.OutputDir != "" {
				outputDir = override.OutputDir
			}
		}
		if _, err := report.NewDirWriter(outputDir).Write(analysisReport); err != nil {
			return err
		}
	}

	return nil
}

// saveRun persists the run to the database if enabled.
// If db is nil, this function is a no-op.
func saveRun(ctx context.Context, db *database.RunDB, analysisReport *model.AnalysisReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	if analysisReport.Summary == nil {
		logger.Warn("not saving incomplete run", "dataset", analysisReport.Dataset, "runID", analysisReport.RunID)
		return nil
	}

	if err := db.SaveRun(ctx, analysisReport); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to database", "dataset", analysisReport.Dataset, "runID", analysisReport.RunID)
	return nil
}
