package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manishghoshal99/mastolytics/internal/config"
	"github.com/manishghoshal99/mastolytics/internal/database"
	"github.com/manishghoshal99/mastolytics/internal/log"
	"github.com/manishghoshal99/mastolytics/internal/slurm"
)

// NewSubmitCmd creates the submit command.
func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit [data-file]",
		Short: "Submit the batch scripts to Slurm in sequence",
		Long: `Submit queues the three batch scripts on the cluster scheduler, in
order of increasing parallelism:

  1. slurm/1node1core.slurm  (serial baseline)
  2. slurm/1node8core.slurm  (single node, 8 cores)
  3. slurm/2node8core.slurm  (two nodes, 8 cores each)

Submissions are spaced out by a pacing delay so the scheduler assigns
job IDs in a predictable order. Each sbatch output is checked and the
sequence stops at the first failed submission.

The data file argument is forwarded to every script verbatim. Job IDs
are recorded in the run database unless --no-db is given.

Examples:
  # Submit with the default data file
  mastolytics submit

  # Submit a specific dump
  mastolytics submit data/mastodon-106Gb.ndjson

  # Faster pacing, custom script location
  mastolytics submit --delay 2s --slurm-dir jobs/

  # Show recent submission history
  mastolytics submit --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSubmitCmd,
	}

	cmd.Flags().Duration("delay", config.DefaultSubmitDelay,
		"Pacing delay between consecutive submissions")
	cmd.Flags().String("slurm-dir", config.DefaultSlurmDir,
		"Directory containing the batch scripts")
	cmd.Flags().Bool("no-db", false,
		"Do not record submissions in the run database")
	cmd.Flags().BoolP("list", "l", false,
		"List recent submissions instead of submitting")
	cmd.Flags().Int("limit", 20,
		"Maximum entries shown with --list (0 for all)")

	return cmd
}

// runSubmitCmd executes the submit command.
func runSubmitCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.SubmitDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return err
	}
	cfg.SlurmDir, err = cmd.Flags().GetString("slurm-dir")
	if err != nil {
		return err
	}
	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return listSubmissions(cmd.Context(), db, limit)
	}

	if len(args) == 1 {
		cfg.DataFile = args[0]
	}

	if cfg.SubmitDelay < 0 {
		return config.ErrInvalidSubmitDelay
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runSubmit(ctx, cfg, logger)
}

// runSubmit submits the script sequence and records the job IDs.
func runSubmit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	scripts := slurm.DefaultScripts(cfg.SlurmDir)

	var db *database.RunDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("submission history disabled, could not open database", "dir", cfg.DBDir, "error", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	client := slurm.NewClient(
		slurm.WithDelay(cfg.SubmitDelay),
		slurm.WithLogger(logger),
	)

	fmt.Printf("Submitting %d batch jobs for %s (delay: %s)...\n\n",
		len(scripts), cfg.DataFile, cfg.SubmitDelay)

	jobs, err := client.SubmitSequence(ctx, scripts, cfg.DataFile)

	// Record whichever jobs made it onto the queue, even if the
	// sequence aborted partway.
	for _, job := range jobs {
		fmt.Printf("Submitted batch job %d (%s)\n", job.ID, job.Script)
		if db != nil {
			record := &database.SubmissionRecord{
				Script:   job.Script,
				DataFile: job.DataFile,
				JobID:    job.ID,
			}
			if _, dbErr := db.RecordSubmission(ctx, record); dbErr != nil {
				logger.Error("failed to record submission", "script", job.Script, "error", dbErr)
			}
		}
	}

	if err != nil {
		return fmt.Errorf("submission sequence failed after %d of %d jobs: %w",
			len(jobs), len(scripts), err)
	}

	fmt.Printf("\nAll %d jobs queued. Check progress with 'squeue'.\n", len(jobs))
	return nil
}

// timestampFormat renders submission timestamps in listings.
const timestampFormat = "2006-01-02 15:04:05"

// listSubmissions prints recent submission history from the database.
func listSubmissions(ctx context.Context, db *database.RunDB, limit int) error {
	submissions, err := db.ListSubmissions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if len(submissions) == 0 {
		fmt.Println("No submissions recorded.")
		fmt.Println("\nUse 'mastolytics submit' to queue batch jobs.")
		return nil
	}

	fmt.Printf("Recent submissions (%d):\n\n", len(submissions))
	fmt.Printf("  %-8s  %-20s  %-28s  %s\n", "Job ID", "Submitted", "Script", "Data File")
	for _, s := range submissions {
		submitted := "unknown"
		if !s.SubmittedAt.IsZero() {
			submitted = s.SubmittedAt.Format(timestampFormat)
		}
		fmt.Printf("  %-8d  %-20s  %-28s  %s\n", s.JobID, submitted, s.Script, s.DataFile)
	}

	return nil
}
