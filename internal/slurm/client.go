package slurm

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultScripts are the batch scripts submitted by the standard
// benchmark sequence, in their fixed submission order: one node with a
// single core, one node with eight cores, two nodes with eight cores.
// The order matters for the downstream performance comparison.
func DefaultScripts(slurmDir string) []string {
	return []string{
		filepath.Join(slurmDir, "1node1core.slurm"),
		filepath.Join(slurmDir, "1node8core.slurm"),
		filepath.Join(slurmDir, "2node8core.slurm"),
	}
}

// jobIDPattern matches Slurm's submission confirmation line.
// Example: "Submitted batch job 123456"
var jobIDPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// Runner executes an external command and returns its combined output.
//
// Design decision: We put the exec boundary behind an interface so the
// submission sequencing (ordering, pacing, argument forwarding) is
// testable without sbatch installed. The production implementation is a
// thin wrapper over exec.CommandContext.
type Runner interface {
	// Run executes name with args and returns combined stdout/stderr.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner is the production Runner backed by exec.CommandContext.
type execRunner struct{}

// Run executes the command and returns its combined output.
func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec // sbatch path and scripts are operator-controlled
	return string(out), err
}

// Job is a successfully submitted batch job.
type Job struct {
	// ID is the scheduler-assigned job ID.
	ID int64

	// Script is the batch script that was submitted.
	Script string

	// DataFile is the dataset argument passed to the script.
	DataFile string

	// SubmittedAt is when the submission returned.
	SubmittedAt time.Time
}

// Client submits batch jobs through sbatch.
type Client struct {
	// runner executes the sbatch command.
	runner Runner

	// sbatchPath is the sbatch executable name or path.
	sbatchPath string

	// delay is the pacing delay between sequence submissions.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRunner sets a custom command runner. Used by tests to fake sbatch.
func WithRunner(r Runner) ClientOption {
	return func(c *Client) {
		c.runner = r
	}
}

// WithSbatchPath sets the sbatch executable path.
func WithSbatchPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.sbatchPath = path
		}
	}
}

// WithDelay sets the pacing delay between sequence submissions.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		runner:     execRunner{},
		sbatchPath: "sbatch",
		delay:      5 * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit submits one batch script with the data file as its argument.
// The sbatch output is parsed for the assigned job ID; a submission
// whose output cannot be parsed is treated as failed.
func (c *Client) Submit(ctx context.Context, script, dataFile string) (*Job, error) {
	c.logger.Info("submitting batch job",
		"script", script,
		"dataFile", dataFile,
	)

	out, err := c.runner.Run(ctx, c.sbatchPath, script, dataFile)
	if err != nil {
		return nil, fmt.Errorf("sbatch %s failed: %w (output: %s)", script, err, strings.TrimSpace(out))
	}

	m := jobIDPattern.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoJobID, strings.TrimSpace(out))
	}

	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoJobID, strings.TrimSpace(out))
	}

	job := &Job{
		ID:          id,
		Script:      script,
		DataFile:    dataFile,
		SubmittedAt: time.Now(),
	}

	c.logger.Info("batch job submitted",
		"script", script,
		"jobID", id,
	)
	return job, nil
}

// SubmitSequence submits the scripts in order, pausing the configured
// delay between consecutive submissions (not after the last one).
// The sequence stops at the first failed submission; jobs submitted so
// far are returned alongside the error so callers can still record them.
//
// Design decision: The original operational practice was fire-and-forget
// with no error checking. Here a submission failure aborts the sequence,
// because the downstream comparison needs all three configurations and
// half a benchmark is worse than none.
func (c *Client) SubmitSequence(ctx context.Context, scripts []string, dataFile string) ([]*Job, error) {
	if len(scripts) == 0 {
		return nil, ErrNoScripts
	}

	jobs := make([]*Job, 0, len(scripts))
	for i, script := range scripts {
		if i > 0 && c.delay > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return jobs, ctx.Err()
			case <-timer.C:
			}
		}

		job, err := c.Submit(ctx, script, dataFile)
		if err != nil {
			return jobs, fmt.Errorf("submission %d of %d failed: %w", i+1, len(scripts), err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
