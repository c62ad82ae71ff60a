package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/manishghoshal99/mastolytics/internal/analyze"
	"github.com/manishghoshal99/mastolytics/internal/config"
	"github.com/manishghoshal99/mastolytics/internal/model"
	"github.com/manishghoshal99/mastolytics/internal/ndjson"
)

// CountStep counts the lines in the dataset file.
// The count is the basis for shard assignment, so this step must run
// before AggregateStep.
type CountStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// CountStepOption configures a CountStep.
type CountStepOption func(*CountStep)

// WithCountLogger sets a custom logger for the count step.
func WithCountLogger(logger *slog.Logger) CountStepOption {
	return func(s *CountStep) {
		s.logger = logger
	}
}

// NewCountStep creates a new line counting step.
func NewCountStep(opts ...CountStepOption) *CountStep {
	s := &CountStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CountStep) Name() string {
	return "count_lines"
}

// Do executes the count step.
func (s *CountStep) Do(_ context.Context, report *model.AnalysisReport) error {
	start := time.Now()

	lines, err := ndjson.CountLines(report.Dataset)
	if err != nil {
		return fmt.Errorf("failed to count lines: %w", err)
	}

	report.TotalLines = lines
	s.logger.Debug("counted dataset lines",
		"dataset", report.Dataset,
		"lines", lines,
		"elapsed", time.Since(start),
	)
	return nil
}

// AggregateStep processes the dataset's shards concurrently.
// Each worker owns a private aggregator for its line range; the partials
// are merged once all workers finish. This is the parallel core of the
// analysis.
//
// Design decision: Workers never share aggregation state, so the hot
// path is lock-free. The merge at the end is cheap relative to parsing
// millions of JSON records.
type AggregateStep struct {
	// workers is the number of concurrent shard workers.
	workers int

	// chunkSize is the number of lines read per chunk within a shard.
	chunkSize int

	// logger for structured logging.
	logger *slog.Logger
}

// AggregateStepOption configures an AggregateStep.
type AggregateStepOption func(*AggregateStep)

// WithWorkers sets the number of concurrent shard workers.
func WithWorkers(n int) AggregateStepOption {
	return func(s *AggregateStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithChunkSize sets the lines-per-chunk read size.
func WithChunkSize(n int) AggregateStepOption {
	return func(s *AggregateStep) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithAggregateLogger sets a custom logger for the aggregate step.
func WithAggregateLogger(logger *slog.Logger) AggregateStepOption {
	return func(s *AggregateStep) {
		s.logger = logger
	}
}

// NewAggregateStep creates a new shard aggregation step.
func NewAggregateStep(opts ...AggregateStepOption) *AggregateStep {
	s := &AggregateStep{
		workers:   1,
		chunkSize: config.DefaultChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate_shards"
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	start := time.Now()

	report.Workers = s.workers
	report.ChunkSize = s.chunkSize

	shards := ndjson.Shards(report.TotalLines, s.workers)
	if len(shards) == 0 {
		// Empty dataset: a valid, empty result.
		analyze.NewAggregator().Fill(report)
		report.Perf = &model.PerfStats{AggregateTime: time.Since(start)}
		return nil
	}

	partials := make([]*analyze.Aggregator, len(shards))
	workerTimes := make([]model.WorkerTime, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var mu sync.Mutex
	for _, shard := range shards {
		g.Go(func() error {
			workerStart := time.Now()
			agg := analyze.NewAggregator()

			err := ndjson.ScanShard(gctx, report.Dataset, shard, s.chunkSize, func(line []byte) error {
				agg.Process(line)
				return nil
			})
			if err != nil {
				return fmt.Errorf("worker %d failed: %w", shard.Index, err)
			}

			elapsed := time.Since(workerStart)
			mu.Lock()
			partials[shard.Index] = agg
			workerTimes[shard.Index] = model.WorkerTime{
				Worker:   shard.Index,
				Lines:    shard.Lines(),
				Duration: elapsed,
			}
			mu.Unlock()

			s.logger.Debug("shard worker finished",
				"worker", shard.Index,
				"lines", shard.Lines(),
				"elapsed", elapsed,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	merged := analyze.NewAggregator()
	for _, partial := range partials {
		merged.Merge(partial)
	}
	merged.Fill(report)

	report.Perf = &model.PerfStats{
		AggregateTime: time.Since(start),
		WorkerTimes:   workerTimes,
		LoadImbalance: loadImbalance(workerTimes),
	}

	s.logger.Info("aggregation complete",
		"dataset", report.Dataset,
		"processed", report.ProcessedLines,
		"skipped", report.SkippedLines,
		"workers", len(shards),
		"elapsed", report.Perf.AggregateTime,
	)
	return nil
}

// loadImbalance computes the ratio of the slowest worker's time to the
// mean worker time. A value near 1.0 means the shards were well balanced.
func loadImbalance(times []model.WorkerTime) float64 {
	if len(times) == 0 {
		return 0
	}
	var sum, maxT time.Duration
	for _, wt := range times {
		sum += wt.Duration
		if wt.Duration > maxT {
			maxT = wt.Duration
		}
	}
	avg := sum / time.Duration(len(times))
	if avg == 0 {
		return 1
	}
	return float64(maxT) / float64(avg)
}

// SummarizeStep distills the aggregates into the report summary.
type SummarizeStep struct {
	// topN is the ranking depth.
	topN int

	// logger for structured logging.
	logger *slog.Logger
}

// SummarizeStepOption configures a SummarizeStep.
type SummarizeStepOption func(*SummarizeStep)

// WithTopN sets the ranking depth for the summary.
func WithTopN(n int) SummarizeStepOption {
	return func(s *SummarizeStep) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithSummarizeLogger sets a custom logger for the summarize step.
func WithSummarizeLogger(logger *slog.Logger) SummarizeStepOption {
	return func(s *SummarizeStep) {
		s.logger = logger
	}
}

// NewSummarizeStep creates a new summarization step.
func NewSummarizeStep(opts ...SummarizeStepOption) *SummarizeStep {
	s := &SummarizeStep{
		topN:   analyze.DefaultTopN,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do executes the summarize step.
func (s *SummarizeStep) Do(_ context.Context, report *model.AnalysisReport) error {
	start := time.Now()

	report.TopN = s.topN
	report.Summary = analyze.Summarize(report, s.topN)

	if report.Perf == nil {
		report.Perf = &model.PerfStats{}
	}
	report.Perf.SummarizeTime = time.Since(start)

	s.logger.Debug("summary computed",
		"dataset", report.Dataset,
		"elapsed", report.Perf.SummarizeTime,
	)
	return nil
}

// DefaultPipelineOption configures the default pipeline construction.
type DefaultPipelineOption func(*defaultPipelineConfig)

// defaultPipelineConfig holds the knobs for DefaultPipeline.
type defaultPipelineConfig struct {
	workers   int
	chunkSize int
	topN      int
}

// WithPipelineWorkers sets the shard worker count for the default pipeline.
func WithPipelineWorkers(n int) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithPipelineChunkSize sets the chunk size for the default pipeline.
func WithPipelineChunkSize(n int) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithPipelineTopN sets the ranking depth for the default pipeline.
func WithPipelineTopN(n int) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		if n > 0 {
			c.topN = n
		}
	}
}

// DefaultPipeline creates the standard analysis pipeline:
// count lines, aggregate shards, summarize.
func DefaultPipeline(pipelineOpts []Option, opts ...DefaultPipelineOption) *Pipeline {
	cfg := &defaultPipelineConfig{
		workers:   1,
		chunkSize: config.DefaultChunkSize,
		topN:      analyze.DefaultTopN,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	p := New(pipelineOpts...)
	p.AddSteps(
		NewCountStep(WithCountLogger(p.logger)),
		NewAggregateStep(
			WithWorkers(cfg.workers),
			WithChunkSize(cfg.chunkSize),
			WithAggregateLogger(p.logger),
		),
		NewSummarizeStep(
			WithTopN(cfg.topN),
			WithSummarizeLogger(p.logger),
		),
	)
	return p
}
