package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// BatchProcessor handles concurrent analysis of multiple datasets.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-dataset execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each dataset.
	// We use a factory to ensure each analysis gets a fresh pipeline
	// instance.
	pipelineFactory func(dataset string) *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.AnalysisReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 2 if not specified; each analysis is already internally
// parallel across shard workers.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each dataset to create a
// fresh pipeline instance, which allows per-dataset configuration
// (worker counts, top-N) to differ.
func NewBatchProcessor(pipelineFactory func(dataset string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
		results:         make([]*model.AnalysisReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple datasets concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Returns all reports collected, even for datasets that failed; a failed
// analysis records its error in the report rather than aborting the
// whole batch.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, datasets []string) ([]*model.AnalysisReport, error) {
	bp.logger.Info("starting batch analysis",
		"total_datasets", len(datasets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.AnalysisReport, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, dataset := range datasets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing dataset",
				"dataset", dataset,
				"index", i+1,
				"total", len(datasets),
			)

			report := model.NewAnalysisReport(dataset)
			err := bp.pipelineFactory(dataset).Execute(ctx, report)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("analysis failed",
					"dataset", dataset,
					"error", err,
				)
				// Don't return the error to the errgroup - the other
				// datasets should still run; the report carries it.
				return nil
			}

			bp.logger.Info("analysis completed", "dataset", dataset)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_datasets", len(datasets),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple datasets and calls a
// callback for each completed analysis. This is useful for streaming
// output.
//
// The callback receives the report and the index of the dataset in the
// original slice. The callback runs on the goroutine that completed the
// analysis, so it must be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	datasets []string,
	callback func(report *model.AnalysisReport, index int),
) error {
	bp.logger.Info("starting batch analysis with callback",
		"total_datasets", len(datasets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, dataset := range datasets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewAnalysisReport(dataset)
			_ = bp.pipelineFactory(dataset).Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}
