package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// writeTestDataset writes a small NDJSON dataset and returns its path.
func writeTestDataset(t *testing.T, lines int) string {
	t.Helper()

	var sb strings.Builder
	for i := 0; i < lines; i++ {
		hour := i % 24
		sentiment := float64(i%7) - 3 // scores in [-3, 3]
		fmt.Fprintf(&sb,
			`{"created_at": "2023-03-15T%02d:00:00Z", "sentiment": %v, "account": {"id": "%d", "username": "user%d"}, "language": "en"}`+"\n",
			hour, sentiment, i%10, i%10)
	}

	path := filepath.Join(t.TempDir(), "data.ndjson")
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

// TestCountStep tests the line counting step.
func TestCountStep(t *testing.T) {
	t.Parallel()

	t.Run("counts dataset lines", func(t *testing.T) {
		t.Parallel()
		path := writeTestDataset(t, 42)
		report := model.NewAnalysisReport(path)

		if err := NewCountStep().Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.TotalLines != 42 {
			t.Errorf("expected 42 lines, got %d", report.TotalLines)
		}
	})

	t.Run("missing dataset fails", func(t *testing.T) {
		t.Parallel()
		report := model.NewAnalysisReport(filepath.Join(t.TempDir(), "nope.ndjson"))
		if err := NewCountStep().Do(context.Background(), report); err == nil {
			t.Error("expected error for missing dataset")
		}
	})
}

// TestAggregateStep tests the concurrent shard aggregation.
func TestAggregateStep(t *testing.T) {
	t.Parallel()

	t.Run("aggregates all lines", func(t *testing.T) {
		t.Parallel()
		path := writeTestDataset(t, 100)
		report := model.NewAnalysisReport(path)
		report.TotalLines = 100

		step := NewAggregateStep(WithWorkers(4), WithChunkSize(10))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.ProcessedLines != 100 {
			t.Errorf("expected 100 processed, got %d", report.ProcessedLines)
		}
		if len(report.UserSentiment) != 10 {
			t.Errorf("expected 10 users, got %d", len(report.UserSentiment))
		}
		if report.Perf == nil || len(report.Perf.WorkerTimes) != 4 {
			t.Fatalf("expected 4 worker timings, got %+v", report.Perf)
		}
	})

	t.Run("worker count independence", func(t *testing.T) {
		t.Parallel()
		path := writeTestDataset(t, 97)

		run := func(workers int) *model.AnalysisReport {
			report := model.NewAnalysisReport(path)
			report.TotalLines = 97
			step := NewAggregateStep(WithWorkers(workers), WithChunkSize(10))
			if err := step.Do(context.Background(), report); err != nil {
				t.Fatalf("workers=%d: %v", workers, err)
			}
			return report
		}

		single := run(1)
		parallel := run(8)

		if single.ProcessedLines != parallel.ProcessedLines {
			t.Errorf("processed lines differ: %d vs %d", single.ProcessedLines, parallel.ProcessedLines)
		}
		for hour, want := range single.HourSentiment {
			if got := parallel.HourSentiment[hour]; got != want {
				t.Errorf("hour %s: expected %v, got %v", hour, want, got)
			}
		}
		for id, want := range single.UserSentiment {
			got := parallel.UserSentiment[id]
			if got == nil || got.Sentiment != want.Sentiment || got.Posts != want.Posts {
				t.Errorf("user %s: expected %+v, got %+v", id, want, got)
			}
		}
	})

	t.Run("empty dataset yields empty result", func(t *testing.T) {
		t.Parallel()
		path := writeTestDataset(t, 0)
		report := model.NewAnalysisReport(path)
		report.TotalLines = 0

		step := NewAggregateStep(WithWorkers(4))
		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.ProcessedLines != 0 || report.SkippedLines != 0 {
			t.Errorf("expected empty result, got %d/%d", report.ProcessedLines, report.SkippedLines)
		}
	})
}

// TestFullAnalysisPipeline runs the default pipeline end to end.
func TestFullAnalysisPipeline(t *testing.T) {
	t.Parallel()

	path := writeTestDataset(t, 200)
	report := model.NewAnalysisReport(path)

	p := DefaultPipeline(nil,
		WithPipelineWorkers(4),
		WithPipelineChunkSize(50),
		WithPipelineTopN(3),
	)

	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.Summary == nil {
		t.Fatal("expected summary to be computed")
	}
	if len(report.Summary.HappiestHours) != 3 {
		t.Errorf("expected 3 happiest hours, got %d", len(report.Summary.HappiestHours))
	}
	if report.Summary.SentimentStats.TotalPosts != 200 {
		t.Errorf("expected 200 scored posts, got %d", report.Summary.SentimentStats.TotalPosts)
	}
	if len(report.Summary.TopLanguages) != 1 || report.Summary.TopLanguages[0].Code != "en" {
		t.Errorf("unexpected languages: %+v", report.Summary.TopLanguages)
	}
	if report.Perf == nil || report.Perf.AggregateTime <= 0 {
		t.Error("expected aggregation timing to be recorded")
	}
}

// TestBatchProcessor tests concurrent multi-dataset analysis.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	factory := func(string) *Pipeline {
		return DefaultPipeline(nil, WithPipelineWorkers(2), WithPipelineTopN(2))
	}

	t.Run("processes all datasets and keeps order", func(t *testing.T) {
		t.Parallel()
		datasets := []string{
			writeTestDataset(t, 10),
			writeTestDataset(t, 20),
			writeTestDataset(t, 30),
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		reports, err := bp.ProcessBatch(context.Background(), datasets)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 reports, got %d", len(reports))
		}
		for i, want := range []int64{10, 20, 30} {
			if reports[i].ProcessedLines != want {
				t.Errorf("report %d: expected %d lines, got %d", i, want, reports[i].ProcessedLines)
			}
			if reports[i].Dataset != datasets[i] {
				t.Errorf("report %d: order not preserved", i)
			}
		}
	})

	t.Run("failed dataset does not abort the batch", func(t *testing.T) {
		t.Parallel()
		datasets := []string{
			filepath.Join(t.TempDir(), "missing.ndjson"),
			writeTestDataset(t, 5),
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		reports, err := bp.ProcessBatch(context.Background(), datasets)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if reports[0].ErrorMessage == "" {
			t.Error("expected first report to carry an error")
		}
		if reports[1].ProcessedLines != 5 {
			t.Errorf("expected second dataset analyzed, got %d lines", reports[1].ProcessedLines)
		}
	})

	t.Run("callback is invoked per dataset", func(t *testing.T) {
		t.Parallel()
		datasets := []string{writeTestDataset(t, 5), writeTestDataset(t, 5)}

		var mu sync.Mutex
		seen := make(map[int]bool)

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		err := bp.ProcessBatchWithCallback(context.Background(), datasets, func(_ *model.AnalysisReport, index int) {
			mu.Lock()
			seen[index] = true
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !seen[0] || !seen[1] {
			t.Errorf("expected callbacks for both datasets, got %v", seen)
		}
	})
}
