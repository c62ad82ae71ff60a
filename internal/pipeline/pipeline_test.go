package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// fakeStep is a test double implementing Step.
type fakeStep struct {
	name   string
	err    error
	called bool
}

func (f *fakeStep) Name() string { return f.name }

func (f *fakeStep) Do(_ context.Context, _ *model.AnalysisReport) error {
	f.called = true
	return f.err
}

// TestPipelineExecute tests step sequencing and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()
		p := New()
		first := &fakeStep{name: "first"}
		second := &fakeStep{name: "second"}
		p.AddSteps(first, second)

		report := model.NewAnalysisReport("test.ndjson")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !first.called || !second.called {
			t.Error("expected both steps to run")
		}
		if len(report.PerformedSteps) != 2 || report.PerformedSteps[0] != "first" {
			t.Errorf("unexpected performed steps: %v", report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()
		p := New()
		failing := &fakeStep{name: "failing", err: errors.New("boom")}
		after := &fakeStep{name: "after"}
		p.AddSteps(failing, after)

		report := model.NewAnalysisReport("test.ndjson")
		if err := p.Execute(context.Background(), report); err == nil {
			t.Fatal("expected error")
		}
		if after.called {
			t.Error("expected subsequent step to be skipped")
		}
		if report.ErrorMessage != "boom" {
			t.Errorf("expected error recorded in report, got %q", report.ErrorMessage)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()
		p := New(WithContinueOnError(true))
		failing := &fakeStep{name: "failing", err: errors.New("boom")}
		after := &fakeStep{name: "after"}
		p.AddSteps(failing, after)

		report := model.NewAnalysisReport("test.ndjson")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !after.called {
			t.Error("expected subsequent step to run")
		}
	})

	t.Run("cancelled context stops before next step", func(t *testing.T) {
		t.Parallel()
		p := New()
		step := &fakeStep{name: "never"}
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewAnalysisReport("test.ndjson")
		if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.called {
			t.Error("expected step not to run after cancellation")
		}
		if !report.Cancelled {
			t.Error("expected report to be marked cancelled")
		}
	})
}

// TestPipelineIntrospection tests StepCount and StepNames.
func TestPipelineIntrospection(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(&fakeStep{name: "a"}, &fakeStep{name: "b"})

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected step names: %v", names)
	}
}

// TestDefaultPipeline verifies the standard step lineup.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	p := DefaultPipeline(nil,
		WithPipelineWorkers(4),
		WithPipelineChunkSize(100),
		WithPipelineTopN(3),
	)

	names := p.StepNames()
	want := []string{"count_lines", "aggregate_shards", "summarize"}
	if len(names) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}
