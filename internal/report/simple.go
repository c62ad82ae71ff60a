package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// separatorWidth is the width of the section separators.
const separatorWidth = 50

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: each ranking gets its
// own section with a separator, a title, and numbered entries.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showPerf controls whether the performance section is shown.
	showPerf bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithPerf configures the writer to show per-worker timing details.
func WithPerf(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPerf = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showPerf:   false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeRunHeader(&sb, report)
	if report.Summary != nil {
		w.writeSummaryBody(&sb, report.Summary)
	}
	if w.showPerf && report.Perf != nil {
		w.writePerf(&sb, report.Perf)
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs only the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder
	w.writeSummaryBody(&sb, summary)
	return w.output.Write([]byte(sb.String()))
}

// writeRunHeader writes the run metadata at the top of the report.
func (w *SimpleWriter) writeRunHeader(sb *strings.Builder, report *model.AnalysisReport) {
	sep := strings.Repeat("=", separatorWidth)

	sb.WriteString(sep)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Dataset:   %s\n", report.Dataset))
	sb.WriteString(fmt.Sprintf("Run ID:    %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Workers:   %d\n", report.Workers))
	sb.WriteString(fmt.Sprintf("Lines:     %d total, %d processed, %d skipped\n",
		report.TotalLines, report.ProcessedLines, report.SkippedLines))

	switch {
	case report.Cancelled:
		sb.WriteString("Status:    CANCELLED (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:    ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:    Complete\n")
	}

	sb.WriteString(sep)
	sb.WriteString("\n\n")
}

// writeSummaryBody writes every ranking section of the summary.
func (w *SimpleWriter) writeSummaryBody(sb *strings.Builder, summary *model.Summary) {
	w.writeHourSection(sb, "Top Happiest Hours", summary.HappiestHours)
	w.writeHourSection(sb, "Top Saddest Hours", summary.SaddestHours)
	w.writeDaySection(sb, "Top Happiest Days", summary.HappiestDays)
	w.writeDaySection(sb, "Top Saddest Days", summary.SaddestDays)
	w.writeUserSection(sb, "Top Happiest Users", summary.HappiestUsers)
	w.writeUserSection(sb, "Top Saddest Users", summary.SaddestUsers)
	w.writeActiveUserSection(sb, summary.MostActiveUsers)
	w.writeAvgUserSection(sb, "Most Positive Users (by average)", summary.MostPositiveUsers)
	w.writeAvgUserSection(sb, "Most Negative Users (by average)", summary.MostNegativeUsers)
	w.writeBusiestHours(sb, summary.BusiestHours)
	w.writeLanguages(sb, summary.TopLanguages)
	w.writeStats(sb, summary.SentimentStats)
	w.writeInteractions(sb, summary.Interactions)
}

// writeSectionHeader writes a separator-framed section title.
func (w *SimpleWriter) writeSectionHeader(sb *strings.Builder, title string) {
	sep := strings.Repeat("=", separatorWidth)
	sb.WriteString(sep)
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(sep)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHourSection(sb *strings.Builder, title string, entries []model.HourSentimentEntry) {
	w.writeSectionHeader(sb, title)
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s with sentiment %s\n",
			i+1, model.FormatHourRange(e.Hour), formatScore(e.Sentiment)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDaySection(sb *strings.Builder, title string, entries []model.DaySentimentEntry) {
	w.writeSectionHeader(sb, title)
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s with sentiment %s\n",
			i+1, e.Day, formatScore(e.Sentiment)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeUserSection(sb *strings.Builder, title string, entries []model.UserSentimentEntry) {
	w.writeSectionHeader(sb, title)
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s (ID: %s) with total sentiment %s\n",
			i+1, e.Username, e.ID, formatScore(e.Sentiment)))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeActiveUserSection(sb *strings.Builder, entries []model.UserSentimentEntry) {
	w.writeSectionHeader(sb, "Most Active Users")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s (ID: %s) with %d posts\n",
			i+1, e.Username, e.ID, e.Posts))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAvgUserSection(sb *strings.Builder, title string, entries []model.UserAverageEntry) {
	w.writeSectionHeader(sb, title)
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s (ID: %s) with average sentiment %s over %d posts\n",
			i+1, e.Username, e.ID, formatScore(e.AvgSentiment), e.Posts))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBusiestHours(sb *strings.Builder, entries []model.HourCountEntry) {
	w.writeSectionHeader(sb, "Busiest Hours")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s with %d posts\n",
			i+1, model.FormatHourRange(e.Hour), e.Posts))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLanguages(sb *strings.Builder, entries []model.LanguageEntry) {
	w.writeSectionHeader(sb, "Top Languages")
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = e.Code
		}
		sb.WriteString(fmt.Sprintf("%d. %s (%s) with %d posts\n", i+1, name, e.Code, e.Posts))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, stats model.SentimentStats) {
	w.writeSectionHeader(sb, "Sentiment Distribution")
	sb.WriteString(fmt.Sprintf("  Mean:   %.4f\n", stats.Mean))
	sb.WriteString(fmt.Sprintf("  Median: %.4f\n", stats.Median))
	sb.WriteString(fmt.Sprintf("  Std:    %.4f\n", stats.Std))
	sb.WriteString(fmt.Sprintf("  Min:    %.4f\n", stats.Min))
	sb.WriteString(fmt.Sprintf("  Max:    %.4f\n", stats.Max))
	sb.WriteString(fmt.Sprintf("  Posts:  %d\n", stats.TotalPosts))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeInteractions(sb *strings.Builder, interactions model.Interactions) {
	w.writeSectionHeader(sb, "Interactions")
	sb.WriteString(fmt.Sprintf("  Replies:    %d\n", interactions.Replies))
	sb.WriteString(fmt.Sprintf("  Reblogs:    %d\n", interactions.Reblogs))
	sb.WriteString(fmt.Sprintf("  Favourites: %d\n", interactions.Favourites))
	sb.WriteString("\n")
}

// writePerf writes per-worker timing and load balance information.
func (w *SimpleWriter) writePerf(sb *strings.Builder, perf *model.PerfStats) {
	w.writeSectionHeader(sb, "Performance")
	sb.WriteString(fmt.Sprintf("  Total time:     %.2f seconds\n", perf.TotalTime.Seconds()))
	sb.WriteString(fmt.Sprintf("  Aggregation:    %.2f seconds\n", perf.AggregateTime.Seconds()))
	sb.WriteString(fmt.Sprintf("  Summarization:  %.2f seconds\n", perf.SummarizeTime.Seconds()))
	if perf.LoadImbalance > 0 {
		sb.WriteString(fmt.Sprintf("  Load imbalance: %.2f\n", perf.LoadImbalance))
	}
	for _, wt := range perf.WorkerTimes {
		sb.WriteString(fmt.Sprintf("  Worker #%d completed %d lines in %.2f seconds\n",
			wt.Worker, wt.Lines, wt.Duration.Seconds()))
	}
	sb.WriteString("\n")
}

// formatScore renders a sentiment score with an explicit sign, matching
// the "+12.5" / "-3" style of the ranking lines.
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v >= 0 {
		return "+" + s
	}
	return s
}
