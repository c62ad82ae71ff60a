package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. committing
// run results next to the batch scripts that produced them.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid diagrams for the language distribution chart
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Summary != nil {
		w.writeSummary(md, report.Summary)
	}
	if report.Perf != nil {
		w.writePerf(md, report.Perf)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Sentiment Analysis Summary")
	md.PlainText("")
	w.writeSummary(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H1("Sentiment Analysis Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Dataset", "`" + report.Dataset + "`"},
			{"Run ID", "`" + report.RunID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Workers", strconv.Itoa(report.Workers)},
			{"Total Lines", strconv.FormatInt(report.TotalLines, 10)},
			{"Processed Lines", strconv.FormatInt(report.ProcessedLines, 10)},
			{"Skipped Lines", strconv.FormatInt(report.SkippedLines, 10)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AnalysisReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes every ranking section of the summary.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	w.writeHourTable(md, "Happiest Hours", summary.HappiestHours)
	w.writeHourTable(md, "Saddest Hours", summary.SaddestHours)
	w.writeDayTable(md, "Happiest Days", summary.HappiestDays)
	w.writeDayTable(md, "Saddest Days", summary.SaddestDays)
	w.writeUserTable(md, "Happiest Users", summary.HappiestUsers)
	w.writeUserTable(md, "Saddest Users", summary.SaddestUsers)
	w.writeActiveUserTable(md, summary.MostActiveUsers)
	w.writeAvgUserTable(md, "Most Positive Users (by average)", summary.MostPositiveUsers)
	w.writeAvgUserTable(md, "Most Negative Users (by average)", summary.MostNegativeUsers)
	w.writeBusiestHoursTable(md, summary.BusiestHours)
	w.writeLanguages(md, summary.TopLanguages)
	w.writeStats(md, summary.SentimentStats)
	w.writeInteractions(md, summary.Interactions)
}

func (w *MarkdownWriter) writeHourTable(md *markdown.Markdown, title string, entries []model.HourSentimentEntry) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			model.FormatHourRange(e.Hour),
			formatScore(e.Sentiment),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Hour", "Sentiment"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDayTable(md *markdown.Markdown, title string, entries []model.DaySentimentEntry) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Day,
			formatScore(e.Sentiment),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Day", "Sentiment"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeUserTable(md *markdown.Markdown, title string, entries []model.UserSentimentEntry) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Username,
			"`" + e.ID + "`",
			formatScore(e.Sentiment),
			strconv.FormatInt(e.Posts, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Username", "ID", "Sentiment", "Posts"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeActiveUserTable(md *markdown.Markdown, entries []model.UserSentimentEntry) {
	md.H2("Most Active Users")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Username,
			"`" + e.ID + "`",
			strconv.FormatInt(e.Posts, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Username", "ID", "Posts"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAvgUserTable(md *markdown.Markdown, title string, entries []model.UserAverageEntry) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			e.Username,
			"`" + e.ID + "`",
			formatScore(e.AvgSentiment),
			strconv.FormatInt(e.Posts, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Username", "ID", "Avg Sentiment", "Posts"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeBusiestHoursTable(md *markdown.Markdown, entries []model.HourCountEntry) {
	md.H2("Busiest Hours")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			model.FormatHourRange(e.Hour),
			strconv.FormatInt(e.Posts, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Hour", "Posts"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeLanguages writes the language ranking with a mermaid pie chart.
func (w *MarkdownWriter) writeLanguages(md *markdown.Markdown, entries []model.LanguageEntry) {
	md.H2("Top Languages")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No data.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = e.Code
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			name,
			"`" + e.Code + "`",
			strconv.FormatInt(e.Posts, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Language", "Code", "Posts"},
		Rows:   rows,
	})

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Post Language Distribution"),
		piechart.WithShowData(true),
	)
	for _, e := range entries {
		label := e.Name
		if label == "" {
			label = e.Code
		}
		chart.LabelAndIntValue(label, uint64(e.Posts))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeStats(md *markdown.Markdown, stats model.SentimentStats) {
	md.H2("Sentiment Distribution")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Mean", fmt.Sprintf("%.4f", stats.Mean)},
			{"Median", fmt.Sprintf("%.4f", stats.Median)},
			{"Std Dev", fmt.Sprintf("%.4f", stats.Std)},
			{"Min", fmt.Sprintf("%.4f", stats.Min)},
			{"Max", fmt.Sprintf("%.4f", stats.Max)},
			{"Scored Posts", strconv.FormatInt(stats.TotalPosts, 10)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeInteractions(md *markdown.Markdown, interactions model.Interactions) {
	md.H2("Interactions")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Interaction", "Count"},
		Rows: [][]string{
			{"Replies", strconv.FormatInt(interactions.Replies, 10)},
			{"Reblogs", strconv.FormatInt(interactions.Reblogs, 10)},
			{"Favourites", strconv.FormatInt(interactions.Favourites, 10)},
		},
	})
	md.PlainText("")
}

// writePerf writes the run timing section.
func (w *MarkdownWriter) writePerf(md *markdown.Markdown, perf *model.PerfStats) {
	md.H2("Performance")
	md.PlainText("")

	rows := [][]string{
		{"Total Time", fmt.Sprintf("%.2fs", perf.TotalTime.Seconds())},
		{"Aggregation", fmt.Sprintf("%.2fs", perf.AggregateTime.Seconds())},
		{"Summarization", fmt.Sprintf("%.2fs", perf.SummarizeTime.Seconds())},
	}
	if perf.LoadImbalance > 0 {
		rows = append(rows, []string{"Load Imbalance", fmt.Sprintf("%.2f", perf.LoadImbalance)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Phase", "Duration"},
		Rows:   rows,
	})

	if len(perf.WorkerTimes) > 0 {
		workerRows := make([][]string, len(perf.WorkerTimes))
		for i, wt := range perf.WorkerTimes {
			workerRows[i] = []string{
				strconv.Itoa(wt.Worker),
				strconv.FormatInt(wt.Lines, 10),
				fmt.Sprintf("%.2fs", wt.Duration.Seconds()),
			}
		}
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Worker", "Lines", "Duration"},
			Rows:   workerRows,
		})
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mastolytics](https://github.com/manishghoshal99/mastolytics)*")
}
