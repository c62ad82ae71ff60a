package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// Per-category output file names.
const (
	HappiestHoursFile = "happiest_hours.txt"
	SaddestHoursFile  = "saddest_hours.txt"
	HappiestUsersFile = "happiest_users.txt"
	SaddestUsersFile  = "saddest_users.txt"
	RuntimeFile       = "runtime.txt"
)

// DirWriter writes per-category text files into an output directory,
// one file per ranking plus a runtime file with phase timings. Downstream
// tooling on the cluster picks these up individually, so each file stands
// alone with its own title and separator.
type DirWriter struct {
	dir string
}

// NewDirWriter creates a DirWriter targeting dir. The directory is
// created on first write if it does not exist.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{dir: dir}
}

// Dir returns the target directory.
func (w *DirWriter) Dir() string {
	return w.dir
}

// Write outputs the ranking files and, when timing data is present, the
// runtime file. The returned count is the total bytes written across
// all files.
func (w *DirWriter) Write(report *model.AnalysisReport) (int, error) {
	if report.Summary == nil {
		return 0, nil
	}

	total, err := w.WriteSummary(report.Summary)
	if err != nil {
		return total, err
	}

	if report.Perf != nil {
		n, err := w.writeRuntime(report.Perf)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// WriteSummary outputs the four ranking files.
func (w *DirWriter) WriteSummary(summary *model.Summary) (int, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	var total int

	n, err := w.writeFile(HappiestHoursFile, "Top Happiest Hours", hourLines(summary.HappiestHours))
	total += n
	if err != nil {
		return total, err
	}

	n, err = w.writeFile(SaddestHoursFile, "Top Saddest Hours", hourLines(summary.SaddestHours))
	total += n
	if err != nil {
		return total, err
	}

	n, err = w.writeFile(HappiestUsersFile, "Top Happiest Users", userLines(summary.HappiestUsers))
	total += n
	if err != nil {
		return total, err
	}

	n, err = w.writeFile(SaddestUsersFile, "Top Saddest Users", userLines(summary.SaddestUsers))
	total += n
	return total, err
}

// writeFile writes one titled ranking file.
func (w *DirWriter) writeFile(name, title string, lines []string) (int, error) {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", separatorWidth))
	sb.WriteString("\n")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	data := []byte(sb.String())
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	return len(data), nil
}

// writeRuntime writes the phase timing file.
func (w *DirWriter) writeRuntime(perf *model.PerfStats) (int, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Program runs in %.2f seconds\n", perf.TotalTime.Seconds()))
	sb.WriteString(fmt.Sprintf("Data processing time: %.2f seconds\n", perf.AggregateTime.Seconds()))
	sb.WriteString(fmt.Sprintf("Top-N calculation time: %.2f seconds\n", perf.SummarizeTime.Seconds()))
	if perf.LoadImbalance > 0 {
		sb.WriteString(fmt.Sprintf("Load imbalance: %.2f\n", perf.LoadImbalance))
	}

	data := []byte(sb.String())
	if err := os.WriteFile(filepath.Join(w.dir, RuntimeFile), data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", RuntimeFile, err)
	}
	return len(data), nil
}

// hourLines renders numbered ranking lines for hour entries.
func hourLines(entries []model.HourSentimentEntry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. %s with sentiment %s",
			i+1, model.FormatHourRange(e.Hour), formatScore(e.Sentiment))
	}
	return lines
}

// userLines renders numbered ranking lines for user entries.
func userLines(entries []model.UserSentimentEntry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d. %s (ID: %s) with total sentiment %s",
			i+1, e.Username, e.ID, formatScore(e.Sentiment))
	}
	return lines
}
