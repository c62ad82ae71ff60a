package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisReport is the main analysis result structure.
// It accumulates state as it moves through the pipeline: the count step
// fills TotalLines, the aggregate step fills the aggregate maps and
// performance data, and the summarize step fills Summary.
//
// Design decision: We use a single large struct rather than separate
// per-step results to simplify serialization and database storage, and
// so that report writers have everything in one place.
type AnalysisReport struct {
	// === Run Identification ===

	// RunID uniquely identifies this analysis run.
	RunID string `json:"run_id"`

	// Dataset is the path to the analyzed NDJSON file.
	Dataset string `json:"dataset"`

	// StartedAt is the timestamp when the analysis started.
	StartedAt time.Time `json:"started_at"`

	// Workers is the number of concurrent shard workers used.
	Workers int `json:"workers"`

	// ChunkSize is the number of lines read per chunk within a shard.
	ChunkSize int `json:"chunk_size"`

	// TopN is the number of entries per ranking in the summary.
	TopN int `json:"top_n"`

	// === Line Accounting ===

	// TotalLines is the number of lines in the dataset file.
	TotalLines int64 `json:"total_lines"`

	// ProcessedLines is the number of lines successfully aggregated.
	ProcessedLines int64 `json:"processed_lines"`

	// SkippedLines is the number of blank, malformed, or incomplete lines.
	SkippedLines int64 `json:"skipped_lines"`

	// === Aggregates ===
	// These maps are large and excluded from JSON; the Summary carries
	// the distilled results.

	// HourSentiment maps hour bucket keys to sentiment sums.
	HourSentiment map[string]float64 `json:"-"`

	// DaySentiment maps day bucket keys to sentiment sums.
	DaySentiment map[string]float64 `json:"-"`

	// UserSentiment maps account IDs to per-user accumulations.
	UserSentiment map[string]*UserStat `json:"-"`

	// LanguageCounts maps language codes to post counts.
	LanguageCounts map[string]int64 `json:"-"`

	// HourPostCounts maps hour bucket keys to post counts.
	HourPostCounts map[string]int64 `json:"-"`

	// Interactions holds the interaction totals.
	Interactions Interactions `json:"interactions"`

	// SentimentValues is the stream of per-post sentiment scores,
	// kept for distribution statistics. Excluded from JSON due to size.
	SentimentValues []float64 `json:"-"`

	// === Results ===

	// Summary is the distilled analysis result.
	Summary *Summary `json:"summary,omitempty"`

	// Perf holds per-worker timing and load-balance information.
	Perf *PerfStats `json:"performance,omitempty"`

	// === Execution Status ===

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Cancelled is true if the run was interrupted before completion.
	Cancelled bool `json:"cancelled,omitempty"`

	// Error holds the first step error, if any. Excluded from JSON;
	// ErrorMessage carries the serializable form.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// UserStat is the per-user accumulation.
type UserStat struct {
	// Username is the last username seen for the account.
	Username string `json:"username"`

	// Sentiment is the sum of sentiment scores across the user's posts.
	Sentiment float64 `json:"sentiment"`

	// Posts is the number of posts seen for the user.
	Posts int64 `json:"posts"`
}

// Interactions holds dataset-wide interaction totals.
type Interactions struct {
	// Replies counts posts that are replies to other posts.
	Replies int64 `json:"replies"`

	// Reblogs counts posts that are boosts of other posts.
	Reblogs int64 `json:"reblogs"`

	// Favourites is the sum of favourites counts across all posts.
	Favourites int64 `json:"favourites"`
}

// PerfStats holds timing information for a run.
type PerfStats struct {
	// TotalTime is the wall-clock duration of the whole run.
	TotalTime time.Duration `json:"total_time"`

	// AggregateTime is the wall-clock duration of the aggregation phase.
	AggregateTime time.Duration `json:"aggregate_time"`

	// SummarizeTime is the wall-clock duration of the summarize phase.
	SummarizeTime time.Duration `json:"summarize_time"`

	// WorkerTimes holds per-worker shard timings.
	WorkerTimes []WorkerTime `json:"worker_times,omitempty"`

	// LoadImbalance is the ratio of the slowest worker's time to the
	// mean worker time. 1.0 means perfectly balanced.
	LoadImbalance float64 `json:"load_imbalance,omitempty"`
}

// WorkerTime records one shard worker's contribution.
type WorkerTime struct {
	// Worker is the worker index.
	Worker int `json:"worker"`

	// Lines is the number of lines the worker processed.
	Lines int64 `json:"lines"`

	// Duration is how long the worker's shard took.
	Duration time.Duration `json:"duration"`
}

// NewAnalysisReport creates a report for a dataset with a fresh run ID
// and initialized aggregate maps.
func NewAnalysisReport(dataset string) *AnalysisReport {
	return &AnalysisReport{
		RunID:          uuid.NewString(),
		Dataset:        dataset,
		StartedAt:      time.Now(),
		HourSentiment:  make(map[string]float64),
		DaySentiment:   make(map[string]float64),
		UserSentiment:  make(map[string]*UserStat),
		LanguageCounts: make(map[string]int64),
		HourPostCounts: make(map[string]int64),
	}
}
