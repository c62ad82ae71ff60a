package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Chunk size and ranking depth match the original analysis defaults;
// the submission pacing matches the original job sequencer.
const (
	// DefaultChunkSize is the number of lines a shard worker reads per
	// chunk. Chunking bounds memory use and gives the worker a natural
	// point to observe cancellation. 10000 lines keeps per-chunk memory
	// in the low megabytes even with large posts.
	DefaultChunkSize = 10000

	// DefaultTopN is the ranking depth for all top-N results.
	DefaultTopN = 5

	// DefaultBatchSize is the number of datasets analyzed concurrently
	// when multiple datasets are given. Dataset analysis is already
	// internally parallel, so the default is conservative.
	DefaultBatchSize = 2

	// DefaultSubmitDelay is the pacing delay between consecutive job
	// submissions. Spacing out submissions avoids hammering the
	// scheduler and keeps job IDs in a predictable order.
	DefaultSubmitDelay = 5 * time.Second

	// DefaultDataFile is the dataset passed to batch jobs when no
	// explicit file is given.
	DefaultDataFile = "mastodon-144Gb.ndjson"

	// DefaultSlurmDir is the directory containing the batch scripts.
	DefaultSlurmDir = "slurm"

	// AppName is the application name used for XDG directory paths.
	AppName = "mastolytics"
)

// Config holds all configuration options for mastolytics.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., AnalyzeConfig, SubmitConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Datasets is the list of NDJSON files to analyze.
	Datasets []string

	// Workers is the number of concurrent shard workers per dataset.
	// Defaults to the number of CPUs.
	Workers int

	// ChunkSize is the number of lines read per chunk within a shard.
	ChunkSize int

	// TopN is the ranking depth for all top-N results.
	TopN int

	// BatchSize is the number of datasets analyzed concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .mastolytics in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// DatasetConfigs holds per-dataset overrides loaded from the
	// config file.
	DatasetConfigs *File

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// OutputDir, when set, receives the per-category text files
	// (happiest_hours.txt and friends) plus runtime.txt.
	OutputDir string

	// DBDir is the directory path for the SQLite run database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist runs to the database.
	SaveToDB bool

	// SubmitDelay is the pacing delay between job submissions.
	SubmitDelay time.Duration

	// SlurmDir is the directory containing the batch scripts.
	SlurmDir string

	// DataFile is the dataset argument forwarded to batch jobs.
	DataFile string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		ChunkSize:   DefaultChunkSize,
		TopN:        DefaultTopN,
		BatchSize:   DefaultBatchSize,
		SubmitDelay: DefaultSubmitDelay,
		SlurmDir:    DefaultSlurmDir,
		DataFile:    DefaultDataFile,
	}
}

// XDGDataDir returns the XDG data directory for mastolytics.
// On Linux: ~/.local/share/mastolytics
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mastolytics.
// On Linux: ~/.config/mastolytics
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
// Called once after CLI parsing, before any analysis begins; we return
// the first error found because fixing one error often makes others
// irrelevant.
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrNoDataset
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.TopN <= 0 {
		return ErrInvalidTopN
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ReportFile != "" && len(c.Datasets) > 1 {
		return ErrReportFileWithMultipleDatasets
	}
	if c.SubmitDelay < 0 {
		return ErrInvalidSubmitDelay
	}
	return nil
}
