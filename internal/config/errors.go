package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoDataset is returned when no dataset path is specified.
	ErrNoDataset = errors.New("no dataset specified: provide one or more NDJSON file paths")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

	// ErrInvalidTopN is returned when the ranking depth is not positive.
	ErrInvalidTopN = errors.New("invalid top-n: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no analysis at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrReportFileWithMultipleDatasets is returned when --output names a
	// single file but more than one dataset is given. Each report would
	// truncate the previous one.
	ErrReportFileWithMultipleDatasets = errors.New("cannot use --output with multiple datasets: reports would overwrite each other")

	// ErrInvalidSubmitDelay is returned when the submission delay is
	// negative. Use 0 for back-to-back submissions.
	ErrInvalidSubmitDelay = errors.New("invalid submit delay: must be non-negative")
)
