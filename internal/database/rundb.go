package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// RunDB provides SQLite-based storage for analysis runs and job
// submissions. It manages connection pooling and provides methods for
// CRUD operations.
//
// Design decision: We use a single database file for all datasets rather
// than one per dataset. The compare command joins runs across worker
// configurations, which is simpler inside one file.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created. If CreateIfNotExists is false and the database doesn't exist,
// an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "mastolytics.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections just
	// contend on the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store completed analysis runs with their full summary JSON
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		dataset TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		total_lines INTEGER NOT NULL,
		processed_lines INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Submissions store batch jobs handed to the cluster scheduler
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		script TEXT NOT NULL,
		data_file TEXT NOT NULL,
		job_id INTEGER NOT NULL,
		submitted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_script ON submissions(script);
	CREATE INDEX IF NOT EXISTS idx_submissions_time ON submissions(submitted_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored analysis run.
type RunRecord struct {
	// ID is the run's UUID.
	ID string

	// Dataset is the analyzed NDJSON path.
	Dataset string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the total run duration.
	Duration time.Duration

	// Workers is the shard worker count used.
	Workers int

	// TotalLines is the dataset line count.
	TotalLines int64

	// ProcessedLines is the number of lines that contributed.
	ProcessedLines int64

	// Summary is the stored summary, decoded from JSON.
	Summary *model.Summary
}

// SaveRun persists a completed analysis run.
// The report must have its Summary and Perf populated.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.AnalysisReport) error {
	if report.Summary == nil {
		return fmt.Errorf("cannot save run %s: summary not computed", report.RunID)
	}

	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	var durationMS int64
	if report.Perf != nil {
		durationMS = report.Perf.TotalTime.Milliseconds()
	}

	query := `
	INSERT INTO runs (id, dataset, started_at, duration_ms, workers, total_lines, processed_lines, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = rdb.db.ExecContext(ctx, query,
		report.RunID,
		report.Dataset,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		durationMS,
		report.Workers,
		report.TotalLines,
		report.ProcessedLines,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
// Returns sql.ErrNoRows wrapped if the run does not exist.
func (rdb *RunDB) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	query := `
	SELECT id, dataset, started_at, duration_ms, workers, total_lines, processed_lines, summary_json
	FROM runs
	WHERE id = ?
	`

	record, err := scanRun(rdb.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return record, nil
}

// ListRuns retrieves all runs for a dataset, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context, dataset string) ([]*RunRecord, error) {
	query := `
	SELECT id, dataset, started_at, duration_ms, workers, total_lines, processed_lines, summary_json
	FROM runs
	WHERE dataset = ?
	ORDER BY started_at DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return records, nil
}

// ListDatasets lists all datasets that have run records, alphabetically.
func (rdb *RunDB) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT dataset FROM runs ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var dataset string
		if err := rows.Scan(&dataset); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, dataset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}

	return datasets, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun decodes one runs row.
func scanRun(row rowScanner) (*RunRecord, error) {
	var record RunRecord
	var startedAt string
	var durationMS int64
	var summaryJSON string

	if err := row.Scan(
		&record.ID,
		&record.Dataset,
		&startedAt,
		&durationMS,
		&record.Workers,
		&record.TotalLines,
		&record.ProcessedLines,
		&summaryJSON,
	); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	record.StartedAt = ts
	record.Duration = time.Duration(durationMS) * time.Millisecond

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode run summary: %w", err)
	}
	record.Summary = &summary

	return &record, nil
}

// SubmissionRecord is a stored batch-job submission.
type SubmissionRecord struct {
	// ID is the database row ID.
	ID int64

	// Script is the batch script path that was submitted.
	Script string

	// DataFile is the dataset argument passed to the job.
	DataFile string

	// JobID is the scheduler's job ID.
	JobID int64

	// SubmittedAt is when the submission happened.
	SubmittedAt time.Time
}

// RecordSubmission stores a batch-job submission and returns its row ID.
func (rdb *RunDB) RecordSubmission(ctx context.Context, record *SubmissionRecord) (int64, error) {
	query := `
	INSERT INTO submissions (script, data_file, job_id)
	VALUES (?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query, record.Script, record.DataFile, record.JobID)
	if err != nil {
		return 0, fmt.Errorf("failed to record submission: %w", err)
	}

	return result.LastInsertId()
}

// ListSubmissions retrieves the most recent submissions, newest first.
// A limit of 0 means no limit.
func (rdb *RunDB) ListSubmissions(ctx context.Context, limit int) ([]*SubmissionRecord, error) {
	query := `
	SELECT id, script, data_file, job_id, submitted_at
	FROM submissions
	ORDER BY submitted_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var records []*SubmissionRecord
	for rows.Next() {
		var record SubmissionRecord
		var submittedAt string
		if err := rows.Scan(&record.ID, &record.Script, &record.DataFile, &record.JobID, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if ts, err := time.Parse("2006-01-02 15:04:05", submittedAt); err == nil {
			record.SubmittedAt = ts
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return records, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}
