// Package database provides SQLite-based storage for analysis runs and
// batch-job submissions. Historical runs back the compare command's
// speedup reporting.
package database
