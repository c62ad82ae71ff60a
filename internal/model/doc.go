// Package model defines the core data structures for mastolytics.
// It contains the parsed Mastodon post record, the analysis report that
// flows through the processing pipeline, and the summarized results
// used for report generation and persistence.
package model
