// Package pipeline orchestrates dataset analysis as a sequence of steps:
// count lines, aggregate shards concurrently, summarize. It also provides
// a batch processor for analyzing multiple datasets in parallel.
package pipeline
