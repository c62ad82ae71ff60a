// Package analyze implements the sentiment aggregation core.
// An Aggregator consumes NDJSON lines and accumulates temporal, per-user,
// language, and interaction statistics; partial aggregators from parallel
// shard workers merge associatively, and Summarize distills the merged
// aggregates into top-N rankings and distribution statistics.
package analyze
