// Package ndjson provides line-oriented access to newline-delimited JSON
// files: efficient line counting, shard range computation for parallel
// processing, and chunked shard readers that respect context cancellation.
package ndjson
