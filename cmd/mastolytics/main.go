// Package main provides the entry point for the mastolytics CLI.
//
// mastolytics analyzes Mastodon NDJSON dumps for sentiment trends and
// drives batch runs on a Slurm cluster.
//
// Usage:
//
//	mastolytics init
//	mastolytics analyze data/mastodon-144Gb.ndjson
//	mastolytics submit
//	mastolytics compare data/mastodon-144Gb.ndjson
//
// See --help for all available options.
package main

// main is the entry point for mastolytics.
func main() {
	Execute()
}
