// Package config provides configuration structures and utilities for
// mastolytics. It defines the analysis and job-submission options,
// YAML config file loading with per-dataset overrides, and XDG
// directory helpers.
package config
