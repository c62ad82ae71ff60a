// Package workspace scaffolds an analysis workspace: the directory tree
// for data, batch scripts, and outputs, plus seed files generated from
// embedded templates. Scaffolding is idempotent and never truncates
// files the user has edited.
package workspace
