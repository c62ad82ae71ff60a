package workspace

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/manishghoshal99/mastolytics/internal/config"
)

//go:embed templates
var templatesFS embed.FS

// ErrNotDirectory is returned when the scaffold root exists but is a
// regular file.
var ErrNotDirectory = errors.New("workspace root is not a directory")

// Dirs lists every directory the scaffolder creates, relative to the
// workspace root.
var Dirs = []string{
	"data",
	"slurm",
	filepath.Join("output", "results"),
	filepath.Join("output", "logs"),
	filepath.Join("output", "figures"),
}

// Scaffolder creates the on-disk layout for an analysis workspace.
type Scaffolder struct {
	root  string
	force bool
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithForce overwrites seed files that already exist. Directories are
// never removed.
func WithForce(force bool) Option {
	return func(s *Scaffolder) {
		s.force = force
	}
}

// NewScaffolder returns a Scaffolder rooted at root.
func NewScaffolder(root string, opts ...Option) *Scaffolder {
	s := &Scaffolder{
		root: filepath.Clean(root),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the cleaned workspace root path.
func (s *Scaffolder) Root() string {
	return s.root
}

// Run creates the workspace directories and writes the seed files from
// the embedded templates. Existing files are left untouched unless the
// Scaffolder was built with WithForce.
func (s *Scaffolder) Run() error {
	if info, err := os.Stat(s.root); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, s.root)
	}

	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(s.root, d), 0o755); err != nil {
			return fmt.Errorf("create workspace directory: %w", err)
		}
	}

	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(s.root, destName(rel))

		if !s.force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create workspace directory: %w", err)
		}

		mode := fs.FileMode(0o644)
		if strings.HasSuffix(rel, ".slurm") {
			mode = 0o755
		}
		if err := os.WriteFile(dst, b, mode); err != nil {
			return fmt.Errorf("write seed file: %w", err)
		}
		return nil
	})
}

// destName maps a template path to its location in the workspace. The
// YAML template lands as the hidden config file the loader discovers.
func destName(rel string) string {
	if rel == "mastolytics.yaml" {
		return config.DefaultConfigFile
	}
	return rel
}
