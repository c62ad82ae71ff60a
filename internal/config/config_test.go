package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. This test ensures that defaults are documented through
// tests and that changes to defaults are intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Workers is NumCPU", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("expected Workers to be %d, got %d", runtime.NumCPU(), cfg.Workers)
		}
	})

	t.Run("default ChunkSize is 10000", func(t *testing.T) {
		t.Parallel()
		if cfg.ChunkSize != 10000 {
			t.Errorf("expected ChunkSize to be 10000, got %d", cfg.ChunkSize)
		}
	})

	t.Run("default TopN is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.TopN != 5 {
			t.Errorf("expected TopN to be 5, got %d", cfg.TopN)
		}
	})

	t.Run("default SubmitDelay is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.SubmitDelay != 5*time.Second {
			t.Errorf("expected SubmitDelay to be 5s, got %v", cfg.SubmitDelay)
		}
	})

	t.Run("default DataFile is the 144GB dump", func(t *testing.T) {
		t.Parallel()
		if cfg.DataFile != "mastodon-144Gb.ndjson" {
			t.Errorf("expected DataFile to be 'mastodon-144Gb.ndjson', got %q", cfg.DataFile)
		}
	})

	t.Run("default SlurmDir is slurm", func(t *testing.T) {
		t.Parallel()
		if cfg.SlurmDir != "slurm" {
			t.Errorf("expected SlurmDir to be 'slurm', got %q", cfg.SlurmDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		return &Config{
			Datasets:  []string{"data/mastodon.ndjson"},
			Workers:   4,
			ChunkSize: 10000,
			TopN:      5,
			BatchSize: 2,
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty datasets returns ErrNoDataset", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Datasets = nil
		if err := cfg.Validate(); !errors.Is(err, ErrNoDataset) {
			t.Errorf("expected ErrNoDataset, got %v", err)
		}
	})

	t.Run("zero workers returns ErrInvalidWorkers", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Workers = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
	})

	t.Run("zero chunk size returns ErrInvalidChunkSize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ChunkSize = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidChunkSize) {
			t.Errorf("expected ErrInvalidChunkSize, got %v", err)
		}
	})

	t.Run("zero top-n returns ErrInvalidTopN", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.TopN = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTopN) {
			t.Errorf("expected ErrInvalidTopN, got %v", err)
		}
	})

	t.Run("zero batch size returns ErrInvalidBatchSize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.BatchSize = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("expected ErrInvalidBatchSize, got %v", err)
		}
	})

	t.Run("json and markdown together conflict", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true
		if err := cfg.Validate(); !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("report file with multiple datasets conflicts", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Datasets = []string{"data/a.ndjson", "data/b.ndjson"}
		cfg.ReportFile = "report.json"
		if err := cfg.Validate(); !errors.Is(err, ErrReportFileWithMultipleDatasets) {
			t.Errorf("expected ErrReportFileWithMultipleDatasets, got %v", err)
		}
	})

	t.Run("report file with one dataset is fine", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ReportFile = "report.json"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative submit delay returns ErrInvalidSubmitDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.SubmitDelay = -time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSubmitDelay) {
			t.Errorf("expected ErrInvalidSubmitDelay, got %v", err)
		}
	})
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads defaults and dataset overrides", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".mastolytics")
		content := `defaults:
  workers: 8
  top_n: 10
datasets:
  data/huge.ndjson:
    workers: 16
    chunk_size: 50000
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cf.Defaults.Workers != 8 || cf.Defaults.TopN != 10 {
			t.Errorf("unexpected defaults: %+v", cf.Defaults)
		}

		merged := cf.ForDataset("data/huge.ndjson")
		if merged.Workers != 16 {
			t.Errorf("expected override workers 16, got %d", merged.Workers)
		}
		if merged.ChunkSize != 50000 {
			t.Errorf("expected override chunk size 50000, got %d", merged.ChunkSize)
		}
		if merged.TopN != 10 {
			t.Errorf("expected inherited top-n 10, got %d", merged.TopN)
		}
	})

	t.Run("unknown dataset falls back to defaults", func(t *testing.T) {
		t.Parallel()
		cf := &File{Defaults: DatasetConfig{Workers: 4}}
		if got := cf.ForDataset("other.ndjson"); got.Workers != 4 {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".mastolytics")
		if err := os.WriteFile(path, []byte("defaults: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests config file discovery.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults: {}\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestMerge tests override merging semantics.
func TestMerge(t *testing.T) {
	t.Parallel()

	defaults := DatasetConfig{Workers: 4, ChunkSize: 10000, TopN: 5, OutputDir: "output/results"}

	t.Run("zero override keeps defaults", func(t *testing.T) {
		t.Parallel()
		got := Merge(defaults, DatasetConfig{})
		if got != defaults {
			t.Errorf("expected defaults unchanged, got %+v", got)
		}
	})

	t.Run("non-zero override wins", func(t *testing.T) {
		t.Parallel()
		got := Merge(defaults, DatasetConfig{Workers: 8, OutputDir: "elsewhere"})
		if got.Workers != 8 || got.OutputDir != "elsewhere" {
			t.Errorf("unexpected merge result: %+v", got)
		}
		if got.ChunkSize != 10000 || got.TopN != 5 {
			t.Errorf("expected inherited values, got %+v", got)
		}
	})
}
