package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init [directory]" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Run("scaffolds a workspace", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewInitCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{tmpDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, p := range []string{
			"data",
			"slurm/1node1core.slurm",
			"slurm/1node8core.slurm",
			"slurm/2node8core.slurm",
			"output/results",
			"output/logs",
			"output/figures",
			".mastolytics",
		} {
			if _, err := os.Stat(filepath.Join(tmpDir, p)); err != nil {
				t.Errorf("missing %s: %v", p, err)
			}
		}

		if !strings.Contains(buf.String(), "Initialized workspace") {
			t.Errorf("unexpected output: %s", buf.String())
		}

		content, err := os.ReadFile(filepath.Join(tmpDir, ".mastolytics"))
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}
		if !strings.Contains(string(content), "defaults:") {
			t.Error("expected config to contain 'defaults:'")
		}
		if !strings.Contains(string(content), "datasets:") {
			t.Error("expected config to contain 'datasets:'")
		}
	})

	t.Run("preserves edits without force", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{tmpDir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		script := filepath.Join(tmpDir, "slurm", "1node1core.slurm")
		if err := os.WriteFile(script, []byte("edited"), 0o755); err != nil {
			t.Fatal(err)
		}

		rerun := NewInitCmd()
		rerun.SetOut(&bytes.Buffer{})
		rerun.SetArgs([]string{tmpDir})
		if err := rerun.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(script)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "edited" {
			t.Error("rerun overwrote an edited script without --force")
		}
	})

	t.Run("force restores seed scripts", func(t *testing.T) {
		tmpDir := t.TempDir()

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{tmpDir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		script := filepath.Join(tmpDir, "slurm", "1node8core.slurm")
		if err := os.WriteFile(script, []byte("broken"), 0o755); err != nil {
			t.Fatal(err)
		}

		rerun := NewInitCmd()
		rerun.SetOut(&bytes.Buffer{})
		rerun.SetArgs([]string{tmpDir, "-f"})
		if err := rerun.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(script)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) == "broken" {
			t.Error("--force did not restore the seed script")
		}
	})
}
