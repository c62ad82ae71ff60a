package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScaffolderRun(t *testing.T) {
	t.Parallel()

	t.Run("creates directory tree and seed files", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		for _, d := range Dirs {
			info, err := os.Stat(filepath.Join(root, d))
			if err != nil {
				t.Fatalf("missing directory %s: %v", d, err)
			}
			if !info.IsDir() {
				t.Errorf("%s is not a directory", d)
			}
		}

		files := []string{
			".mastolytics",
			filepath.Join("slurm", "1node1core.slurm"),
			filepath.Join("slurm", "1node8core.slurm"),
			filepath.Join("slurm", "2node8core.slurm"),
		}
		for _, f := range files {
			if _, err := os.Stat(filepath.Join(root, f)); err != nil {
				t.Errorf("missing seed file %s: %v", f, err)
			}
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
	})

	t.Run("preserves edited files without force", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		script := filepath.Join(root, "slurm", "1node1core.slurm")
		edited := []byte("#!/bin/bash\n# edited by hand\n")
		if err := os.WriteFile(script, edited, 0o755); err != nil {
			t.Fatal(err)
		}

		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		got, err := os.ReadFile(script)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(edited) {
			t.Error("rerun overwrote an edited seed file")
		}
	})

	t.Run("force restores seed files", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		if err := NewScaffolder(root).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		script := filepath.Join(root, "slurm", "1node8core.slurm")
		if err := os.WriteFile(script, []byte("broken"), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := NewScaffolder(root, WithForce(true)).Run(); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		got, err := os.ReadFile(script)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) == "broken" {
			t.Error("force run did not restore the seed file")
		}
	})

	t.Run("rejects a file as root", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		file := filepath.Join(dir, "notadir")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := NewScaffolder(file).Run(); err == nil {
			t.Error("Run() on a regular file should fail")
		}
	})
}
