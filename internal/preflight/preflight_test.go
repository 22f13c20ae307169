package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"downconv/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if r := CheckReadable("test", f); r.Passed {
		t.Fatal("expected readable check to fail for file path")
	}
}

func TestCheckReadable_OK(t *testing.T) {
	if r := CheckReadable("source", t.TempDir()); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sox")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckEncoder_ReportsVersion(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = writeStub(t, "#!/bin/sh\necho 'sox:      SoX v14.4.2'\n")

	result := CheckEncoder(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "SoX 14.4.2") {
		t.Fatalf("expected version in detail, got %q", result.Detail)
	}
}

func TestCheckEncoder_Missing(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = filepath.Join(t.TempDir(), "missing-sox")

	if result := CheckEncoder(context.Background(), &cfg); result.Passed {
		t.Fatal("expected failure for missing encoder")
	}
	reqs := SystemRequirements(&cfg)
	if len(reqs) != 1 || reqs[0].Command != cfg.Encoder.Binary {
		t.Fatalf("unexpected requirements: %#v", reqs)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = writeStub(t, "#!/bin/sh\necho 'SoX v14.4.2'\n")
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	// Encoder + state + log directory checks
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
}

func TestRunAll_SkipsUnsetLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Encoder.Binary = filepath.Join(t.TempDir(), "missing-sox")
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 1 || failed[0].Name != "Encoder" {
		t.Fatalf("expected only encoder failure, got %#v", failed)
	}
}
