package conversion_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"downconv/internal/conversion"
	"downconv/internal/services"
	"downconv/internal/testsupport"
)

type copyRecorder struct {
	conversion.NopReporter
	copied []string
}

func (r *copyRecorder) FileCopied(task conversion.CopyTask, _ int64) {
	r.copied = append(r.copied, filepath.Base(task.Source))
}

func TestCopyAllMirrorsTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testsupport.WriteFile(t, filepath.Join(src, "cover.jpg"), 1000)
	testsupport.WriteFile(t, filepath.Join(src, "Scans", "back.png"), 2000)

	tasks := []conversion.CopyTask{
		{Source: filepath.Join(src, "cover.jpg"), Dest: filepath.Join(dst, "cover.jpg")},
		{Source: filepath.Join(src, "Scans", "back.png"), Dest: filepath.Join(dst, "Scans", "back.png")},
	}
	rec := &copyRecorder{}
	n, err := conversion.CopyAll(context.Background(), tasks, rec)
	if err != nil {
		t.Fatalf("CopyAll: %v", err)
	}
	if n != 3000 {
		t.Fatalf("expected 3000 bytes, got %d", n)
	}
	if len(rec.copied) != 2 || rec.copied[0] != "cover.jpg" || rec.copied[1] != "back.png" {
		t.Fatalf("unexpected report order %v", rec.copied)
	}
	for _, task := range tasks {
		want, _ := os.ReadFile(task.Source)
		got, err := os.ReadFile(task.Dest)
		if err != nil {
			t.Fatalf("read copy: %v", err)
		}
		if !bytes.Equal(want, got) {
			t.Fatalf("content mismatch for %s", task.Dest)
		}
	}
}

func TestCopyAllToleratesExistingDirectories(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(src, "a.txt"), 10)
	if err := os.MkdirAll(filepath.Join(dst, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	tasks := []conversion.CopyTask{{Source: filepath.Join(src, "a.txt"), Dest: filepath.Join(dst, "sub", "a.txt")}}
	if _, err := conversion.CopyAll(context.Background(), tasks, nil); err != nil {
		t.Fatalf("CopyAll: %v", err)
	}
}

func TestCopyAllPropagatesFilesystemErrors(t *testing.T) {
	dst := t.TempDir()
	tasks := []conversion.CopyTask{{Source: filepath.Join(t.TempDir(), "missing"), Dest: filepath.Join(dst, "missing")}}

	_, err := conversion.CopyAll(context.Background(), tasks, nil)
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}
