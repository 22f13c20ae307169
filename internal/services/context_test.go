package services_test

import (
	"context"
	"testing"

	"downconv/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithStage(ctx, "convert")
	ctx = services.WithFolder(ctx, "/music/Album [24bit FLAC]")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "convert" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if folder, ok := services.FolderFromContext(ctx); !ok || folder != "/music/Album [24bit FLAC]" {
		t.Fatalf("unexpected folder: %v %v", folder, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
