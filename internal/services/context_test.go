package services_test

import (
	"context"
	"testing"

	"frame/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRowID(ctx, "1700000000000-abcd1234")
	ctx = services.WithJobID(ctx, "job-7")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RowIDFromContext(ctx); !ok || id != "1700000000000-abcd1234" {
		t.Fatalf("unexpected row id: %v %v", id, ok)
	}
	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-7" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRowID(ctx, "")
	ctx = services.WithJobID(ctx, "")
	if _, ok := services.RowIDFromContext(ctx); ok {
		t.Fatal("expected no row id value")
	}
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job id value")
	}
}
