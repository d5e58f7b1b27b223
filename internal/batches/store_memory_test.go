package batches

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	job := Job{BatchID: "b1", TotalRecords: 4, Status: StatusProcessing, CreatedAt: time.Now().UTC()}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.AppendProgress(ctx, "b1", 2, []string{"Row 1: bad age"}); err != nil {
		t.Fatalf("append progress: %v", err)
	}
	got, err := store.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProcessedRecords != 2 || len(got.Errors) != 1 {
		t.Fatalf("processed=%d errors=%v", got.ProcessedRecords, got.Errors)
	}

	if _, err := store.Results(ctx, "b1"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("results before completion: %v, want ErrNotReady", err)
	}

	rs := ResultSet{BatchID: "b1", TotalRecords: 4, SuccessfulAnalyses: 3, FailedAnalyses: 1}
	if err := store.SetResults(ctx, "b1", rs); err != nil {
		t.Fatalf("set results: %v", err)
	}
	if err := store.Complete(ctx, "b1", StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ = store.Get(ctx, "b1")
	if got.Status != StatusCompleted || got.CompletedAt == nil {
		t.Fatalf("job after complete: %+v", got)
	}
	gotRS, err := store.Results(ctx, "b1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if gotRS.SuccessfulAnalyses != 3 {
		t.Fatalf("successful = %d, want 3", gotRS.SuccessfulAnalyses)
	}
}

func TestMemoryStoreProgressNeverExceedsTotal(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, Job{BatchID: "b2", TotalRecords: 3, Status: StatusProcessing}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.AppendProgress(ctx, "b2", 5, nil); err != nil {
		t.Fatalf("append progress: %v", err)
	}
	got, _ := store.Get(ctx, "b2")
	if got.ProcessedRecords != 3 {
		t.Fatalf("processed = %d, want clamp to 3", got.ProcessedRecords)
	}
}

func TestMemoryStoreUnknownBatch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get unknown: %v", err)
	}
	if _, err := store.Results(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("results unknown: %v", err)
	}
	if err := store.AppendProgress(ctx, "nope", 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("append unknown: %v", err)
	}
}
