package batches

import (
	"context"
	"strings"
	"testing"
	"time"

	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/storage/object/local"
)

// Queue delivery is at-least-once, so the worker entry point must ignore
// batches that already reached a terminal status instead of re-running them.
func TestProcessBatchSkipsSettledJob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	analyzer := &stubAnalyzer{}
	svc := NewService(store, &Orchestrator{Store: store, Analyzer: analyzer, ChunkSize: 5}, local.New(t.TempDir()))

	csvBody := "patient_id,age,gender,symptoms\nP001,34,Female,headache\n"
	key, _, _, err := svc.Objects.Save(ctx, "u1", "patients.csv", strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("save source: %v", err)
	}
	err = store.Create(ctx, Job{
		BatchID:      "B1",
		TotalRecords: 1,
		Status:       StatusProcessing,
		CreatedAt:    time.Now().UTC(),
		SourceKey:    key,
		Schema:       records.SchemaCanonical,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if err := svc.ProcessBatch(ctx, "B1"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first, err := store.Get(ctx, "B1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if first.Status != StatusCompleted || first.CompletedAt == nil {
		t.Fatalf("job after first delivery = %+v", first)
	}
	callsAfterFirst := analyzer.calls

	if err := svc.ProcessBatch(ctx, "B1"); err != nil {
		t.Fatalf("duplicate delivery: %v", err)
	}
	if analyzer.calls != callsAfterFirst {
		t.Fatalf("analyzer calls = %d after duplicate delivery, want %d", analyzer.calls, callsAfterFirst)
	}
	second, err := store.Get(ctx, "B1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completed_at moved from %v to %v", first.CompletedAt, second.CompletedAt)
	}
	if second.ProcessedRecords != first.ProcessedRecords {
		t.Fatalf("processed = %d after duplicate delivery, want %d", second.ProcessedRecords, first.ProcessedRecords)
	}
}
