package batches

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"medrecord-backend/internal/analyses"
	"medrecord-backend/internal/records"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, record records.MedicalRecord) (analyses.AnalysisResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fail[record.PatientInfo.PatientID] {
		return analyses.AnalysisResult{}, &analyses.AnalysisFailure{RecordID: record.PatientInfo.PatientID, Err: fmt.Errorf("model unavailable")}
	}
	return analyses.AnalysisResult{
		PatientID:           record.PatientInfo.PatientID,
		SuspectedConditions: []string{"Hypertension"},
		RecommendedMedications: []analyses.MedicationRecommendation{
			{MedicationName: "Lisinopril"},
		},
		ConfidenceLevel: analyses.ConfidenceHigh,
	}, nil
}

// recordingStore wraps MemoryStore to capture progress increments.
type recordingStore struct {
	*MemoryStore
	mu         sync.Mutex
	increments []int
}

func (s *recordingStore) AppendProgress(ctx context.Context, batchID string, processed int, errs []string) error {
	s.mu.Lock()
	s.increments = append(s.increments, processed)
	s.mu.Unlock()
	return s.MemoryStore.AppendProgress(ctx, batchID, processed, errs)
}

func batchItems(n int) []Item {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("P%03d", i+1)
		items = append(items, Item{
			RecordID: id,
			Record: records.MedicalRecord{
				PatientInfo: records.PatientInfo{PatientID: id, Name: "Patient_" + id, Age: 40, Gender: "Male"},
				Symptoms:    records.Symptoms{Primary: []string{"headache"}, Severity: "moderate"},
			},
		})
	}
	return items
}

func newTestBatch(t *testing.T, store Store, total int) string {
	t.Helper()
	batchID := "batch-test"
	err := store.Create(context.Background(), Job{
		BatchID:      batchID,
		TotalRecords: total,
		Status:       StatusProcessing,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return batchID
}

func TestOrchestratorAdvancesByChunk(t *testing.T) {
	store := &recordingStore{MemoryStore: NewMemoryStore()}
	items := batchItems(12)
	batchID := newTestBatch(t, store, len(items))

	orch := &Orchestrator{Store: store, Analyzer: &stubAnalyzer{}, ChunkSize: 5}
	if err := orch.Run(context.Background(), batchID, items); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []int{5, 5, 2}
	if len(store.increments) != len(want) {
		t.Fatalf("progress increments = %v, want %v", store.increments, want)
	}
	for i, inc := range want {
		if store.increments[i] != inc {
			t.Fatalf("progress increments = %v, want %v", store.increments, want)
		}
	}

	job, err := store.Get(context.Background(), batchID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.ProcessedRecords != 12 {
		t.Fatalf("processed = %d, want 12", job.ProcessedRecords)
	}
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", job.Status, StatusCompleted)
	}
	if job.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}

	rs, err := store.Results(context.Background(), batchID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if rs.SuccessfulAnalyses != 12 || rs.FailedAnalyses != 0 {
		t.Fatalf("success/failed = %d/%d, want 12/0", rs.SuccessfulAnalyses, rs.FailedAnalyses)
	}
	if len(rs.Results) != 12 {
		t.Fatalf("detailed results = %d, want 12", len(rs.Results))
	}
	if rs.Results[0].RecordID != "P001" {
		t.Fatalf("results out of order: first record %q", rs.Results[0].RecordID)
	}
}

func TestOrchestratorCompletesWhenEveryRecordFails(t *testing.T) {
	store := NewMemoryStore()
	items := batchItems(3)
	batchID := newTestBatch(t, store, len(items))

	analyzer := &stubAnalyzer{fail: map[string]bool{"P001": true, "P002": true, "P003": true}}
	orch := &Orchestrator{Store: store, Analyzer: analyzer, ChunkSize: 5}
	if err := orch.Run(context.Background(), batchID, items); err != nil {
		t.Fatalf("run: %v", err)
	}

	job, _ := store.Get(context.Background(), batchID)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", job.Status, StatusCompleted)
	}
	if len(job.Errors) != 3 {
		t.Fatalf("errors = %d, want 3", len(job.Errors))
	}

	rs, err := store.Results(context.Background(), batchID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if rs.SuccessfulAnalyses != 0 || rs.FailedAnalyses != 3 {
		t.Fatalf("success/failed = %d/%d, want 0/3", rs.SuccessfulAnalyses, rs.FailedAnalyses)
	}
}

func TestOrchestratorSettlesRowErrorsWithoutAnalysis(t *testing.T) {
	store := NewMemoryStore()
	items := batchItems(3)
	items[1] = Item{RecordID: "P002", Err: &records.RowError{Row: 2, Err: fmt.Errorf("primary symptoms are required")}}
	batchID := newTestBatch(t, store, len(items))

	analyzer := &stubAnalyzer{}
	orch := &Orchestrator{Store: store, Analyzer: analyzer, ChunkSize: 5}
	if err := orch.Run(context.Background(), batchID, items); err != nil {
		t.Fatalf("run: %v", err)
	}

	if analyzer.calls != 2 {
		t.Fatalf("analyzer calls = %d, want 2", analyzer.calls)
	}

	job, _ := store.Get(context.Background(), batchID)
	if job.ProcessedRecords != 3 {
		t.Fatalf("processed = %d, want 3", job.ProcessedRecords)
	}
	if len(job.Errors) != 1 || !strings.HasPrefix(job.Errors[0], "Row 2:") {
		t.Fatalf("errors = %v, want one Row 2 error", job.Errors)
	}

	rs, _ := store.Results(context.Background(), batchID)
	if rs.Results[1].Status != "failed" {
		t.Fatalf("row-error outcome status = %q, want failed", rs.Results[1].Status)
	}
	if rs.Results[1].Error == "" {
		t.Fatal("row-error outcome is missing its error text")
	}
}

func TestOrchestratorStopsOnCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	items := batchItems(2)
	batchID := newTestBatch(t, store, len(items))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := &Orchestrator{Store: store, Analyzer: &stubAnalyzer{}, ChunkSize: 5}
	if err := orch.Run(ctx, batchID, items); err == nil {
		t.Fatal("expected context error")
	}

	job, _ := store.Get(context.Background(), batchID)
	if job.Status != StatusProcessing {
		t.Fatalf("status = %q, want %q", job.Status, StatusProcessing)
	}
}
