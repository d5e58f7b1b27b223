package batches

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"medrecord-backend/internal/queue"
	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/metrics"
	"medrecord-backend/internal/shared/storage/object"
	"medrecord-backend/internal/shared/telemetry"
)

// SubmissionError reports a batch submission the server cannot accept.
// It is distinct from per-record analysis failures, which complete the
// batch with failed outcomes instead of rejecting it.
type SubmissionError struct {
	Code    string
	Message string
}

func (e *SubmissionError) Error() string { return e.Message }

// Service accepts CSV submissions and exposes batch state to handlers.
// When a queue client is configured the heavy processing is dispatched to
// a worker; otherwise it runs in-process.
type Service struct {
	Store   Store
	Orch    *Orchestrator
	Objects object.ObjectStore
	Queue   queue.Client
}

// NewService constructs a batch service.
func NewService(store Store, orch *Orchestrator, objects object.ObjectStore) *Service {
	return &Service{Store: store, Orch: orch, Objects: objects}
}

// Submit parses an uploaded CSV, registers a batch job and starts
// processing. It returns the created job immediately; callers poll for
// progress.
func (s *Service) Submit(ctx context.Context, userID, fileName string, data []byte, requestID string) (Job, error) {
	headers, rows, err := records.ParseCSV(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, records.ErrEmptyCSV) {
			return Job{}, &SubmissionError{Code: "empty_csv", Message: "uploaded CSV contains no data rows"}
		}
		return Job{}, &SubmissionError{Code: "invalid_csv", Message: fmt.Sprintf("failed to parse CSV: %v", err)}
	}

	schema := records.DetectSchema(headers)
	items := buildItems(rows, schema)

	valid := 0
	for _, item := range items {
		if item.Err == nil {
			valid++
		}
	}

	job := Job{
		BatchID:      uuid.NewString(),
		TotalRecords: len(items),
		Status:       StatusProcessing,
		Errors:       []string{},
		CreatedAt:    time.Now().UTC(),
		Schema:       schema,
	}

	if valid == 0 {
		job.Status = StatusFailed
		for _, item := range items {
			job.Errors = append(job.Errors, item.Err.Error())
		}
		if err := s.Store.Create(ctx, job); err != nil {
			return Job{}, err
		}
		metrics.IncBatchFailed()
		return job, &SubmissionError{Code: "no_valid_records", Message: "no row in the CSV could be converted to a medical record"}
	}

	if key, _, _, err := s.Objects.Save(ctx, userID, fileName, bytes.NewReader(data)); err != nil {
		telemetry.Error("batch.source_save_failed", map[string]any{"error": err.Error()})
	} else {
		job.SourceKey = key
	}

	if err := s.Store.Create(ctx, job); err != nil {
		return Job{}, err
	}
	metrics.IncBatchStarted()
	telemetry.Info("batch.submitted", map[string]any{
		"batch_id": job.BatchID,
		"schema":   string(schema),
		"total":    job.TotalRecords,
		"invalid":  len(items) - valid,
	})

	if s.Queue != nil && job.SourceKey != "" {
		msg := queue.Message{
			BatchID:    job.BatchID,
			RequestID:  requestID,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		sendErr := s.Queue.Send(ctx, msg)
		if sendErr == nil {
			return job, nil
		}
		// Fall back to in-process execution rather than losing the batch.
		telemetry.Error("batch.enqueue_failed", map[string]any{"batch_id": job.BatchID, "error": sendErr.Error()})
	}

	go s.runDetached(job.BatchID, items)
	return job, nil
}

// ProcessBatch re-reads a stored submission and runs it to completion.
// This is the queue consumer's entry point.
func (s *Service) ProcessBatch(ctx context.Context, batchID string) error {
	job, err := s.Store.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if job.Status != StatusProcessing {
		// Queue delivery is at-least-once; a redelivered message for a
		// finished batch must not re-run it or touch its results.
		telemetry.Info("batch.already_settled", map[string]any{
			"batch_id": batchID,
			"status":   job.Status,
		})
		return nil
	}
	if job.SourceKey == "" {
		return fmt.Errorf("batch %s has no stored source", batchID)
	}

	rc, err := s.Objects.Open(ctx, job.SourceKey)
	if err != nil {
		return fmt.Errorf("open batch source: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read batch source: %w", err)
	}
	_, rows, err := records.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse batch source: %w", err)
	}

	items := buildItems(rows, job.Schema)
	if err := s.Orch.Run(ctx, batchID, items); err != nil {
		metrics.IncBatchFailed()
		return err
	}
	return nil
}

// Status returns the pollable state of a batch.
func (s *Service) Status(ctx context.Context, batchID string) (Job, error) {
	return s.Store.Get(ctx, batchID)
}

// Results returns the finished result set of a batch.
func (s *Service) Results(ctx context.Context, batchID string) (ResultSet, error) {
	return s.Store.Results(ctx, batchID)
}

func (s *Service) runDetached(batchID string, items []Item) {
	if err := s.Orch.Run(context.Background(), batchID, items); err != nil {
		metrics.IncBatchFailed()
		telemetry.Error("batch.run_failed", map[string]any{"batch_id": batchID, "error": err.Error()})
		if cerr := s.Store.Complete(context.Background(), batchID, StatusFailed); cerr != nil {
			telemetry.Error("batch.finalize_failed", map[string]any{"batch_id": batchID, "error": cerr.Error()})
		}
	}
}

// buildItems converts parsed rows to orchestration items. Rows that fail
// normalization keep their error so the orchestrator can settle them as
// failed outcomes.
func buildItems(rows []map[string]string, schema records.Schema) []Item {
	items := make([]Item, 0, len(rows))
	for i, row := range rows {
		record, err := records.Normalize(row, i, schema)
		if err != nil {
			items = append(items, Item{RecordID: rowRecordID(row, i), Err: err})
			continue
		}
		items = append(items, Item{RecordID: record.PatientInfo.PatientID, Record: record})
	}
	return items
}

func rowRecordID(row map[string]string, index int) string {
	for _, key := range []string{"patient_id", "id", "device_id", "user_id"} {
		if v := row[key]; v != "" {
			return v
		}
	}
	return fmt.Sprintf("patient_%d", index)
}
