package batches

import (
	"time"

	"medrecord-backend/internal/records"
)

// Batch lifecycle states. A batch fails only when the submission itself
// is unusable; per-record analysis failures still complete the batch.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is the pollable state of one CSV batch.
type Job struct {
	BatchID          string     `json:"batch_id"`
	TotalRecords     int        `json:"total_records"`
	ProcessedRecords int        `json:"processed_records"`
	Status           string     `json:"status"`
	Errors           []string   `json:"errors"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	// Submission bookkeeping for queue-dispatched processing.
	SourceKey string         `json:"source_key,omitempty"`
	Schema    records.Schema `json:"schema,omitempty"`
}

// Item is one CSV row prepared for orchestration: either a normalized
// record or the row error that prevented conversion.
type Item struct {
	RecordID string
	Record   records.MedicalRecord
	Err      error
}

// RecordOutcome is the per-record entry in a finished batch.
type RecordOutcome struct {
	RecordID    string   `json:"record_id"`
	Status      string   `json:"status"`
	Error       string   `json:"error,omitempty"`
	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`
	Confidence  string   `json:"confidence,omitempty"`
}

// ResultSet is the full outcome of a completed batch.
type ResultSet struct {
	BatchID            string          `json:"batch_id"`
	TotalRecords       int             `json:"total_records"`
	SuccessfulAnalyses int             `json:"successful_analyses"`
	FailedAnalyses     int             `json:"failed_analyses"`
	Summary            Summary         `json:"analysis_summary"`
	Results            []RecordOutcome `json:"detailed_results"`
	ProcessingTime     float64         `json:"processing_time_seconds"`
	Recommendations    []string        `json:"recommendations"`
}

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)
