package batches

import (
	"context"
	"sync"
	"time"

	"medrecord-backend/internal/analyses"
	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/metrics"
	"medrecord-backend/internal/shared/telemetry"
)

// RecordAnalyzer analyzes one normalized record.
type RecordAnalyzer interface {
	Analyze(ctx context.Context, record records.MedicalRecord) (analyses.AnalysisResult, error)
}

const defaultChunkSize = 5

// Orchestrator drives a batch through fixed-size chunks: records within a
// chunk are analyzed concurrently, chunks run strictly one after another,
// and progress advances by the chunk size once every record in the chunk
// has settled.
type Orchestrator struct {
	Store      Store
	Analyzer   RecordAnalyzer
	ChunkSize  int
	ChunkDelay time.Duration
}

// Run processes all items of the batch and finalizes it. Items whose row
// conversion already failed settle immediately as failed outcomes; they
// still count toward progress. The batch completes even when every record
// fails. Cancellation is honored at chunk boundaries.
func (o *Orchestrator) Run(ctx context.Context, batchID string, items []Item) error {
	chunkSize := o.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	start := time.Now()
	outcomes := make([]RecordOutcome, 0, len(items))

	for offset := 0; offset < len(items); offset += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		if offset > 0 && o.ChunkDelay > 0 {
			select {
			case <-time.After(o.ChunkDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		end := offset + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[offset:end]
		chunkOutcomes := o.runChunk(ctx, chunk)

		var chunkErrs []string
		for _, outcome := range chunkOutcomes {
			if outcome.Error != "" {
				chunkErrs = append(chunkErrs, outcome.Error)
			}
		}
		if err := o.Store.AppendProgress(ctx, batchID, len(chunk), chunkErrs); err != nil {
			return err
		}
		outcomes = append(outcomes, chunkOutcomes...)
	}

	rs := ResultSet{
		BatchID:      batchID,
		TotalRecords: len(items),
		Results:      outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Status == outcomeSuccess {
			rs.SuccessfulAnalyses++
		} else {
			rs.FailedAnalyses++
		}
	}
	rs.Summary = BuildSummary(outcomes)
	rs.ProcessingTime = time.Since(start).Seconds()
	rs.Recommendations = batchRecommendations(rs)

	if err := o.Store.SetResults(ctx, batchID, rs); err != nil {
		return err
	}
	if err := o.Store.Complete(ctx, batchID, StatusCompleted); err != nil {
		return err
	}

	metrics.IncBatchCompleted()
	metrics.ObserveBatchDurationMs(float64(time.Since(start).Milliseconds()))
	telemetry.Info("batch.complete", map[string]any{
		"batch_id":   batchID,
		"total":      rs.TotalRecords,
		"successful": rs.SuccessfulAnalyses,
		"failed":     rs.FailedAnalyses,
		"seconds":    rs.ProcessingTime,
	})
	return nil
}

func (o *Orchestrator) runChunk(ctx context.Context, chunk []Item) []RecordOutcome {
	outcomes := make([]RecordOutcome, len(chunk))
	var wg sync.WaitGroup

	for i, item := range chunk {
		if item.Err != nil {
			outcomes[i] = RecordOutcome{
				RecordID:    item.RecordID,
				Status:      outcomeFailed,
				Error:       item.Err.Error(),
				Conditions:  []string{},
				Medications: []string{},
			}
			continue
		}

		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()
			outcomes[i] = o.analyzeOne(ctx, item)
		}(i, item)
	}

	wg.Wait()
	return outcomes
}

func (o *Orchestrator) analyzeOne(ctx context.Context, item Item) RecordOutcome {
	result, err := o.Analyzer.Analyze(ctx, item.Record)
	if err != nil {
		return RecordOutcome{
			RecordID:    item.RecordID,
			Status:      outcomeFailed,
			Error:       err.Error(),
			Conditions:  []string{},
			Medications: []string{},
		}
	}

	medications := make([]string, 0, len(result.RecommendedMedications))
	for _, med := range result.RecommendedMedications {
		medications = append(medications, med.MedicationName)
	}
	return RecordOutcome{
		RecordID:    item.RecordID,
		Status:      outcomeSuccess,
		Conditions:  result.SuspectedConditions,
		Medications: medications,
		Confidence:  result.ConfidenceLevel,
	}
}
