package analyses

import (
	"context"
	"time"

	"medrecord-backend/internal/llm"
	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/metrics"
	"medrecord-backend/internal/shared/telemetry"
)

// Analyzer turns one medical record into an AnalysisResult via the LLM.
type Analyzer struct {
	LLM llm.Client
}

// NewAnalyzer constructs an Analyzer over the given LLM client.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{LLM: client}
}

// Analyze issues one LLM call for the record and decodes the response.
// Transport failures return an *AnalysisFailure carrying the record ID;
// unparsable responses never fail, they decode to a degraded result.
func (a *Analyzer) Analyze(ctx context.Context, record records.MedicalRecord) (AnalysisResult, error) {
	recordID := record.PatientInfo.PatientID
	metrics.IncRecordAnalysisStarted()
	start := time.Now()

	client := newRetryingLLM(a.LLM, recordID)
	raw, err := client.Complete(ctx, llm.Prompt{
		System:    analysisSystemPrompt,
		User:      recordPrompt(record),
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		metrics.IncRecordAnalysisFailed()
		return AnalysisResult{}, &AnalysisFailure{RecordID: recordID, Err: err}
	}

	result, degraded := DecodeResponse(raw)
	result.Degraded = degraded
	result.PatientID = recordID
	result.AnalysisDate = time.Now().UTC()

	elapsed := time.Since(start)
	metrics.IncRecordAnalysisCompleted()
	metrics.ObserveRecordAnalysisDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("analysis.complete", map[string]any{
		"record_id":   recordID,
		"degraded":    degraded,
		"confidence":  result.ConfidenceLevel,
		"duration_ms": elapsed.Milliseconds(),
	})
	return result, nil
}
