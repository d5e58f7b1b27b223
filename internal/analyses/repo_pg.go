package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo is a Postgres-backed Repo storing results as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts the result for its patient ID.
func (r *PGRepo) Save(ctx context.Context, result AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO analyses (patient_id, result, analysis_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id)
		DO UPDATE SET result = EXCLUDED.result, analysis_date = EXCLUDED.analysis_date
	`, result.PatientID, payload, result.AnalysisDate)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// GetByPatient fetches the latest result for a patient.
func (r *PGRepo) GetByPatient(ctx context.Context, patientID string) (AnalysisResult, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT result FROM analyses WHERE patient_id = $1
	`, patientID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisResult{}, ErrNotFound
	}
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("get analysis: %w", err)
	}
	var result AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return AnalysisResult{}, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return result, nil
}

var _ Repo = (*PGRepo)(nil)
