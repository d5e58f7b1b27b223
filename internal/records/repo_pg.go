package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo is a Postgres-backed Repo storing records as JSONB.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts the record for its patient ID.
func (r *PGRepo) Save(ctx context.Context, record MedicalRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO medical_records (patient_id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (patient_id)
		DO UPDATE SET record = EXCLUDED.record, updated_at = now()
	`, record.PatientInfo.PatientID, payload)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Get fetches a record by patient ID.
func (r *PGRepo) Get(ctx context.Context, patientID string) (MedicalRecord, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT record FROM medical_records WHERE patient_id = $1
	`, patientID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return MedicalRecord{}, ErrNotFound
	}
	if err != nil {
		return MedicalRecord{}, fmt.Errorf("get record: %w", err)
	}
	var record MedicalRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return MedicalRecord{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return record, nil
}

var _ Repo = (*PGRepo)(nil)
