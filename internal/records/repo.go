package records

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a patient.
var ErrNotFound = errors.New("medical record not found")

// Repo stores normalized medical records keyed by patient ID.
type Repo interface {
	Save(ctx context.Context, record MedicalRecord) error
	Get(ctx context.Context, patientID string) (MedicalRecord, error)
}
