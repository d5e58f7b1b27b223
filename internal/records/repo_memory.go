package records

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]MedicalRecord
}

// NewMemoryRepo creates an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]MedicalRecord)}
}

// Save stores or replaces the record for its patient ID.
func (r *MemoryRepo) Save(ctx context.Context, record MedicalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.PatientInfo.PatientID] = record
	return nil
}

// Get fetches a record by patient ID.
func (r *MemoryRepo) Get(ctx context.Context, patientID string) (MedicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return MedicalRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[patientID]
	if !ok {
		return MedicalRecord{}, ErrNotFound
	}
	return record, nil
}

var _ Repo = (*MemoryRepo)(nil)
