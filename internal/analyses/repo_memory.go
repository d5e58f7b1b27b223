package analyses

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	results map[string]AnalysisResult
}

// NewMemoryRepo creates an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{results: make(map[string]AnalysisResult)}
}

// Save stores or replaces the result for its patient ID.
func (r *MemoryRepo) Save(ctx context.Context, result AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.PatientID] = result
	return nil
}

// GetByPatient fetches the latest result for a patient.
func (r *MemoryRepo) GetByPatient(ctx context.Context, patientID string) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[patientID]
	if !ok {
		return AnalysisResult{}, ErrNotFound
	}
	return result, nil
}

var _ Repo = (*MemoryRepo)(nil)
