package batches

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process Store used for single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]Job
	results map[string]ResultSet
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]Job),
		results: make(map[string]ResultSet),
	}
}

// Create registers a new batch job.
func (s *MemoryStore) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.Errors == nil {
		job.Errors = []string{}
	}
	s.jobs[job.BatchID] = job
	return nil
}

// Get returns a snapshot of a batch job.
func (s *MemoryStore) Get(ctx context.Context, batchID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[batchID]
	if !ok {
		return Job{}, ErrNotFound
	}
	job.Errors = append([]string(nil), job.Errors...)
	return job, nil
}

// AppendProgress advances the processed counter and accumulates errors.
// The counter never exceeds the batch total.
func (s *MemoryStore) AppendProgress(ctx context.Context, batchID string, processed int, errs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[batchID]
	if !ok {
		return ErrNotFound
	}
	job.ProcessedRecords += processed
	if job.ProcessedRecords > job.TotalRecords {
		job.ProcessedRecords = job.TotalRecords
	}
	job.Errors = append(job.Errors, errs...)
	s.jobs[batchID] = job
	return nil
}

// SetResults stores the finished result set for a batch.
func (s *MemoryStore) SetResults(ctx context.Context, batchID string, rs ResultSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[batchID]; !ok {
		return ErrNotFound
	}
	s.results[batchID] = rs
	return nil
}

// Complete transitions a batch to its terminal status.
func (s *MemoryStore) Complete(ctx context.Context, batchID string, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[batchID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	job.Status = status
	job.CompletedAt = &now
	s.jobs[batchID] = job
	return nil
}

// Results returns the stored result set, or ErrNotReady while the batch
// is still processing.
func (s *MemoryStore) Results(ctx context.Context, batchID string) (ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return ResultSet{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.jobs[batchID]; !ok {
		return ResultSet{}, ErrNotFound
	}
	rs, ok := s.results[batchID]
	if !ok {
		return ResultSet{}, ErrNotReady
	}
	return rs, nil
}

var _ Store = (*MemoryStore)(nil)
