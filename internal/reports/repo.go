package reports

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no report exists for the requested ID.
var ErrNotFound = errors.New("report not found")

// Repo stores generated doctor reports.
type Repo interface {
	Save(ctx context.Context, report DoctorReport) error
	Get(ctx context.Context, reportID string) (DoctorReport, error)
}

// MemoryRepo keeps reports in process memory. Reports are regenerable
// from stored analyses, so they are not persisted.
type MemoryRepo struct {
	mu      sync.RWMutex
	reports map[string]DoctorReport
}

// NewMemoryRepo creates an empty in-memory report repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{reports: make(map[string]DoctorReport)}
}

// Save stores a report keyed by its report ID.
func (r *MemoryRepo) Save(ctx context.Context, report DoctorReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.ReportID] = report
	return nil
}

// Get fetches a report by ID.
func (r *MemoryRepo) Get(ctx context.Context, reportID string) (DoctorReport, error) {
	if err := ctx.Err(); err != nil {
		return DoctorReport{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[reportID]
	if !ok {
		return DoctorReport{}, ErrNotFound
	}
	return report, nil
}

var _ Repo = (*MemoryRepo)(nil)
