package batches

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is the normal outcome of polling an unknown batch ID.
	ErrNotFound = errors.New("batch not found")
	// ErrNotReady is returned when results are requested before completion.
	ErrNotReady = errors.New("batch results not ready")
)

// Store tracks batch jobs and their result sets. A batch is owned by a
// single orchestration, so implementations only need to make individual
// operations atomic, not cross-operation sequences.
type Store interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, batchID string) (Job, error)
	AppendProgress(ctx context.Context, batchID string, processed int, errs []string) error
	SetResults(ctx context.Context, batchID string, rs ResultSet) error
	Complete(ctx context.Context, batchID string, status string) error
	Results(ctx context.Context, batchID string) (ResultSet, error)
}
