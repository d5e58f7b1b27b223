package whodata

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo keeps indicator data in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	recs []WHORecord
}

// NewMemoryRepo creates an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// SaveAll appends a batch of indicator records.
func (r *MemoryRepo) SaveAll(ctx context.Context, recs []WHORecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, recs...)
	return nil
}

// List returns records matching the filter, ordered by country then year.
func (r *MemoryRepo) List(ctx context.Context, f Filter) ([]WHORecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WHORecord, 0, len(r.recs))
	for _, rec := range r.recs {
		if f.Country != "" && !strings.EqualFold(rec.Country, f.Country) {
			continue
		}
		if f.Indicator != "" && !strings.EqualFold(rec.Indicator, f.Indicator) {
			continue
		}
		if f.Year != 0 && rec.Year != f.Year {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
