package whodata

import "context"

// Repo stores WHO indicator data points.
type Repo interface {
	SaveAll(ctx context.Context, recs []WHORecord) error
	List(ctx context.Context, f Filter) ([]WHORecord, error)
}
