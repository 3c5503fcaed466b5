package lookups

import (
	"context"
	"time"
)

// Repo defines persistence operations for lookup statistics.
type Repo interface {
	Record(ctx context.Context, query, outcome string, at time.Time) error
	Top(ctx context.Context, outcome string, limit int) ([]Lookup, error)
}
