package lookups

import (
	"context"
	"sort"
	"sync"
	"time"
)

type lookupKey struct {
	query   string
	outcome string
}

// MemoryRepo stores lookup counters in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[lookupKey]Lookup
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[lookupKey]Lookup)}
}

// Record bumps the counter for (query, outcome).
func (r *MemoryRepo) Record(ctx context.Context, query, outcome string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := lookupKey{query: query, outcome: outcome}
	l := r.entries[k]
	l.Query = query
	l.Outcome = outcome
	l.Count++
	if at.After(l.LastSeenAt) {
		l.LastSeenAt = at
	}
	r.entries[k] = l
	return nil
}

// Top returns the most frequent lookups, optionally filtered by outcome.
// Ties break on most recent, then query.
func (r *MemoryRepo) Top(ctx context.Context, outcome string, limit int) ([]Lookup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Lookup, 0, len(r.entries))
	for _, l := range r.entries {
		if outcome != "" && l.Outcome != outcome {
			continue
		}
		out = append(out, l)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		if out[i].Query != out[j].Query {
			return out[i].Query < out[j].Query
		}
		return out[i].Outcome < out[j].Outcome
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
