package lookups

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Service records clause lookup outcomes and reports the most common ones.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service over repo.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Record stores one lookup. Queries are normalized the same way the matcher
// sees them; blank queries are ignored.
func (s *Service) Record(ctx context.Context, query, outcome string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	if utf8.RuneCountInString(query) > maxQueryLen {
		query = string([]rune(query)[:maxQueryLen])
	}
	if outcome == "" || !ValidOutcome(outcome) {
		return ErrInvalidOutcome
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return s.Repo.Record(ctx, query, outcome, now().UTC())
}

// Top lists frequent lookups. limit is clamped to [1, MaxLimit].
func (s *Service) Top(ctx context.Context, outcome string, limit int) ([]Lookup, error) {
	if !ValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.Repo.Top(ctx, outcome, limit)
}
