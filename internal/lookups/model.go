package lookups

import (
	"errors"
	"time"
)

// Outcomes recorded for a clause lookup.
const (
	OutcomeExact   = "exact"
	OutcomePartial = "partial"
	OutcomeNone    = "none"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	maxQueryLen  = 100
)

var ErrInvalidOutcome = errors.New("invalid outcome")

// Lookup aggregates how often a normalized query produced an outcome.
type Lookup struct {
	Query      string    `json:"query"`
	Outcome    string    `json:"outcome"`
	Count      int64     `json:"count"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// ValidOutcome reports whether outcome is one of the recorded values.
// The empty string means any outcome.
func ValidOutcome(outcome string) bool {
	switch outcome {
	case "", OutcomeExact, OutcomePartial, OutcomeNone:
		return true
	default:
		return false
	}
}
