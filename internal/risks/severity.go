package risks

import (
	"strings"

	"legallens-backend/internal/knowledge"
)

// DefaultHighSeverityKeywords escalate to HIGH when the knowledge base has no
// structured record for them.
var DefaultHighSeverityKeywords = []string{"eviction", "indemnity", "rent escalation"}

// SeverityTable assigns a fallback severity to keywords that lack structured metadata.
type SeverityTable struct {
	high     map[string]bool
	fallback knowledge.Level
}

// NewSeverityTable builds a table escalating the given keywords to HIGH.
// Keywords are matched case-insensitively.
func NewSeverityTable(high []string) SeverityTable {
	t := SeverityTable{high: make(map[string]bool, len(high)), fallback: knowledge.LevelMedium}
	for _, kw := range high {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			t.high[kw] = true
		}
	}
	return t
}

// DefaultSeverityTable returns the table built from DefaultHighSeverityKeywords.
func DefaultSeverityTable() SeverityTable {
	return NewSeverityTable(DefaultHighSeverityKeywords)
}

// SeverityTableFromConfig uses override when non-empty, otherwise the default.
func SeverityTableFromConfig(override []string) SeverityTable {
	if len(override) == 0 {
		return DefaultSeverityTable()
	}
	return NewSeverityTable(override)
}

// SeverityFor returns the fallback severity for keyword.
func (t SeverityTable) SeverityFor(keyword string) knowledge.Level {
	if t.high[strings.ToLower(strings.TrimSpace(keyword))] {
		return knowledge.LevelHigh
	}
	if t.fallback == "" {
		return knowledge.LevelMedium
	}
	return t.fallback
}

// severityFromImportance maps a record's importance to a finding severity.
// Absent importance counts as MEDIUM; anything else unrecognized is LOW.
func severityFromImportance(raw string) (severity, importance knowledge.Level) {
	if strings.TrimSpace(raw) == "" {
		return knowledge.LevelMedium, knowledge.LevelMedium
	}
	switch lvl, _ := knowledge.ParseLevel(raw); lvl {
	case knowledge.LevelHigh:
		return knowledge.LevelHigh, knowledge.LevelHigh
	case knowledge.LevelMedium:
		return knowledge.LevelMedium, knowledge.LevelMedium
	case knowledge.LevelLow:
		return knowledge.LevelLow, knowledge.LevelLow
	default:
		return knowledge.LevelLow, knowledge.Level(raw)
	}
}
