package knowledge

import (
	"strings"
)

// Level is a LOW/MEDIUM/HIGH label used for importance and severity.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// ParseLevel normalizes a raw label. Unknown or empty values return ("", false).
func ParseLevel(raw string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(LevelLow):
		return LevelLow, true
	case string(LevelMedium):
		return LevelMedium, true
	case string(LevelHigh):
		return LevelHigh, true
	default:
		return "", false
	}
}

// Explanation is either a PlainDefinition or a StructuredRecord.
// Consumers switch on the concrete type.
type Explanation interface {
	Meaning() string
	isExplanation()
}

// PlainDefinition is the legacy shape: a bare definition string with no metadata.
type PlainDefinition string

// Meaning returns the definition text.
func (p PlainDefinition) Meaning() string { return string(p) }

func (PlainDefinition) isExplanation() {}

// StructuredRecord carries a definition plus optional metadata. Absent fields are empty.
type StructuredRecord struct {
	Definition       string
	Importance       string
	Category         string
	TypicalAmount    string
	RefundConditions string
	TypicalPenalty   string
	NoticePeriod     string
	Penalties        string
}

// Meaning returns the definition text.
func (r StructuredRecord) Meaning() string { return r.Definition }

func (StructuredRecord) isExplanation() {}

// Metadata returns every optional field keyed by its document name.
func (r StructuredRecord) Metadata() map[string]string {
	return map[string]string{
		"importance":        r.Importance,
		"category":          r.Category,
		"typical_amount":    r.TypicalAmount,
		"refund_conditions": r.RefundConditions,
		"typical_penalty":   r.TypicalPenalty,
		"notice_period":     r.NoticePeriod,
		"penalties":         r.Penalties,
	}
}

// ImportanceLevel returns the parsed importance, or ("", false) when absent or unrecognized.
func (r StructuredRecord) ImportanceLevel() (Level, bool) {
	return ParseLevel(r.Importance)
}

// Entry pairs a clause key with its explanation.
type Entry struct {
	Key         string
	Explanation Explanation
}

// RiskCategory groups keywords representing one class of risk.
type RiskCategory struct {
	Name        string
	Keywords    []string
	Description string
	Severity    string
}

// Contents is the raw material for a Base.
type Contents struct {
	Explanations     []Entry
	RiskCategories   []RiskCategory
	ImportantClauses []string
	SampleAgreement  string
}
