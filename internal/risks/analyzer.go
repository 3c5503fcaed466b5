// Package risks scans agreement text for categorized risk keywords.
package risks

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"legallens-backend/internal/knowledge"
)

const (
	defaultDescription = "Risk identified"
	NoRisksMessage     = "No major risks found in local database."

	mediumThreshold = 3
	highThreshold   = 7
)

// Finding is one matched keyword.
type Finding struct {
	Keyword     string          `json:"keyword"`
	Severity    knowledge.Level `json:"severity"`
	Description string          `json:"description"`
	Importance  knowledge.Level `json:"importance"`
}

// Group collects the findings of one category that had at least one hit.
type Group struct {
	Category    string          `json:"category"`
	Key         string          `json:"key"`
	Count       int             `json:"count"`
	Description string          `json:"description"`
	Severity    knowledge.Level `json:"severity"`
	Risks       []Finding       `json:"risks"`
}

// CategoryCount is the number of hits for one configured category.
type CategoryCount struct {
	Category string
	Count    int
}

// Counts keeps category order when encoded as a JSON object.
type Counts []CategoryCount

func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cc.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(cc.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the count for category, zero when not configured.
func (c Counts) Get(category string) int {
	for _, cc := range c {
		if cc.Category == category {
			return cc.Count
		}
	}
	return 0
}

// Result is the outcome of an analysis.
type Result struct {
	RiskScore      knowledge.Level `json:"risk_score"`
	TotalRisks     int             `json:"total_risks"`
	RiskCategories []Group         `json:"risk_categories"`
	RiskSummary    Counts          `json:"risk_summary"`
	MissingClauses []string        `json:"missing_clauses"`
	Source         string          `json:"source"`
	Message        string          `json:"message,omitempty"`
}

// Analyzer scans text against a knowledge base. The zero value uses the
// default severity table.
type Analyzer struct {
	Severity SeverityTable
}

// New returns an Analyzer using table for keywords without structured metadata.
func New(table SeverityTable) *Analyzer {
	return &Analyzer{Severity: table}
}

// Analyze scans text, which the caller has already lower-cased and sanitized.
// It never fails; a sparse knowledge base yields a sparse result.
func (a *Analyzer) Analyze(kb *knowledge.Base, text string) Result {
	table := a.Severity
	if table.high == nil {
		table = DefaultSeverityTable()
	}

	res := Result{
		RiskCategories: []Group{},
		RiskSummary:    Counts{},
		MissingClauses: []string{},
		Source:         "local",
	}

	// Casers carry state and are not shared between goroutines.
	title := cases.Title(language.English)
	for _, cat := range kb.Categories() {
		var findings []Finding
		for _, kw := range cat.Keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			findings = append(findings, findingFor(kb, table, kw))
		}
		res.RiskSummary = append(res.RiskSummary, CategoryCount{Category: cat.Name, Count: len(findings)})
		res.TotalRisks += len(findings)
		if len(findings) == 0 {
			continue
		}
		severity, ok := knowledge.ParseLevel(cat.Severity)
		if !ok {
			severity = knowledge.LevelMedium
		}
		res.RiskCategories = append(res.RiskCategories, Group{
			Category:    title.String(cat.Name),
			Key:         cat.Name,
			Count:       len(findings),
			Description: cat.Description,
			Severity:    severity,
			Risks:       findings,
		})
	}

	res.RiskScore = Score(res.TotalRisks)

	for _, phrase := range kb.ImportantClauses() {
		if !strings.Contains(text, phrase) {
			res.MissingClauses = append(res.MissingClauses, phrase)
		}
	}

	if len(res.RiskCategories) == 0 {
		res.Message = NoRisksMessage
	}
	return res
}

func findingFor(kb *knowledge.Base, table SeverityTable, keyword string) Finding {
	f := Finding{Keyword: keyword}
	exp, _ := kb.Lookup(keyword)
	switch e := exp.(type) {
	case knowledge.StructuredRecord:
		f.Severity, f.Importance = severityFromImportance(e.Importance)
		f.Description = e.Definition
	case knowledge.PlainDefinition:
		f.Severity = table.SeverityFor(keyword)
		f.Importance = knowledge.LevelMedium
		f.Description = string(e)
	default:
		f.Severity = table.SeverityFor(keyword)
		f.Importance = knowledge.LevelMedium
	}
	if f.Description == "" {
		f.Description = defaultDescription
	}
	return f
}

// Score maps a total hit count to LOW (0-2), MEDIUM (3-6) or HIGH (7+).
func Score(total int) knowledge.Level {
	switch {
	case total < mediumThreshold:
		return knowledge.LevelLow
	case total < highThreshold:
		return knowledge.LevelMedium
	default:
		return knowledge.LevelHigh
	}
}

