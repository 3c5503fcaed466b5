package knowledge

import (
	"bytes"
	"encoding/json"
)

// Encode writes b as a JSON knowledge document, preserving entry order.
// Structured records emit only the fields that are set.
func Encode(b *Base) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n  \"explanations\": {")
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		if err := writeJSON(&buf, e.Key); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := writeExplanation(&buf, e.Explanation); err != nil {
			return nil, err
		}
	}
	if len(b.entries) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("},\n  \"risk_categories\": {")
	for i, c := range b.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		if err := writeJSON(&buf, c.Name); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		keywords := c.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		if err := writeJSON(&buf, struct {
			Keywords    []string `json:"keywords"`
			Description string   `json:"description,omitempty"`
			Severity    string   `json:"severity,omitempty"`
		}{keywords, c.Description, c.Severity}); err != nil {
			return nil, err
		}
	}
	if len(b.categories) > 0 {
		buf.WriteString("\n  ")
	}
	buf.WriteString("},\n  \"important_clauses\": ")
	clauses := b.clauses
	if clauses == nil {
		clauses = []string{}
	}
	if err := writeJSON(&buf, clauses); err != nil {
		return nil, err
	}
	if b.sample != "" {
		buf.WriteString(",\n  \"sample_rental_agreement\": ")
		if err := writeJSON(&buf, b.sample); err != nil {
			return nil, err
		}
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

func writeExplanation(buf *bytes.Buffer, exp Explanation) error {
	switch e := exp.(type) {
	case PlainDefinition:
		return writeJSON(buf, string(e))
	case StructuredRecord:
		return writeJSON(buf, struct {
			Definition       string `json:"definition"`
			Importance       string `json:"importance,omitempty"`
			Category         string `json:"category,omitempty"`
			TypicalAmount    string `json:"typical_amount,omitempty"`
			RefundConditions string `json:"refund_conditions,omitempty"`
			TypicalPenalty   string `json:"typical_penalty,omitempty"`
			NoticePeriod     string `json:"notice_period,omitempty"`
			Penalties        string `json:"penalties,omitempty"`
		}{e.Definition, e.Importance, e.Category, e.TypicalAmount, e.RefundConditions, e.TypicalPenalty, e.NoticePeriod, e.Penalties})
	default:
		return writeJSON(buf, nil)
	}
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
