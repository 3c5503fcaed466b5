package knowledge

import (
	"strings"

	"legallens-backend/internal/shared/util"
)

// Base is an immutable knowledge base. Iteration order everywhere is the order
// entries appeared in the source document; it is deterministic for a given
// document but not a contract across reorderings of that document.
type Base struct {
	entries    []Entry
	exact      map[string]int
	folded     map[string]int
	categories []RiskCategory
	clauses    []string
	sample     string
	version    string
}

// New builds a Base from contents. Keys are trimmed and blank keys dropped;
// a repeated key keeps its first position and its last explanation.
// Risk keywords are lower-cased and blank keywords dropped.
func New(c Contents) *Base {
	b := &Base{
		exact:  make(map[string]int, len(c.Explanations)),
		folded: make(map[string]int, len(c.Explanations)),
		sample: c.SampleAgreement,
	}

	for _, e := range c.Explanations {
		key := strings.TrimSpace(e.Key)
		if key == "" || e.Explanation == nil {
			continue
		}
		if idx, ok := b.exact[key]; ok {
			b.entries[idx].Explanation = e.Explanation
			continue
		}
		b.exact[key] = len(b.entries)
		lower := strings.ToLower(key)
		if _, ok := b.folded[lower]; !ok {
			b.folded[lower] = len(b.entries)
		}
		b.entries = append(b.entries, Entry{Key: key, Explanation: e.Explanation})
	}

	seenCategory := make(map[string]int, len(c.RiskCategories))
	for _, rc := range c.RiskCategories {
		name := strings.TrimSpace(rc.Name)
		if name == "" {
			continue
		}
		cat := RiskCategory{
			Name:        name,
			Keywords:    normalizeKeywords(rc.Keywords),
			Description: rc.Description,
			Severity:    rc.Severity,
		}
		if idx, ok := seenCategory[name]; ok {
			b.categories[idx] = cat
			continue
		}
		seenCategory[name] = len(b.categories)
		b.categories = append(b.categories, cat)
	}

	// Phrases are matched against lower-cased text, like keywords.
	for _, phrase := range c.ImportantClauses {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		b.clauses = append(b.clauses, phrase)
	}

	encoded, err := Encode(b)
	if err == nil {
		b.version = util.ContentHash(encoded)
	}
	return b
}

// Empty returns a Base with no explanations, categories or clauses.
func Empty() *Base {
	return New(Contents{})
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// Len returns the number of explanation entries.
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Entries returns the explanation entries in document order.
func (b *Base) Entries() []Entry {
	if b == nil {
		return nil
	}
	return append([]Entry(nil), b.entries...)
}

// Keys returns up to n keys in document order. n <= 0 returns all keys.
func (b *Base) Keys(n int) []string {
	if b == nil {
		return []string{}
	}
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]string, 0, n)
	for _, e := range b.entries[:n] {
		out = append(out, e.Key)
	}
	return out
}

// Lookup finds an explanation by exact key, then by case-insensitive key.
func (b *Base) Lookup(key string) (Explanation, bool) {
	if b == nil {
		return nil, false
	}
	if idx, ok := b.exact[key]; ok {
		return b.entries[idx].Explanation, true
	}
	if idx, ok := b.folded[strings.ToLower(strings.TrimSpace(key))]; ok {
		return b.entries[idx].Explanation, true
	}
	return nil, false
}

// Categories returns the risk categories in document order.
func (b *Base) Categories() []RiskCategory {
	if b == nil {
		return nil
	}
	out := make([]RiskCategory, len(b.categories))
	for i, c := range b.categories {
		c.Keywords = append([]string(nil), c.Keywords...)
		out[i] = c
	}
	return out
}

// KeywordCount returns the number of risk keywords across all categories.
func (b *Base) KeywordCount() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, c := range b.categories {
		total += len(c.Keywords)
	}
	return total
}

// ImportantClauses returns the mandatory clause phrases in configured order.
func (b *Base) ImportantClauses() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.clauses...)
}

// SampleAgreement returns the bundled sample rental agreement, if any.
func (b *Base) SampleAgreement() string {
	if b == nil {
		return ""
	}
	return b.sample
}

// Version is a content fingerprint of the canonical encoding.
func (b *Base) Version() string {
	if b == nil {
		return ""
	}
	return b.version
}
