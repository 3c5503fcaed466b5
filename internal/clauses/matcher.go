// Package clauses resolves a clause or legal term to its explanation.
package clauses

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"legallens-backend/internal/knowledge"
)

// ErrInvalidInput is returned for an empty query.
var ErrInvalidInput = errors.New("clause query is empty")

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchNone    MatchType = ""
)

const (
	SourceLocal = "local"
	SourceNone  = "none"

	// NoMatchMessage guides the caller toward terms the knowledge base knows.
	NoMatchMessage = "No explanation found in local database. Try searching for terms like 'security deposit', 'rent escalation', or 'termination clause'."

	maxSuggestions     = 2
	maxNoneSuggestions = 5
	minTokenRunes      = 3
)

// Result is the outcome of a lookup. AdditionalInfo is set only for exact matches.
type Result struct {
	Explanation    string
	Source         string
	MatchType      MatchType
	Clause         string
	AdditionalInfo map[string]string
	Suggestions    []string
}

// Matched reports whether any tier produced an explanation.
func (r Result) Matched() bool {
	return r.Source == SourceLocal
}

// MarshalJSON emits only the fields each tier defines.
func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"explanation": r.Explanation,
		"source":      r.Source,
	}
	switch r.MatchType {
	case MatchExact:
		out["match_type"] = r.MatchType
		out["clause"] = r.Clause
		info := r.AdditionalInfo
		if info == nil {
			info = map[string]string{}
		}
		out["additional_info"] = info
	case MatchPartial:
		out["match_type"] = r.MatchType
		out["clause"] = r.Clause
		out["suggestions"] = nonNil(r.Suggestions)
	default:
		out["suggestions"] = nonNil(r.Suggestions)
	}
	return json.Marshal(out)
}

// Match resolves query against kb: exact key, then substring either way, then
// shared token longer than two runes, then no match. Candidates follow the
// knowledge base's entry order.
func Match(kb *knowledge.Base, query string) (Result, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return Result{}, ErrInvalidInput
	}
	entries := kb.Entries()

	for _, e := range entries {
		if strings.ToLower(e.Key) == query {
			return exact(e), nil
		}
	}

	var candidates []knowledge.Entry
	for _, e := range entries {
		key := strings.ToLower(e.Key)
		if strings.Contains(query, key) || strings.Contains(key, query) {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		tokens := queryTokens(query)
		if len(tokens) > 0 {
			for _, e := range entries {
				if sharesToken(strings.Fields(strings.ToLower(e.Key)), tokens) {
					candidates = append(candidates, e)
				}
			}
		}
	}

	if len(candidates) > 0 {
		return partial(candidates), nil
	}

	return Result{
		Explanation: NoMatchMessage,
		Source:      SourceNone,
		MatchType:   MatchNone,
		Suggestions: kb.Keys(maxNoneSuggestions),
	}, nil
}

func exact(e knowledge.Entry) Result {
	res := Result{
		Explanation:    e.Explanation.Meaning(),
		Source:         SourceLocal,
		MatchType:      MatchExact,
		Clause:         e.Key,
		AdditionalInfo: map[string]string{},
	}
	if rec, ok := e.Explanation.(knowledge.StructuredRecord); ok {
		res.AdditionalInfo = rec.Metadata()
	}
	return res
}

func partial(candidates []knowledge.Entry) Result {
	best := candidates[0]
	rest := candidates[1:]
	if len(rest) > maxSuggestions {
		rest = rest[:maxSuggestions]
	}
	suggestions := make([]string, 0, len(rest))
	for _, c := range rest {
		suggestions = append(suggestions, c.Key)
	}
	return Result{
		Explanation: best.Explanation.Meaning(),
		Source:      SourceLocal,
		MatchType:   MatchPartial,
		Clause:      best.Key,
		Suggestions: suggestions,
	}
}

func queryTokens(query string) map[string]bool {
	tokens := map[string]bool{}
	for _, w := range strings.Fields(query) {
		if utf8.RuneCountInString(w) >= minTokenRunes {
			tokens[w] = true
		}
	}
	return tokens
}

func sharesToken(keyTokens []string, query map[string]bool) bool {
	for _, t := range keyTokens {
		if query[t] {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
