// Package summary builds extractive summaries of agreement text.
package summary

import (
	"strings"
	"unicode/utf8"
)

type Mode string

const (
	ModeKeyPoints        Mode = "key_points"
	ModeLeadingSentences Mode = "leading_sentences"
	ModePrefix           Mode = "prefix"
)

const (
	Header         = "Key points from the document:\n\n"
	OverflowNotice = "\n\n[Additional clauses present in full document]"
	PrefixLabel    = "Document summary: "

	maxKeyPoints     = 5
	leadingSegments  = 3
	prefixWords      = 30
	minSentenceRunes = 11
)

// KeyTerms mark a sentence as important. Matching is case-insensitive.
var KeyTerms = []string{"rent", "deposit", "termination", "penalty", "notice", "utilities", "maintenance"}

// Result is a summary plus the word counts of input and output.
type Result struct {
	Summary           string   `json:"summary"`
	OriginalWordCount int      `json:"original_word_count"`
	SummaryWordCount  int      `json:"summary_word_count"`
	KeyPoints         []string `json:"key_points"`
	Truncated         bool     `json:"truncated"`
	Mode              Mode     `json:"mode"`
}

// Summarize selects sentences mentioning a key term. Without any it falls back
// to the leading sentences, then to a prefix of the text. Text keeps its case.
func Summarize(text string) Result {
	segments := strings.Split(text, ".")

	var important []string
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if !usable(s) {
			continue
		}
		if hasKeyTerm(s) {
			important = append(important, s)
		}
	}

	res := Result{Mode: ModeKeyPoints}
	if len(important) == 0 {
		res.Mode = ModeLeadingSentences
		n := len(segments)
		if n > leadingSegments {
			n = leadingSegments
		}
		for _, s := range segments[:n] {
			s = strings.TrimSpace(s)
			if usable(s) {
				important = append(important, s)
			}
		}
	}

	if len(important) > 0 {
		points := important
		if len(points) > maxKeyPoints {
			points = points[:maxKeyPoints]
			res.Truncated = true
		}
		res.KeyPoints = append([]string(nil), points...)
		res.Summary = Header + strings.Join(points, ".\n")
		if res.Truncated {
			res.Summary += OverflowNotice
		}
	} else {
		res.Mode = ModePrefix
		res.KeyPoints = []string{}
		words := strings.Fields(text)
		if len(words) > prefixWords {
			words = words[:prefixWords]
		}
		res.Summary = PrefixLabel + strings.Join(words, " ") + "..."
	}

	res.OriginalWordCount = len(strings.Fields(text))
	res.SummaryWordCount = len(strings.Fields(res.Summary))
	return res
}

func usable(sentence string) bool {
	return utf8.RuneCountInString(sentence) >= minSentenceRunes
}

func hasKeyTerm(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, term := range KeyTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
