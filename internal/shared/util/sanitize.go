package util

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyText   = errors.New("text is empty")
	ErrTextTooLong = errors.New("text too long")
)

var markupStripper = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// SanitizeText strips angle brackets and quotes, then trims surrounding space.
func SanitizeText(s string) string {
	return strings.TrimSpace(markupStripper.Replace(s))
}

// ValidateText rejects blank input and input longer than max runes.
// A max of zero or less disables the length check.
func ValidateText(s string, max int) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyText
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return ErrTextTooLong
	}
	return nil
}

// Truncate cuts s to at most max runes and reports whether it did.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	r := []rune(s)
	return string(r[:max]), true
}
