// Package models defines the core domain entities: markets, price samples and series summaries.
package models

import (
	"errors"
	"strings"
	"unicode"
)

// Market represents a single prediction-market contract discovered through the Gamma API.
// Raw keeps the original record so fields the normalizer does not know about survive.
type Market struct {
	ID        string         `json:"id"`
	Slug      string         `json:"slug"`
	Title     string         `json:"title"`
	Status    string         `json:"status"`
	CloseTime *string        `json:"close_time,omitempty"`
	Raw       map[string]any `json:"raw,omitempty"`
}

// Validate checks market field constraints.
func (m *Market) Validate() error {
	if m.ID == "" {
		return errors.New("market ID must not be empty")
	}
	if m.Title == "" {
		return errors.New("market title must not be empty")
	}
	return nil
}

// FileStem returns the sanitized "<title>-<id>" name used for output artifacts.
func (m *Market) FileStem() string {
	return SanitizeFilename(m.Title + "-" + m.ID)
}

// SanitizeFilename lowercases value and replaces every rune that is not a letter,
// digit, '-' or '_' with '-'. Leading and trailing dashes are trimmed; an empty
// result becomes "market".
func SanitizeFilename(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "market"
	}
	return out
}
