// Package validate implements the client-side acceptability check applied to
// candidate search queries before any network traffic happens.
package validate

import (
	"regexp"
	"strings"

	"github.com/devscout/research-agent/internal/research"
)

const (
	minQueryLen = 2
	maxQueryLen = 200

	// maxSpecialRatio bounds the share of non-word, non-space characters.
	maxSpecialRatio = 0.3
)

// Patterns that indicate markup or script injection attempts.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)onload=`),
	regexp.MustCompile(`(?i)onerror=`),
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)<object`),
	regexp.MustCompile(`(?i)<embed`),
	regexp.MustCompile(`(?i)<link`),
	regexp.MustCompile(`(?i)<meta`),
	regexp.MustCompile(`(?i)<style`),
}

// Patterns that indicate SQL injection attempts.
var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)delete\s+from`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)update\s+set`),
	regexp.MustCompile(`(?i);\s*drop`),
	regexp.MustCompile(`(?i);\s*delete`),
	regexp.MustCompile(`(?i);\s*insert`),
	regexp.MustCompile(`(?i);\s*update`),
}

var specialChar = regexp.MustCompile(`[^\w\s]`)

// Check validates a candidate query. It returns nil for acceptable queries
// and a *research.Error with kind validation otherwise. Checks run in fixed
// order and short-circuit on the first failure. Check is pure and never
// panics.
func Check(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return research.NewValidationError("Query cannot be empty")
	}
	if len(trimmed) < minQueryLen {
		return research.NewValidationError("Query must be at least 2 characters long")
	}
	if len(query) > maxQueryLen {
		return research.NewValidationError("Query must be less than 200 characters")
	}
	for _, p := range dangerousPatterns {
		if p.MatchString(query) {
			return research.NewValidationError("Query contains potentially dangerous content")
		}
	}
	for _, p := range sqlPatterns {
		if p.MatchString(query) {
			return research.NewValidationError("Query contains potentially dangerous SQL content")
		}
	}
	special := len(specialChar.FindAllString(query, -1))
	if float64(special) > float64(len(query))*maxSpecialRatio {
		return research.NewValidationError("Query contains too many special characters")
	}
	return nil
}

// Sanitize normalizes an already-validated query before it is sent to the
// backend: collapses whitespace runs, strips angle brackets and quotes, and
// enforces the maximum length.
func Sanitize(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	query = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, query)
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}
	return strings.TrimSpace(query)
}
