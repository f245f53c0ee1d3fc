// Package sanitize holds the pure string hygiene helpers shared by every
// tenant-scoped collection. Input cleaning and output escaping are two
// separate stages: Input runs before a payload is stored, Output runs on
// values leaving the service.
package sanitize

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	tagSequence  = regexp.MustCompile(`</?[A-Za-z][^>]*>?`)
	emailShape   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ssnShape     = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
)

// Input strips control characters and tag-like sequences from a string and
// trims surrounding whitespace. Total: any input yields a usable string.
func Input(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	s = tagSequence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Output escapes a string for safe inclusion in rendered responses.
func Output(s string) string {
	return html.EscapeString(s)
}

// Bool coerces an arbitrary value to bool, falling back to def.
func Bool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return def
	}
}

// Int coerces an arbitrary value to int, falling back to def.
func Int(v any, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// LooksLikeEmail reports whether the whole string is email-shaped.
func LooksLikeEmail(s string) bool {
	return emailShape.MatchString(strings.TrimSpace(s))
}

// LooksLikeSSN reports whether the whole string is a social-security-number
// shaped digit sequence.
func LooksLikeSSN(s string) bool {
	return ssnShape.MatchString(strings.TrimSpace(s))
}

// MissingFieldsError aggregates every missing required field into a single
// message so callers can fix a payload in one pass.
func MissingFieldsError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(fields, ", "))
}
