package record

import (
	"strconv"
	"strings"
	"time"
)

// Normalize reduces a specialist name to its identity key:
// trim surrounding whitespace, then lowercase. This is the sole
// matching heuristic — no fuzzy or typo tolerance.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidDate reports whether s is a calendar date in ISO YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ParseCost coerces a raw cost field to a number. Non-numeric or
// missing input yields 0, never an error.
func ParseCost(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
