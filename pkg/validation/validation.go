package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsPositiveAmount reports whether x is present and strictly positive.
func IsPositiveAmount(x decimal.NullDecimal) bool {
	return x.Valid && x.Decimal.GreaterThan(decimal.Zero)
}

// IsInRange reports whether x is present and lo <= x <= hi.
func IsInRange(x decimal.NullDecimal, lo, hi decimal.Decimal) bool {
	return x.Valid && x.Decimal.GreaterThanOrEqual(lo) && x.Decimal.LessThanOrEqual(hi)
}

// IsNonEmptyString reports whether s has at least minLen characters after
// trimming. minLen < 1 is treated as 1.
func IsNonEmptyString(s string, minLen int) bool {
	if minLen < 1 {
		minLen = 1
	}
	return len(strings.TrimSpace(s)) >= minLen
}

// IsValidEmail is a cheap syntactic check, not an RFC 5322 parser.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
