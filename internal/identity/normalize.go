// Package identity normalizes and hashes the customer fields sent to the
// collector for match-quality scoring.
package identity

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is prefixed to 10-11 digit numbers, which are assumed
// to be domestic. This is a locale guess, not an E.164 parser.
const DefaultCountryCode = "55"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases email. Invalid input yields "".
func NormalizeEmail(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" || !emailPattern.MatchString(e) {
		return ""
	}
	return e
}

// FormatPhoneToE164 is best effort:
//   - a leading "+" keeps the digits as international;
//   - 10 or 11 digits get DefaultCountryCode, an 11-digit number first
//     losing a leading trunk "0";
//   - anything else is returned as "+" followed by its digits.
func FormatPhoneToE164(phone string) string {
	trimmed := strings.TrimSpace(phone)
	digits := digitsOnly(trimmed)
	if digits == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits
	}

	switch n := len(digits); {
	case n == 10 || n == 11:
		if n == 11 && digits[0] == '0' {
			digits = digits[1:]
		}
		return "+" + DefaultCountryCode + digits
	default:
		return "+" + digits
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
