package utils

import "strings"

// MobileLength is the number of digits in a canonical mobile number
const MobileLength = 10

// NormalizeMobile reduces a free-text mobile number to its canonical digits.
// Non-digits are dropped, then a leading "91" country code (12 digits) or a
// leading trunk "0" (11 digits) is removed. The result is not guaranteed to
// be valid; use IsValidMobile.
func NormalizeMobile(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == MobileLength+2 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == MobileLength+1 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}

// IsValidMobile reports whether s is a canonical 10-digit mobile number
func IsValidMobile(s string) bool {
	if len(s) != MobileLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
