package patterns

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares inbound text for pattern matching. Scam messages
// frequently arrive dressed in compatibility characters (fullwidth digits,
// styled letters) that would slip past ASCII regexes; NFKC folds them back
// to their plain forms. Zero-width characters are dropped outright.
func Normalize(text string) string {
	folded := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		return r
	}, folded)
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitsAndPlus strips everything but ASCII digits and plus signs.
// Used for phone normalization where the country-code prefix matters.
func DigitsAndPlus(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidAccountNumber reports whether a digits-only candidate is within the
// accepted bank-account length range.
func ValidAccountNumber(digits string) bool {
	return len(digits) >= MinAccountDigits && len(digits) <= MaxAccountDigits
}

// ValidPhoneNumber reports whether a normalized phone candidate carries
// enough digits to be a dialable number.
func ValidPhoneNumber(normalized string) bool {
	return len(DigitsOnly(normalized)) >= MinPhoneDigits
}
