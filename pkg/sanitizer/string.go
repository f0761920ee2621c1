package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize collapses internal whitespace runs to a single space,
// strips control characters and trims the ends. Used for every free-text
// field that is persisted (booking messages, rejection and termination
// reasons, names and addresses).
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// dropped
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

// Truncate cuts s to at most n runes. Free-text inputs are bounded before
// validation so oversized payloads fail predictably.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FreeText is the standard pipeline for user-entered prose.
func FreeText(s string, maxLen int) string {
	return Truncate(TrimAndNormalize(s), maxLen)
}
