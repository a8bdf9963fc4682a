package validators

import "strings"

// SanitizeString trims surrounding whitespace from free-text input such as
// void reasons and caps it at maxLen bytes. maxLen <= 0 leaves the length
// unbounded.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
