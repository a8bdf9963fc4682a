package uniqueness

import "strings"

// Normalize canonicalizes a business code: trim, collapse inner whitespace,
// uppercase. Values made only of wildcard placeholders ("*", "**", ...)
// normalize to empty, so they never reach the ledger.
func Normalize(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.ToUpper(strings.Join(fields, " "))
	if strings.Trim(joined, "*") == "" {
		return ""
	}
	return joined
}

// SplitMulti splits a slash-separated multi-value field into normalized
// parts, dropping blanks and wildcards.
func SplitMulti(value string) []string {
	parts := strings.Split(value, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if normalized := Normalize(part); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

// JoinMulti renders normalized parts back into the slash-separated form.
func JoinMulti(parts []string) string {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if normalized := Normalize(part); normalized != "" {
			clean = append(clean, normalized)
		}
	}
	return strings.Join(clean, "/")
}
