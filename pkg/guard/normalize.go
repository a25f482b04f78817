package guard

import "strings"

// CanonicalToolName maps a raw tool identifier to the canonical form used
// for logging, hook matching, and coach evaluation: lowercase, runs of
// non-alphanumerics collapsed to a single underscore. The same canonical
// name is handed to the coach and to the hook chain, so pattern rules and
// hook filters always agree on naming. Never fails; an empty or unusable
// input yields the "tool" placeholder.
func CanonicalToolName(raw string) string {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return "tool"
	}

	var b strings.Builder
	b.Grow(len(trimmed))

	lastUnderscore := false
	for i := 0; i < len(trimmed); i++ {
		ch := trimmed[i]
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isAlphaNum {
			b.WriteByte(ch)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "tool"
	}
	return s
}
