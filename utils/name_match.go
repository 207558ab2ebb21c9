package utils

import (
	"strings"
	"unicode"
)

// normalizeName lowercases a name and strips punctuation so "Jean-Pierre
// Baptiste" and "jean pierre baptiste" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NamesMatch reports whether a submitted account-holder name plausibly
// belongs to the organizer. Matching is case-insensitive, ignores
// punctuation, and tolerates one name being a substring of the other
// (e.g. a middle name present on only one side).
func NamesMatch(submitted, registered string) bool {
	a := normalizeName(submitted)
	b := normalizeName(registered)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
