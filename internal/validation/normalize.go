package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes a human-entered entity name: Unicode NFC,
// trimmed, with internal whitespace runs collapsed to single spaces.
// Climber and location keys are always stored in this form so that
// "José  Pérez" and "José Pérez" hit the same record.
func NormalizeName(name string) string {
	name = norm.NFC.String(name)
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeEmail lowercases and trims an email address for index lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeValue canonicalizes a set member (skill, tag, achievement,
// attribute): NFC, trimmed, collapsed, lowercased.
func NormalizeValue(value string) string {
	return strings.ToLower(NormalizeName(value))
}

// NormalizeValues normalizes a list of set members, dropping empties and
// duplicates while preserving first-occurrence order.
func NormalizeValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := NormalizeValue(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// IsStoreKeySafe reports whether s can be embedded in a colon-separated
// store key without ambiguity.
func IsStoreKeySafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == ':' || r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
