// Package language normalizes language identifiers such as "english" or "arabic".
package language

import (
	"sort"
	"strings"
)

// Unknown is reported when no language could be identified.
const Unknown = "unknown"

// Supported lists the languages shipped with training corpora.
var Supported = []string{
	"english",
	"arabic",
	"german",
	"spanish",
	"french",
	"italian",
	"portuguese",
	"russian",
}

// NormalizeIdentifier lower-cases and trims a language identifier.
// Returns an empty string when the value is blank or contains characters
// other than ASCII letters, digits, "-" or "_" (identifiers double as file names).
func NormalizeIdentifier(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if !isIdentifier(trimmed) {
		return ""
	}
	return trimmed
}

// ParseList splits a comma separated list, normalizes each entry and drops
// invalid entries and duplicates while keeping first-seen order.
func ParseList(raw string) []string {
	return Dedupe(strings.Split(raw, ","))
}

// Dedupe normalizes identifiers and removes invalid entries and duplicates.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		id := NormalizeIdentifier(value)
		if id == "" {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Sorted returns a sorted copy of the normalized identifiers.
func Sorted(values []string) []string {
	out := Dedupe(values)
	sort.Strings(out)
	return out
}

func IsSupported(id string) bool {
	normalized := NormalizeIdentifier(id)
	for _, candidate := range Supported {
		if candidate == normalized {
			return true
		}
	}
	return false
}

func isIdentifier(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
