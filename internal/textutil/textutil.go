// Package textutil provides pure string helpers shared by the extractors
// and the key-file matcher: whitespace normalization, case-insensitive
// comparison and a normalized edit-distance similarity.
package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Normalize collapses runs of whitespace and tabs to single spaces and trims
// leading/trailing whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LooseEquals compares two strings after normalizing and lower-casing both.
func LooseEquals(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// Similarity returns a score in [0,1] based on the Levenshtein distance
// between the normalized, lower-cased inputs: 1 means identical, 0 means
// nothing in common. Intended for fuzzy file-name matching only, not for
// correctness-critical comparisons.
func Similarity(a, b string) float64 {
	a = strings.ToLower(Normalize(a))
	b = strings.ToLower(Normalize(b))
	if a == b {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
