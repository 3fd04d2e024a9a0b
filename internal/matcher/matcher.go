// Package matcher selects the best-matching answer key file for a test
// document under fuzzy naming rules, tolerating case differences, separator
// noise and misspelled key markers such as "AnserKey".
package matcher

import (
	"regexp"
	"sort"
	"strings"

	"exam-grader/internal/domain"
	"exam-grader/internal/logger"
	"exam-grader/internal/textutil"

	"go.uber.org/zap"
)

// DefaultThreshold is the minimum similarity between a test name and a
// candidate's stem for the candidate to be accepted.
const DefaultThreshold = 0.8

// keyMarkers are the trailing tokens that mark a file as an answer key.
// Candidates are compared against markers loosely so spelling variants
// ("AnserKey") still strip.
var keyMarkers = []string{"answerkey", "answer", "answers", "anserkey", "key", "letter"}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Matcher scores candidate key file names against a test file name.
type Matcher struct {
	threshold float64
}

// New creates a Matcher with the given similarity threshold. A non-positive
// threshold selects the default.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// BestMatch returns the candidate base name that best matches the test base
// name, or a NO_KEY_MATCH error when no candidate reaches the threshold.
// Ties are broken by shortest candidate name, then lexicographic order, so
// the result is deterministic for any candidate ordering.
func (m *Matcher) BestMatch(testName string, candidates []string) (string, error) {
	testNorm := normalizeName(testName)
	if testNorm == "" || len(candidates) == 0 {
		return "", domain.NewNoKeyMatchError(testName)
	}

	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		candNorm := normalizeName(cand)
		if candNorm == "" {
			continue
		}
		score := textutil.Similarity(testNorm, m.stripKeyMarkers(candNorm))
		if candNorm == testNorm {
			score = 1.0
		}
		ranked = append(ranked, scored{name: cand, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if len(ranked[i].name) != len(ranked[j].name) {
			return len(ranked[i].name) < len(ranked[j].name)
		}
		return ranked[i].name < ranked[j].name
	})

	if len(ranked) == 0 || ranked[0].score < m.threshold {
		best := 0.0
		if len(ranked) > 0 {
			best = ranked[0].score
		}
		logger.Get().Info("no key file matched",
			zap.String("test", testName),
			zap.Float64("best_score", best),
			zap.Float64("threshold", m.threshold),
		)
		return "", domain.NewNoKeyMatchError(testName)
	}
	return ranked[0].name, nil
}

// normalizeName strips the extension, lower-cases and collapses runs of
// non-alphanumeric characters to a single separator.
func normalizeName(name string) string {
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	name = nonAlnumRe.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(name, "_")
}

// stripKeyMarkers removes trailing key-marker tokens from a normalized
// candidate name, leaving the stem that names the test itself.
func (m *Matcher) stripKeyMarkers(norm string) string {
	tokens := strings.Split(norm, "_")
	for len(tokens) > 1 && m.isKeyMarker(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, "_")
}

// isKeyMarker accepts exact markers and near misses; the matcher's own
// threshold bounds how far a misspelling may drift.
func (m *Matcher) isKeyMarker(token string) bool {
	for _, marker := range keyMarkers {
		if token == marker || textutil.Similarity(token, marker) >= m.threshold {
			return true
		}
	}
	return false
}
