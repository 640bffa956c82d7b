// ABOUTME: Content similarity and version numbering helpers
// ABOUTME: Jaccard token similarity gates redundant autosaves

package vcs

import (
	"math"
	"strconv"
	"strings"
)

// Similarity computes the Jaccard index over the sets of lower-cased
// whitespace-delimited tokens of both contents: intersection size divided by
// union size. Two empty contents are identical (1.0).
func Similarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1.0
	}

	intersection := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}

	union := len(tokensA) + len(tokensB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(content string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(content))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// nextManualNumber returns the next whole version number after latest: manual
// commits advance to the next integer regardless of any autosave series.
func nextManualNumber(latest float64) float64 {
	return math.Floor(latest) + 1
}

// nextAutosaveNumber returns the next fractional number in the current series:
// after N the autosaves run N+0.1, N+0.2, ... Rounded to one decimal to keep
// the series exact under floating point.
func nextAutosaveNumber(latest float64) float64 {
	return math.Round(latest*10+1) / 10
}

// formatVersionNumber renders a version number the way users see it: "2" for
// whole numbers, "1.1" for autosaves.
func formatVersionNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
