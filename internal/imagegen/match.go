package imagegen

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// matchCutoff is the minimum edit similarity for a fuzzy hit. Inputs that
// score below it against every candidate fall back to the default.
const matchCutoff = 0.6

// closestMatch resolves a free-text value against a fixed candidate list.
// Empty input and the literal word "none" short-circuit to the default.
// An exact match is returned as-is; otherwise the best case-insensitive
// fuzzy match above the cutoff wins, keeping the candidate's casing. The
// second return reports whether anything (exact or fuzzy) matched, so the
// caller can log misses.
func closestMatch(input string, candidates []string, def string) (string, bool) {
	if input == "" || strings.EqualFold(input, "none") {
		return def, true
	}

	for _, c := range candidates {
		if c == input {
			return c, true
		}
	}

	needle := strings.ToLower(strings.TrimSpace(input))
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := similarity(needle, strings.ToLower(c))
		if score >= matchCutoff && score > bestScore {
			best = c
			bestScore = score
		}
	}
	if best != "" {
		return best, true
	}

	return def, false
}

// similarity is a normalized edit similarity in [0, 1]: 1 minus the
// Levenshtein distance divided by the longer string's rune length.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
