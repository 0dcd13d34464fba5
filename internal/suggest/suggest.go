// ABOUTME: "Did you mean" suggestions for mistyped module names
// ABOUTME: Thin wrapper over sahilm/fuzzy with a prefix fallback for short inputs

package suggest

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultLimit caps the number of suggestions returned by Names.
const DefaultLimit = 3

// Match is a single ranked candidate.
type Match struct {
	Str   string
	Index int
	Score int
}

// Find ranks candidates against input, best first.
func Find(input string, candidates []string) []Match {
	results := fuzzy.Find(strings.ToLower(input), candidates)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{Str: r.Str, Index: r.Index, Score: r.Score}
	}
	return matches
}

// Names returns up to limit candidate names resembling input. An exact match
// yields nothing: there is nothing to suggest. limit <= 0 means DefaultLimit.
func Names(input string, candidates []string, limit int) []string {
	if input == "" || len(candidates) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	for _, c := range candidates {
		if c == input {
			return nil
		}
	}

	var out []string
	for _, m := range Find(input, candidates) {
		out = append(out, m.Str)
		if len(out) == limit {
			return out
		}
	}
	if len(out) > 0 {
		return out
	}

	// Fuzzy matching needs every input rune in order; a typo like "vt" for
	// "vr" misses, so fall back to a shared first letter.
	for _, c := range candidates {
		if c[0] == input[0] {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Hint formats suggestions for an error message, or "" when there are none.
func Hint(input string, candidates []string) string {
	names := Names(input, candidates, DefaultLimit)
	if len(names) == 0 {
		return ""
	}
	return "did you mean " + strings.Join(names, ", ") + "?"
}
