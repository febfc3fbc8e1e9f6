package check

import (
	"github.com/agext/levenshtein"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// maxSuggestionDistance is the largest edit distance still worth suggesting.
const maxSuggestionDistance = 3

// nameSuggestion returns the candidate closest to given, or "" when none is
// close enough. Ties go to the earliest candidate.
func nameSuggestion(given string, candidates []string) string {
	best := ""
	bestDist := maxSuggestionDistance
	for _, candidate := range candidates {
		if candidate == given {
			continue
		}
		if dist := levenshtein.Distance(given, candidate, nil); dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	return best
}

// withSuggestion attaches a "did you mean" hint when enabled and a close
// candidate exists. The error kind is unchanged.
func (o *options) withSuggestion(err error, given string, candidates func() []string) error {
	if !o.suggestions || given == "" {
		return err
	}
	if s := nameSuggestion(given, candidates()); s != "" {
		return errors.WithHintf(err, "did you mean %q?", s)
	}
	return err
}
