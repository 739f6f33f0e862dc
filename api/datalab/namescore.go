package datalab

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// NameScore rates the similarity of two client names on a 0..100 scale.
// Empty input on either side scores 0. Matching is case-folded but does no
// further normalization: names differing by diacritics or stray whitespace
// score accordingly.
func NameScore(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0
	}
	ratio := levenshtein.RatioForStrings(
		[]rune(strings.ToLower(a)),
		[]rune(strings.ToLower(b)),
		levenshtein.DefaultOptions,
	)
	return int(ratio * 100)
}
