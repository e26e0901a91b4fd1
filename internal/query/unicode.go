package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldCaser implements Unicode case folding via golang.org/x/text, used
// instead of stdlib strings.ToLower (which the teacher's own fuzzyMatch
// relied on, but which is ASCII-biased) whenever a case-insensitive plain
// token contains non-ASCII text, per spec §4.6.
var foldCaser = cases.Fold()

// matchUnicodeFold reports whether needle occurs in haystack after both
// sides are NFC-normalised and case-folded, a stable substring match for
// non-ASCII text.
func matchUnicodeFold(haystack []byte, needle string) bool {
	h := foldCaser.String(norm.NFC.String(string(haystack)))
	n := foldCaser.String(norm.NFC.String(needle))
	return strings.Contains(h, n)
}
