// Package reconcile implements the library reconciliation core: title
// normalization, fuzzy candidate matching, platform classification,
// entry grouping and the dedup/merge planner. Everything here is pure
// and synchronous; persistence and catalog lookups live elsewhere.
package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// specialGlyphs are stripped before compatibility decomposition:
// NFKD would otherwise expand ™ into the letters "TM" and leak them
// into the normalized title.
var specialGlyphs = runes.Predicate(func(r rune) bool {
	switch r {
	case '™', '©', '®', '℠', '$', '€', '£', '¥', '•', '…':
		return true
	}
	return false
})

// foldMarks strips the glyphs, then decomposes accented runes and
// drops the combining marks, so "Pokémon" and "Pokemon" normalize
// identically.
var foldMarks = transform.Chain(runes.Remove(specialGlyphs), norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle canonicalizes a free-text game title for comparison:
// trademark, copyright and currency glyphs are stripped along with
// every other non-alphanumeric character, whitespace is collapsed to
// single spaces, and the result is lowercased and trimmed.
//
// The function is pure and locale-independent; normalizing twice
// yields the same string. An all-symbol input normalizes to "" and
// callers must treat that as unmatchable.
func NormalizeTitle(raw string) string {
	folded, _, err := transform.String(foldMarks, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
		// ™ © ® : - and friends are dropped entirely
	}
	return b.String()
}
