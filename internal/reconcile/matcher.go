package reconcile

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultMatchThreshold accepts edition-suffixed variants of the same
// title ("game" vs "game definitive edition" scores 1.0 on the
// token-set path) while keeping unrelated short titles apart.
const DefaultMatchThreshold = 0.85

// Match is the result of a successful candidate match.
type Match struct {
	Index int
	Score float64
}

// Matcher scores a query title against candidate titles and picks the
// best one above a similarity threshold. Inputs are expected to be
// normalized (NormalizeTitle); the matcher never returns an error,
// absence of a match is a normal outcome.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher. Thresholds outside (0, 1] fall back to
// the default.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{threshold: threshold}
}

// BestMatch returns the best-scoring candidate index, or ok=false when
// the pool is empty, the query is empty, or no candidate reaches the
// threshold. Exact score ties prefer the candidate whose length is
// closest to the query, then the lexicographically smaller one, so
// results are deterministic regardless of pool order.
func (m *Matcher) BestMatch(query string, candidates []string) (Match, bool) {
	if query == "" || len(candidates) == 0 {
		return Match{Index: -1}, false
	}

	best := Match{Index: -1}
	for i, candidate := range candidates {
		score := Similarity(query, candidate)
		if score < m.threshold {
			continue
		}
		switch {
		case best.Index == -1 || score > best.Score:
			best = Match{Index: i, Score: score}
		case score == best.Score && tieBreak(query, candidate, candidates[best.Index]):
			best = Match{Index: i, Score: score}
		}
	}

	return best, best.Index >= 0
}

// tieBreak reports whether challenger beats incumbent on an exact
// score tie. Lengths are counted in runes, like ratio, so multi-byte
// titles compare the same way they score.
func tieBreak(query, challenger, incumbent string) bool {
	lq := len([]rune(query))
	dc := absInt(len([]rune(challenger)) - lq)
	di := absInt(len([]rune(incumbent)) - lq)
	if dc != di {
		return dc < di
	}
	return challenger < incumbent
}

// Similarity computes a token-aware similarity in [0, 1] between two
// normalized titles. It takes the maximum of a plain edit-distance
// ratio and a token-set ratio, so word order and edition suffixes do
// not mask a match.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	plain := ratio(a, b)
	if ts := tokenSetRatio(a, b); ts > plain {
		return ts
	}
	return plain
}

// ratio is 1 - dist/maxLen over runes.
func ratio(a, b string) float64 {
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

// tokenSetRatio compares the sorted token intersection against each
// side's full sorted token set and takes the best pairwise ratio. A
// title that is a token subset of the other scores 1.0.
func tokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	inter, onlyA, onlyB := splitTokens(ta, tb)
	if len(inter) == 0 {
		return 0
	}

	s0 := strings.Join(inter, " ")
	s1 := strings.TrimSpace(s0 + " " + strings.Join(onlyA, " "))
	s2 := strings.TrimSpace(s0 + " " + strings.Join(onlyB, " "))

	best := ratio(s0, s1)
	if r := ratio(s0, s2); r > best {
		best = r
	}
	if r := ratio(s1, s2); r > best {
		best = r
	}
	return best
}

// tokenSet splits a normalized title into sorted unique tokens.
func tokenSet(s string) []string {
	fields := strings.Fields(s)
	seen := make(map[string]struct{}, len(fields))
	tokens := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	sort.Strings(tokens)
	return tokens
}

// splitTokens partitions two sorted token sets into intersection and
// per-side remainders, all sorted.
func splitTokens(a, b []string) (inter, onlyA, onlyB []string) {
	inB := make(map[string]struct{}, len(b))
	for _, t := range b {
		inB[t] = struct{}{}
	}
	inInter := make(map[string]struct{})
	for _, t := range a {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
			inInter[t] = struct{}{}
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if _, ok := inInter[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	return inter, onlyA, onlyB
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
