package utils

import (
	"bufio"
	"os"
	"strings"
)

// Default terms exclude non-game storefront rows (demos, betas,
// soundtracks) from import before any matching happens.
var defaultDenyTerms = []string{
	"demo",
	"beta",
	"test",
	"playtest",
	"soundtrack",
	"trailer",
	"dedicated server",
}

// Denylist filters import candidates by title keyword.
type Denylist struct {
	terms []string
}

// NewDenylist builds a denylist from the default terms plus any extras.
func NewDenylist(extra ...string) *Denylist {
	terms := make([]string, 0, len(defaultDenyTerms)+len(extra))
	terms = append(terms, defaultDenyTerms...)
	terms = append(terms, extra...)
	return &Denylist{terms: terms}
}

// LoadDenylist reads extra terms from a file, one per line, '#' for
// comments. A missing file yields the default denylist.
func LoadDenylist(path string) (*Denylist, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDenylist(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var extra []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			extra = append(extra, term)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewDenylist(extra...), nil
}

// Match checks whether a raw title contains any denylist term.
// Returns the matched term for logging.
func (d *Denylist) Match(title string) (bool, string) {
	titleLower := strings.ToLower(title)

	for _, term := range d.terms {
		if strings.Contains(titleLower, strings.ToLower(term)) {
			return true, term
		}
	}

	return false, ""
}
