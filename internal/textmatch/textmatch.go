// Package textmatch implements the vessel search policy shared by every
// query: a substring match on the numeric id, or a bounded-edit-distance
// match on the vessel name.
package textmatch

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// MaxDistance caps the name tolerance regardless of term length.
const MaxDistance = 3

// Threshold is the edit distance allowed for a search term: one edit per
// four characters plus one, never more than MaxDistance.
func Threshold(term string) int {
	return min(MaxDistance, utf8.RuneCountInString(term)/4+1)
}

// Matcher holds a prepared search term.
type Matcher struct {
	term      string
	lower     string
	threshold int
}

func NewMatcher(term string) *Matcher {
	term = strings.TrimSpace(term)
	return &Matcher{
		term:      term,
		lower:     strings.ToLower(term),
		threshold: Threshold(term),
	}
}

// Empty matchers accept everything.
func (m *Matcher) Empty() bool {
	return m.term == ""
}

func (m *Matcher) Matches(id int64, name string) bool {
	if m.Empty() {
		return true
	}
	if strings.Contains(strconv.FormatInt(id, 10), m.term) {
		return true
	}
	if name == "" {
		return false
	}
	return levenshtein.ComputeDistance(strings.ToLower(name), m.lower) <= m.threshold
}

// Matches is a convenience for one-off checks.
func Matches(term string, id int64, name string) bool {
	return NewMatcher(term).Matches(id, name)
}
