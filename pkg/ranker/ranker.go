// Package ranker orders selector candidates by static signals before
// any execution. It is pure: no I/O, no side effects beyond recomputing
// the Score field of the slice it is handed, and it never fails.
package ranker

import (
	"sort"
	"strings"
	"time"

	"github.com/qaforge/healrunner/pkg/element"
)

// Specificity weights. An id-based locator outranks a name/label-based
// one, which outranks a structural/positional one, independent of the
// upstream confidence score.
const (
	weightID         = 0.30
	weightNameLabel  = 0.20
	weightStructural = 0.10

	// recencyBonus is the time-windowed boost for a candidate that
	// resolved recently. Deliberately smaller than one specificity
	// tier: a fallback's success boosts it within the freshness window
	// but never permanently reorders it above the declared ranking.
	recencyBonus = 0.15
)

// Rank sorts the descriptor's candidates in place, descending by
// composite score. The sort is stable, so ties keep declaration order
// and identical input always yields identical output. An empty
// candidate list is a valid input and yields an empty ordering.
//
// Callers rank a store snapshot, never the store's own slice.
func Rank(d *element.Descriptor, now time.Time, freshness time.Duration) {
	for i := range d.Candidates {
		c := &d.Candidates[i]
		c.Score = Score(d.Role, c, now, freshness)
	}
	sort.SliceStable(d.Candidates, func(i, j int) bool {
		return d.Candidates[i].Score > d.Candidates[j].Score
	})
}

// Score computes the composite score for one candidate: specificity
// weight + upstream confidence + recency bonus.
func Score(role element.Role, c *element.SelectorCandidate, now time.Time, freshness time.Duration) float64 {
	score := specificity(role, c.Locator) + c.Confidence
	if c.Fresh(now, freshness) {
		score += recencyBonus
	}
	return score
}

// specificity classifies a locator expression into one of three
// specificity tiers. The classification is role-aware: attributes that
// identify an element of the given role count as name/label evidence
// even when they are not literal name attributes.
func specificity(role element.Role, locator string) float64 {
	l := strings.ToLower(locator)

	if isIDBased(l) {
		return weightID
	}
	if isNameBased(role, l) {
		return weightNameLabel
	}
	return weightStructural
}

func isIDBased(l string) bool {
	if strings.HasPrefix(l, "#") {
		return true
	}
	return strings.Contains(l, "[id=") || strings.Contains(l, "[id*=") ||
		strings.Contains(l, "[data-testid") || strings.Contains(l, "[data-test=")
}

func isNameBased(role element.Role, l string) bool {
	switch {
	case strings.Contains(l, "[name"),
		strings.Contains(l, "[placeholder"),
		strings.Contains(l, "[aria-label"),
		strings.Contains(l, "[for="),
		strings.Contains(l, ":has-text("),
		strings.Contains(l, "[value"):
		return true
	}
	// Role-aware: a type attribute pins down inputs, checkboxes, and
	// submit buttons nearly as well as a name does.
	if strings.Contains(l, "[type=") {
		switch role {
		case element.RoleInput, element.RoleCheckbox, element.RoleButton:
			return true
		}
	}
	// Links are identified by their target.
	if role == element.RoleLink && strings.Contains(l, "[href") {
		return true
	}
	return false
}
