// Package element holds the logical element descriptors and their
// selector candidates the engine resolves against the live page.
package element

import (
	"time"
)

// Role is the human role tag of a logical element.
type Role string

// Role values (closed set).
const (
	RoleInput    Role = "input"
	RoleButton   Role = "button"
	RoleLink     Role = "link"
	RoleCheckbox Role = "checkbox"
	RoleCustom   Role = "custom"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleInput, RoleButton, RoleLink, RoleCheckbox, RoleCustom:
		return true
	}
	return false
}

// SelectorCandidate is one concrete locator expression for a logical
// element. Candidates are never deleted, only deprioritized: a site
// reverting a DOM change must not permanently orphan a selector.
type SelectorCandidate struct {
	// Locator is the concrete locator expression (CSS selector).
	Locator string `yaml:"locator"`

	// Confidence is the static confidence score in [0,1] assigned by
	// the upstream crawler/classifier.
	Confidence float64 `yaml:"confidence"`

	// LastGood is the last time this candidate resolved successfully.
	// Zero means never. Updated only through Store.MarkGood.
	LastGood time.Time `yaml:"-"`

	// Score is the composite ranking score, recomputed by the ranker
	// before every resolution. Not meaningful outside a ranked slice.
	Score float64 `yaml:"-"`
}

// Fresh reports whether the candidate resolved successfully within the
// freshness window ending at now.
func (c *SelectorCandidate) Fresh(now time.Time, window time.Duration) bool {
	if c.LastGood.IsZero() || window <= 0 {
		return false
	}
	return now.Sub(c.LastGood) <= window
}

// Descriptor is the logical, driver-independent identity of a UI
// element plus its ordered candidate locators. Produced upstream;
// immutable inside the engine except for last-known-good updates.
type Descriptor struct {
	// ID is the stable logical identity, e.g. "login.username".
	ID string `yaml:"id"`

	// Role is the human role tag.
	Role Role `yaml:"role"`

	// Candidates in declaration order. Declaration order is the
	// tie-breaker for ranking, so it is preserved.
	Candidates []SelectorCandidate `yaml:"candidates"`
}

// Candidate returns a pointer to the candidate with the given locator,
// or nil.
func (d *Descriptor) Candidate(locator string) *SelectorCandidate {
	for i := range d.Candidates {
		if d.Candidates[i].Locator == locator {
			return &d.Candidates[i]
		}
	}
	return nil
}

// HasLocator reports whether the descriptor already carries the locator.
func (d *Descriptor) HasLocator(locator string) bool {
	return d.Candidate(locator) != nil
}

// clone returns a deep copy safe to rank and probe without holding the
// store lock.
func (d *Descriptor) clone() Descriptor {
	out := Descriptor{ID: d.ID, Role: d.Role}
	out.Candidates = make([]SelectorCandidate, len(d.Candidates))
	copy(out.Candidates, d.Candidates)
	return out
}
