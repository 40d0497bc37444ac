package element

import "strings"

// Universal fallback selector pools. When the upstream crawler supplies
// only a candidate or two for a common element shape, these widen the
// healing surface at low confidence so the ranker still prefers the
// crawler's own selectors.

const fallbackConfidence = 0.15

var usernameFallbacks = []string{
	`input[name="username"]`,
	`input[name*="user"]`,
	`input[name*="login"]`,
	`input[type="email"]`,
	`#username`,
	`input[placeholder*="user"]`,
	`input[placeholder*="email"]`,
}

var passwordFallbacks = []string{
	`input[name="password"]`,
	`input[type="password"]`,
	`input[name*="pass"]`,
	`#password`,
	`input[placeholder*="pass"]`,
}

var submitFallbacks = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button[class*="login"]`,
	`button[id*="login"]`,
	`[type="submit"]`,
}

// FallbacksFor returns the universal fallback pool matching the
// descriptor's role and id hints, or nil when no pool applies.
func FallbacksFor(d Descriptor) []string {
	id := strings.ToLower(d.ID)
	switch d.Role {
	case RoleInput:
		if strings.Contains(id, "pass") {
			return passwordFallbacks
		}
		if strings.Contains(id, "user") || strings.Contains(id, "email") || strings.Contains(id, "login") {
			return usernameFallbacks
		}
	case RoleButton:
		if strings.Contains(id, "login") || strings.Contains(id, "submit") || strings.Contains(id, "sign") {
			return submitFallbacks
		}
	}
	return nil
}

// ExpandFallbacks appends the applicable fallback pool to every
// descriptor in the store, skipping locators already declared. Appended
// candidates keep declaration order after the crawler's own, so they
// only ever win when everything above them misses.
func (s *Store) ExpandFallbacks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		d := s.byID[id]
		for _, loc := range FallbacksFor(*d) {
			if d.HasLocator(loc) {
				continue
			}
			d.Candidates = append(d.Candidates, SelectorCandidate{
				Locator:    loc,
				Confidence: fallbackConfidence,
			})
		}
	}
}
