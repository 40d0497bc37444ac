package ranker

import (
	"testing"
	"time"

	"github.com/qaforge/healrunner/pkg/element"
)

func TestRankSpecificityTiers(t *testing.T) {
	d := element.Descriptor{
		ID:   "login.username",
		Role: element.RoleInput,
		Candidates: []element.SelectorCandidate{
			{Locator: "form input:nth-of-type(1)", Confidence: 0.5},
			{Locator: `input[name="user-name"]`, Confidence: 0.5},
			{Locator: "#user-name", Confidence: 0.5},
		},
	}

	Rank(&d, time.Now(), 10*time.Minute)

	want := []string{"#user-name", `input[name="user-name"]`, "form input:nth-of-type(1)"}
	for i, w := range want {
		if d.Candidates[i].Locator != w {
			t.Errorf("rank %d = %q, want %q", i, d.Candidates[i].Locator, w)
		}
	}
}

func TestRankConfidenceBreaksTier(t *testing.T) {
	// High confidence can outweigh one specificity tier (0.10 gap) but
	// the tiers dominate equal confidence.
	d := element.Descriptor{
		ID:   "login.submit",
		Role: element.RoleButton,
		Candidates: []element.SelectorCandidate{
			{Locator: `button[type="submit"]`, Confidence: 0.9}, // 0.20 + 0.9 = 1.10
			{Locator: "#login-button", Confidence: 0.7},         // 0.30 + 0.7 = 1.00
		},
	}

	Rank(&d, time.Now(), 10*time.Minute)

	if d.Candidates[0].Locator != `button[type="submit"]` {
		t.Errorf("rank 0 = %q, confidence should outweigh one tier", d.Candidates[0].Locator)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	d := element.Descriptor{
		ID:   "x",
		Role: element.RoleInput,
		Candidates: []element.SelectorCandidate{
			{Locator: "#a", Confidence: 0.5},
			{Locator: "#b", Confidence: 0.5},
			{Locator: "#c", Confidence: 0.5},
		},
	}

	for i := 0; i < 10; i++ {
		Rank(&d, time.Now(), 0)
		if d.Candidates[0].Locator != "#a" || d.Candidates[1].Locator != "#b" || d.Candidates[2].Locator != "#c" {
			t.Fatalf("iteration %d: tie broke declaration order: %v", i, locators(d))
		}
	}
}

func TestRankRecencyBonusIsWindowed(t *testing.T) {
	now := time.Now()
	d := element.Descriptor{
		ID:   "login.username",
		Role: element.RoleInput,
		Candidates: []element.SelectorCandidate{
			{Locator: "#user-name", Confidence: 0.5},
			{Locator: `input[name="user-name"]`, Confidence: 0.5, LastGood: now.Add(-time.Minute)},
		},
	}

	// Inside the window the fresh fallback overtakes the stale primary:
	// 0.20 + 0.5 + 0.15 > 0.30 + 0.5.
	Rank(&d, now, 10*time.Minute)
	if d.Candidates[0].Locator != `input[name="user-name"]` {
		t.Errorf("fresh candidate should lead inside the window, got %q", d.Candidates[0].Locator)
	}

	// Past the window the declared ranking is restored: no permanent
	// reordering from a transient success.
	later := now.Add(time.Hour)
	Rank(&d, later, 10*time.Minute)
	if d.Candidates[0].Locator != "#user-name" {
		t.Errorf("stale bonus should expire, got %q at rank 0", d.Candidates[0].Locator)
	}
}

func TestRankEmpty(t *testing.T) {
	d := element.Descriptor{ID: "x", Role: element.RoleCustom}
	Rank(&d, time.Now(), time.Minute) // Must not panic.
	if len(d.Candidates) != 0 {
		t.Error("empty stays empty")
	}
}

func TestRankDeterministicAcrossPermutations(t *testing.T) {
	mk := func(order []element.SelectorCandidate) []string {
		d := element.Descriptor{ID: "x", Role: element.RoleInput, Candidates: order}
		Rank(&d, time.Time{}, 0)
		return locators(d)
	}

	a := element.SelectorCandidate{Locator: "#a", Confidence: 0.9}
	b := element.SelectorCandidate{Locator: `input[name="b"]`, Confidence: 0.6}
	c := element.SelectorCandidate{Locator: "div input", Confidence: 0.3}

	first := mk([]element.SelectorCandidate{a, b, c})
	second := mk([]element.SelectorCandidate{c, a, b})
	third := mk([]element.SelectorCandidate{b, c, a})

	for i := range first {
		if first[i] != second[i] || first[i] != third[i] {
			t.Fatalf("permutation changed ranking: %v / %v / %v", first, second, third)
		}
	}
}

func TestSpecificityRoleAware(t *testing.T) {
	now := time.Time{}
	link := &element.SelectorCandidate{Locator: `a[href="/cart"]`}
	if got := Score(element.RoleLink, link, now, 0); got != weightNameLabel {
		t.Errorf("link href score = %v, want name tier %v", got, weightNameLabel)
	}
	if got := Score(element.RoleCustom, link, now, 0); got != weightStructural {
		t.Errorf("href on custom role = %v, want structural tier %v", got, weightStructural)
	}

	testid := &element.SelectorCandidate{Locator: `[data-testid="submit"]`}
	if got := Score(element.RoleButton, testid, now, 0); got != weightID {
		t.Errorf("data-testid score = %v, want id tier %v", got, weightID)
	}
}

func locators(d element.Descriptor) []string {
	out := make([]string, len(d.Candidates))
	for i, c := range d.Candidates {
		out[i] = c.Locator
	}
	return out
}
