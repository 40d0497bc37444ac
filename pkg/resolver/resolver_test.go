package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/driver/mock"
	"github.com/qaforge/healrunner/pkg/element"
)

func newStore(t *testing.T, descriptors ...element.Descriptor) *element.Store {
	t.Helper()
	s := element.NewStore()
	for _, d := range descriptors {
		if err := s.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func usernameDescriptor() element.Descriptor {
	return element.Descriptor{
		ID:   "login.username",
		Role: element.RoleInput,
		Candidates: []element.SelectorCandidate{
			{Locator: "#user-name", Confidence: 0.9},
			{Locator: `input[name="user-name"]`, Confidence: 0.4},
		},
	}
}

func TestResolvePrimary(t *testing.T) {
	store := newStore(t, usernameDescriptor())
	drv := mock.New(mock.Config{Present: []string{"#user-name"}})
	r := New(drv, store, Config{ProbeTimeout: 50 * time.Millisecond})

	out := r.Resolve(context.Background(), "login.username")

	if out.Status != core.Resolved {
		t.Fatalf("Status = %v, want resolved", out.Status)
	}
	if out.Locator != "#user-name" {
		t.Errorf("Locator = %q", out.Locator)
	}
	if out.Rank != 0 {
		t.Errorf("Rank = %d, want 0", out.Rank)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", out.Attempts)
	}
}

func TestResolveHealsViaFallback(t *testing.T) {
	// The page renamed #user-name; only the name-based candidate matches.
	store := newStore(t, usernameDescriptor())
	drv := mock.New(mock.Config{Present: []string{`input[name="user-name"]`}})
	r := New(drv, store, Config{ProbeTimeout: 50 * time.Millisecond})

	before := time.Now()
	out := r.Resolve(context.Background(), "login.username")

	if out.Status != core.ResolvedWithFallback {
		t.Fatalf("Status = %v, want resolved-with-fallback", out.Status)
	}
	if out.Locator != `input[name="user-name"]` {
		t.Errorf("Locator = %q", out.Locator)
	}
	if out.Rank != 1 {
		t.Errorf("Rank = %d, want 1", out.Rank)
	}
	if out.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", out.Attempts)
	}

	// The winning candidate's last-known-good must advance.
	snap, _ := store.Snapshot("login.username")
	c := snap.Candidate(`input[name="user-name"]`)
	if c == nil || c.LastGood.Before(before) {
		t.Error("fallback success did not record a last-known-good timestamp")
	}
	// The missed primary stays untouched.
	if p := snap.Candidate("#user-name"); !p.LastGood.IsZero() {
		t.Error("missed candidate should not be marked good")
	}
}

func TestResolveRecencyPromotesFallback(t *testing.T) {
	// Two id-based candidates with close confidence: the recency bonus
	// is enough to flip their order, but only inside the window.
	store := newStore(t, element.Descriptor{
		ID:   "login.username",
		Role: element.RoleInput,
		Candidates: []element.SelectorCandidate{
			{Locator: "#user-name", Confidence: 0.9},
			{Locator: "#username", Confidence: 0.8},
		},
	})
	drv := mock.New(mock.Config{Present: []string{"#username"}})
	r := New(drv, store, Config{
		ProbeTimeout: 50 * time.Millisecond,
		Freshness:    10 * time.Minute,
	})

	// First resolution heals through the fallback and records it good.
	first := r.Resolve(context.Background(), "login.username")
	if first.Status != core.ResolvedWithFallback {
		t.Fatalf("first Status = %v", first.Status)
	}

	// Within the freshness window the healed candidate ranks first, so a
	// second resolution needs only one probe.
	second := r.Resolve(context.Background(), "login.username")
	if second.Rank != 0 {
		t.Errorf("second Rank = %d, want 0 (recency boost)", second.Rank)
	}
	if second.Status != core.Resolved {
		t.Errorf("second Status = %v, want resolved", second.Status)
	}
	if second.Attempts != 1 {
		t.Errorf("second Attempts = %d, want 1", second.Attempts)
	}

	// Once the window has passed the declared order is restored.
	r.SetClock(func() time.Time { return time.Now().Add(time.Hour) })
	third := r.Resolve(context.Background(), "login.username")
	if third.Status != core.ResolvedWithFallback {
		t.Errorf("third Status = %v, want resolved-with-fallback (boost expired)", third.Status)
	}
}

func TestResolveUnresolved(t *testing.T) {
	store := newStore(t, usernameDescriptor())
	drv := mock.New(mock.Config{}) // Nothing present.
	r := New(drv, store, Config{ProbeTimeout: 10 * time.Millisecond})

	out := r.Resolve(context.Background(), "login.username")

	if out.Status != core.Unresolved {
		t.Fatalf("Status = %v, want unresolved", out.Status)
	}
	if out.Rank != -1 {
		t.Errorf("Rank = %d, want -1", out.Rank)
	}
	if out.Attempts != 2 {
		t.Errorf("Attempts = %d, want every candidate probed", out.Attempts)
	}
	if out.Locator != "" {
		t.Errorf("Locator = %q, want empty", out.Locator)
	}
}

func TestResolveUnknownID(t *testing.T) {
	store := newStore(t)
	drv := mock.New(mock.Config{})
	r := New(drv, store, Config{})

	out := r.Resolve(context.Background(), "nope")
	if out.Status != core.Unresolved || out.Rank != -1 {
		t.Errorf("unknown id: Status=%v Rank=%d", out.Status, out.Rank)
	}
	if drv.CallCount("Exists", "") != 0 {
		t.Error("unknown id should not probe the driver")
	}
}

func TestResolveCancelledContext(t *testing.T) {
	store := newStore(t, usernameDescriptor())
	drv := mock.New(mock.Config{Present: []string{"#user-name"}})
	r := New(drv, store, Config{ProbeTimeout: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := r.Resolve(ctx, "login.username")
	if out.Status != core.Unresolved {
		t.Errorf("Status = %v, want unresolved on dead context", out.Status)
	}
	if drv.CallCount("Exists", "") != 0 {
		t.Error("dead context should short-circuit before probing")
	}
}

func TestResolveProbeErrorTreatedAsMiss(t *testing.T) {
	store := newStore(t, usernameDescriptor())
	// ProbeDelay with a short per-probe context makes Exists return an
	// error; the resolver must keep walking and end unresolved, not panic.
	drv := mock.New(mock.Config{ProbeDelay: 20 * time.Millisecond})
	r := New(drv, store, Config{ProbeTimeout: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	out := r.Resolve(ctx, "login.username")
	if out.Status != core.Unresolved {
		t.Errorf("Status = %v, want unresolved", out.Status)
	}
}
