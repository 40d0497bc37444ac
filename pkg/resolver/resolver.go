// Package resolver turns a logical element descriptor into a live
// locator, falling back through ranked candidates when the primary one
// no longer matches the page.
package resolver

import (
	"context"
	"time"

	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/element"
	"github.com/qaforge/healrunner/pkg/logger"
	"github.com/qaforge/healrunner/pkg/ranker"
)

// Config configures resolution behavior.
type Config struct {
	// ProbeTimeout is the per-candidate existence-check timeout. Kept
	// short: the meaningful retry unit is "wait, then re-probe the
	// whole ranked list", which belongs to the executor.
	ProbeTimeout time.Duration

	// Freshness is the recency-bonus window the ranker applies to
	// candidates that resolved recently.
	Freshness time.Duration
}

// Resolver probes ranked candidates against the live page.
type Resolver struct {
	driver core.Driver
	store  *element.Store
	cfg    Config

	// now is a clock hook for tests.
	now func() time.Time
}

// New creates a Resolver bound to a driver and a candidate store.
func New(driver core.Driver, store *element.Store, cfg Config) *Resolver {
	return &Resolver{
		driver: driver,
		store:  store,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Resolve attempts each of the descriptor's candidates in ranked order
// until one existence probe succeeds. Each candidate gets exactly one
// cheap probe per call; re-probing the list after a wait is the
// executor's retry loop, not the resolver's.
//
// On success the winning candidate's last-known-good timestamp is
// recorded in the store. An unresolved outcome is not itself retryable
// here; it is reported upward.
func (r *Resolver) Resolve(ctx context.Context, id string) *core.ResolutionOutcome {
	desc, ok := r.store.Snapshot(id)
	if !ok {
		logger.Warn("resolver: unknown element %q", id)
		return &core.ResolutionOutcome{Status: core.Unresolved, Rank: -1}
	}

	now := r.now()
	ranker.Rank(&desc, now, r.cfg.Freshness)

	for i := range desc.Candidates {
		if ctx.Err() != nil {
			return &core.ResolutionOutcome{Status: core.Unresolved, Rank: -1, Attempts: i}
		}

		cand := &desc.Candidates[i]
		found, err := r.driver.Exists(ctx, cand.Locator, r.cfg.ProbeTimeout)
		if err != nil {
			// Backend-level failure. Treat as a miss for this candidate
			// and keep walking the list; a dead browser will miss them
			// all and surface as unresolved.
			logger.Debug("resolver: probe error for %q candidate %q: %v", id, cand.Locator, err)
			continue
		}
		if !found {
			continue
		}

		r.store.MarkGood(id, cand.Locator, r.now())

		status := core.Resolved
		if i > 0 {
			status = core.ResolvedWithFallback
			logger.Info("resolver: healed %q via fallback %q (rank %d)", id, cand.Locator, i)
		}
		return &core.ResolutionOutcome{
			Status:   status,
			Locator:  cand.Locator,
			Rank:     i,
			Attempts: i + 1,
		}
	}

	return &core.ResolutionOutcome{
		Status:   core.Unresolved,
		Rank:     -1,
		Attempts: len(desc.Candidates),
	}
}

// SetClock overrides the resolver's clock. Tests only.
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}
