// Package executor runs test cases: it wraps single actions with
// retry/backoff, sequences them per case, and fans independent cases
// out over a bounded worker pool.
package executor

import (
	"context"
	"time"

	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/logger"
	"github.com/qaforge/healrunner/pkg/resolver"
	"github.com/qaforge/healrunner/pkg/testcase"
)

// evidenceTimeout bounds best-effort evidence capture after a failure,
// whose own context may already be dead.
const evidenceTimeout = 5 * time.Second

// Config configures the per-action retry loop.
type Config struct {
	// MaxRetries caps retries beyond the first attempt.
	MaxRetries int

	// BackoffBase is the initial retry wait; each retry doubles it.
	BackoffBase time.Duration

	// BackoffCap is the ceiling on exponential growth.
	BackoffCap time.Duration
}

// Executor executes one action at a time: resolve, act, retry with
// exponential backoff on transient failure.
type Executor struct {
	driver   core.Driver
	resolver *resolver.Resolver
	cfg      Config
}

// NewExecutor creates an Executor.
func NewExecutor(driver core.Driver, res *resolver.Resolver, cfg Config) *Executor {
	return &Executor{driver: driver, resolver: res, cfg: cfg}
}

// Execute runs one action to a terminal ActionResult.
//
// The retry unit is "wait, then re-resolve and re-act": both an
// unresolved outcome and a post-resolution driver failure re-enter the
// same loop, because in a live DOM the usual root cause of either is a
// page that is still mutating. Only budget exhaustion or the context
// deadline produces a failed result.
func (e *Executor) Execute(ctx context.Context, step testcase.Step) core.ActionResult {
	start := time.Now()
	res := core.ActionResult{
		Kind:      step.Kind,
		TargetID:  step.Target,
		Value:     step.Value,
		StartTime: start,
	}

	var lastKind core.ErrorKind
	var lastErr error

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := e.backoff(ctx, attempt-1); err != nil {
				return e.fail(res, core.ErrKindDeadlineExceeded,
					core.ErrDeadlineExceeded.WithCause(err), attempt-1, start)
			}
			logger.Debug("executor: retry %d/%d for %s %s", attempt, e.cfg.MaxRetries, step.Kind, step.Target)
		}

		var outcome *core.ResolutionOutcome
		if step.Kind.NeedsTarget() {
			outcome = e.resolver.Resolve(ctx, step.Target)
			res.Resolution = outcome
			if !outcome.Status.Usable() {
				if ctx.Err() != nil {
					return e.fail(res, core.ErrKindDeadlineExceeded,
						core.ErrDeadlineExceeded.WithCause(ctx.Err()), attempt, start)
				}
				lastKind = core.ErrKindResolutionTimeout
				lastErr = core.ErrAllCandidatesMissed
				continue
			}
		}

		var err error
		switch step.Kind {
		case core.ActionFill:
			err = e.driver.Fill(ctx, outcome.Locator, step.Value)
		case core.ActionClick:
			err = e.driver.Click(ctx, outcome.Locator)
		case core.ActionNavigate:
			err = e.driver.Navigate(ctx, step.Value)
		case core.ActionAssert:
			// Resolution succeeding is the assertion.
		}
		if err != nil {
			if ctx.Err() != nil {
				return e.fail(res, core.ErrKindDeadlineExceeded,
					core.ErrDeadlineExceeded.WithCause(ctx.Err()), attempt, start)
			}
			lastKind = core.ErrKindActionError
			lastErr = err
			continue
		}

		res.RetryCount = attempt
		res.Status = core.ActionSuccess
		if attempt > 0 {
			res.Status = core.ActionRetriedSuccess
		}
		res.Duration = time.Since(start)
		return res
	}

	return e.fail(res, lastKind, lastErr, e.cfg.MaxRetries, start)
}

// fail finalizes a terminal failure and attaches best-effort evidence.
func (e *Executor) fail(res core.ActionResult, kind core.ErrorKind, err error, retries int, start time.Time) core.ActionResult {
	res.Status = core.ActionFailed
	res.ErrorKind = kind
	if err != nil {
		res.Error = err.Error()
	}
	res.RetryCount = retries
	res.Duration = time.Since(start)

	evCtx, cancel := context.WithTimeout(context.Background(), evidenceTimeout)
	defer cancel()
	if ref, evErr := e.driver.CaptureEvidence(evCtx); evErr != nil {
		logger.Warn("executor: evidence capture failed for %s %s: %v", res.Kind, res.TargetID, evErr)
	} else {
		res.Evidence = ref
	}

	logger.Info("executor: %s %s failed (%s) after %d retries: %s",
		res.Kind, res.TargetID, kind, retries, res.Error)
	return res
}

// backoff waits base << n capped at BackoffCap, or returns early with
// the context error if the deadline fires during the wait.
func (e *Executor) backoff(ctx context.Context, n int) error {
	d := e.cfg.BackoffBase << uint(n)
	if e.cfg.BackoffCap > 0 && d > e.cfg.BackoffCap {
		d = e.cfg.BackoffCap
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
