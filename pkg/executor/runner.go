package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qaforge/healrunner/pkg/config"
	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/element"
	"github.com/qaforge/healrunner/pkg/logger"
	"github.com/qaforge/healrunner/pkg/report"
	"github.com/qaforge/healrunner/pkg/resolver"
	"github.com/qaforge/healrunner/pkg/testcase"
)

// RunnerConfig configures a suite run.
type RunnerConfig struct {
	// Engine knobs (retry budget, backoff, deadlines, pool width).
	Engine config.Engine

	// Repeats replays the whole suite this many times. Values above 1
	// enable flakiness confirmation: divergence across runs marks a
	// case globally flaky.
	Repeats int

	// Live progress callbacks.
	OnCaseStart func(run, idx, total int, id string)
	OnCaseEnd   func(run int, id string, status core.VerdictStatus, durationMs int64)
}

// Runner executes a suite of independent test cases over one driver
// and one shared candidate store.
type Runner struct {
	cfg    RunnerConfig
	driver core.Driver
	store  *element.Store
}

// New creates a Runner.
func New(driver core.Driver, store *element.Store, cfg RunnerConfig) *Runner {
	return &Runner{cfg: cfg, driver: driver, store: store}
}

// Run executes every case Repeats times and returns the aggregated
// session report. Within one repeat, cases run concurrently up to the
// configured pool width; repeats run back to back so a replay observes
// the candidate timestamps the previous run left behind. The report
// always carries a verdict for every submitted case, deadline or not.
//
// When the driver implements core.SessionDriver, every case gets its
// own session; otherwise all cases share the driver, which must then
// be safe for concurrent use (the mock driver is).
func (r *Runner) Run(ctx context.Context, cases []testcase.TestCase) *report.SessionReport {
	var shared *Orchestrator
	if _, ok := r.driver.(core.SessionDriver); !ok {
		shared = r.orchestratorFor(r.driver)
	}

	agg := report.NewAggregator()

	repeats := r.cfg.Repeats
	if repeats < 1 {
		repeats = 1
	}
	for run := 0; run < repeats; run++ {
		r.runOnce(ctx, run, cases, shared, agg)
	}

	return agg.Report()
}

// orchestratorFor builds the resolve/execute chain over one driver.
// The candidate store stays shared, so a healed selector in one
// session benefits every other case.
func (r *Runner) orchestratorFor(drv core.Driver) *Orchestrator {
	eng := r.cfg.Engine
	res := resolver.New(drv, r.store, resolver.Config{
		ProbeTimeout: eng.ProbeTimeout(),
		Freshness:    eng.FreshnessWindow(),
	})
	exec := NewExecutor(drv, res, Config{
		MaxRetries:  eng.MaxRetries,
		BackoffBase: eng.BackoffBase(),
		BackoffCap:  eng.BackoffCap(),
	})
	return NewOrchestrator(exec, r.store, eng.CaseDeadline())
}

// runOnce executes one pass over all cases with a bounded worker pool.
// Cases share no mutable state beyond the candidate store, whose
// timestamp updates commute, so no further coordination is needed.
// With a nil shared orchestrator each case opens its own session.
func (r *Runner) runOnce(ctx context.Context, run int, cases []testcase.TestCase, shared *Orchestrator, agg *report.Aggregator) {
	width := r.cfg.Engine.MaxConcurrentTestCases
	if width < 1 {
		width = 1
	}

	verdicts := make([]core.TestVerdict, len(cases))
	sem := make(chan struct{}, width)
	var wg sync.WaitGroup

	for i := range cases {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			tc := cases[idx]
			if r.cfg.OnCaseStart != nil {
				r.cfg.OnCaseStart(run, idx, len(cases), tc.ID)
			}

			orch := shared
			if orch == nil {
				sess, closeSess, err := r.driver.(core.SessionDriver).NewSession(ctx)
				if err != nil {
					logger.Error("runner: open session for %s: %v", tc.ID, err)
					v := core.TestVerdict{
						CaseID:    tc.ID,
						Name:      tc.Name,
						Status:    core.VerdictFail,
						Error:     fmt.Sprintf("open session: %v", err),
						StartTime: time.Now(),
					}
					verdicts[idx] = v
					if r.cfg.OnCaseEnd != nil {
						r.cfg.OnCaseEnd(run, tc.ID, v.Status, 0)
					}
					return
				}
				defer closeSess()
				orch = r.orchestratorFor(sess)
			}

			v := orch.RunCase(ctx, tc)
			verdicts[idx] = v

			if r.cfg.OnCaseEnd != nil {
				r.cfg.OnCaseEnd(run, tc.ID, v.Status, v.Duration.Milliseconds())
			}
		}(i)
	}
	wg.Wait()

	// Feed the aggregator in declaration order so the report is stable
	// regardless of scheduling.
	for _, v := range verdicts {
		agg.Add(v)
	}
}
