package report

import (
	"sort"
	"sync"
	"time"

	"github.com/qaforge/healrunner/pkg/core"
)

// Aggregator accumulates verdicts across runs. It holds accumulator
// state only, scoped to one invocation: created at the start, finalized
// by Report, then discarded.
//
// Add never fails: a malformed verdict is recorded as best it can be so
// one corrupted run cannot block the rest of the session's report.
type Aggregator struct {
	mu    sync.Mutex
	start time.Time
	order []string
	byID  map[string]*caseAccum
}

type caseAccum struct {
	name       string
	runs       int
	passes     int
	fails      int
	flakyRuns  int
	retries    int
	healed     int
	durationMs int64
	kinds      map[string]struct{}
}

// NewAggregator creates an Aggregator with its clock started.
func NewAggregator() *Aggregator {
	return &Aggregator{
		start: time.Now(),
		byID:  make(map[string]*caseAccum),
	}
}

// Add records one verdict. Safe for concurrent use.
func (a *Aggregator) Add(v core.TestVerdict) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := v.CaseID
	if id == "" {
		// Malformed input: record it rather than dropping the run.
		id = "(unknown)"
	}

	acc, ok := a.byID[id]
	if !ok {
		acc = &caseAccum{kinds: make(map[string]struct{})}
		a.byID[id] = acc
		a.order = append(a.order, id)
	}
	if acc.name == "" {
		acc.name = v.Name
	}

	acc.runs++
	acc.durationMs += v.Duration.Milliseconds()

	switch v.Status {
	case core.VerdictFail:
		acc.fails++
	case core.VerdictFlaky:
		acc.passes++
		acc.flakyRuns++
	default:
		acc.passes++
	}

	for _, ar := range v.Actions {
		acc.retries += ar.RetryCount
		if ar.Resolution != nil && ar.Resolution.Status == core.ResolvedWithFallback {
			acc.healed++
		}
		if ar.Status == core.ActionFailed && ar.ErrorKind != core.ErrKindNone {
			acc.kinds[ar.ErrorKind.String()] = struct{}{}
		}
	}
}

// Report finalizes the session report.
//
// A case is globally flaky when it diverged across runs (both pass and
// fail observed) or any run passed only through retries. A case that
// failed every run is consistently broken, not flaky.
func (a *Aggregator) Report() *SessionReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	rep := &SessionReport{
		Version:   Version,
		StartTime: a.start,
		EndTime:   time.Now(),
	}

	for _, id := range a.order {
		acc := a.byID[id]

		kinds := make([]string, 0, len(acc.kinds))
		for k := range acc.kinds {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		flaky := (acc.passes > 0 && acc.fails > 0) || acc.flakyRuns > 0

		rep.Cases = append(rep.Cases, CaseReport{
			ID:                id,
			Name:              acc.name,
			Runs:              acc.runs,
			Passes:            acc.passes,
			Fails:             acc.fails,
			FlakyRuns:         acc.flakyRuns,
			Flaky:             flaky,
			FailureKinds:      kinds,
			Retries:           acc.retries,
			HealedResolutions: acc.healed,
			TotalDurationMs:   acc.durationMs,
		})

		rep.TotalCases++
		switch {
		case flaky:
			rep.Flaky++
		case acc.fails > 0:
			rep.Failed++
		default:
			rep.Passed++
		}
	}

	return rep
}
