package core

import (
	"time"
)

// ResolutionOutcome records how one resolution attempt against the live
// page ended. Created once per attempt, never mutated afterwards.
type ResolutionOutcome struct {
	Status ResolutionStatus `json:"status"`

	// Locator is the winning candidate's locator expression. Empty when
	// unresolved.
	Locator string `json:"locator,omitempty"`

	// Rank is the winning candidate's position in the ranked order
	// (0 = top-ranked). -1 when unresolved.
	Rank int `json:"rank"`

	// Attempts is the number of candidates probed before the outcome
	// was reached.
	Attempts int `json:"attempts"`
}

// ActionResult captures the complete outcome of executing one action.
// Never mutated after creation.
type ActionResult struct {
	// Identity
	Kind     ActionKind `json:"kind"`
	TargetID string     `json:"targetId,omitempty"` // Element descriptor id; empty for navigate
	Value    string     `json:"value,omitempty"`    // Fill text or navigation URL

	// Status
	Status ActionStatus `json:"status"`
	Error  string       `json:"error,omitempty"`

	// ErrorKind classifies a terminal failure (none on success).
	ErrorKind ErrorKind `json:"errorKind"`

	// Retry tracking. RetryCount is the number of retries beyond the
	// first attempt and is always <= the configured maximum.
	RetryCount int `json:"retryCount"`

	// Resolution is the last resolution outcome observed for the
	// action's target, nil for navigate.
	Resolution *ResolutionOutcome `json:"resolution,omitempty"`

	// Evidence is a reference to the diagnostic artifact captured on
	// failure (best-effort; may be empty even for failed actions).
	Evidence string `json:"evidence,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// TestVerdict is the outcome of one run of one test case.
type TestVerdict struct {
	// Identity
	CaseID string `json:"caseId"`
	Name   string `json:"name,omitempty"`

	// Status
	Status VerdictStatus `json:"status"`
	Error  string        `json:"error,omitempty"` // First terminal failure, if any

	// Results, in execution order. Steps after the first terminal
	// failure are absent: the case aborts on first failure.
	Actions []ActionResult `json:"actions"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// VerdictFromActions derives the verdict status from action results.
// Rules:
//   - any failed action -> fail
//   - no failures, at least one retried-success -> flaky
//   - otherwise -> pass
func VerdictFromActions(actions []ActionResult) VerdictStatus {
	flaky := false
	for _, a := range actions {
		switch a.Status {
		case ActionFailed:
			return VerdictFail
		case ActionRetriedSuccess:
			flaky = true
		}
	}
	if flaky {
		return VerdictFlaky
	}
	return VerdictPass
}

// FirstFailure returns the first failed action, or nil.
func (v *TestVerdict) FirstFailure() *ActionResult {
	for i := range v.Actions {
		if v.Actions[i].Status == ActionFailed {
			return &v.Actions[i]
		}
	}
	return nil
}

// RetriedActions counts actions that needed at least one retry.
func (v *TestVerdict) RetriedActions() int {
	n := 0
	for _, a := range v.Actions {
		if a.Status == ActionRetriedSuccess {
			n++
		}
	}
	return n
}
