// Package report aggregates test verdicts across one or more runs into
// a structured session report with per-case flakiness classification.
package report

import "time"

// Version is the report schema version.
const Version = "1.0.0"

// CaseReport is the aggregate for one distinct test case id.
type CaseReport struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	// Runs observed across all repeats.
	Runs   int `json:"runs"`
	Passes int `json:"passes"`
	Fails  int `json:"fails"`

	// FlakyRuns counts runs that passed only via retries.
	FlakyRuns int `json:"flakyRuns"`

	// Flaky is the confirmed global property: the case was observed
	// both passing and failing across runs, or needed retries to pass.
	Flaky bool `json:"flaky"`

	// FailureKinds lists the distinct failure classifications observed,
	// sorted for stable output.
	FailureKinds []string `json:"failureKinds,omitempty"`

	// Retries totals retry attempts across all runs, healing statistics
	// for the upstream selector pipeline.
	Retries int `json:"retries"`

	// HealedResolutions counts resolutions that succeeded only through
	// a fallback candidate.
	HealedResolutions int `json:"healedResolutions"`

	// TotalDurationMs sums run durations.
	TotalDurationMs int64 `json:"totalDurationMs"`
}

// SessionReport is the final artifact of one engine invocation.
type SessionReport struct {
	Version   string    `json:"version"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	// Summary counts over distinct cases.
	TotalCases int `json:"totalCases"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Flaky      int `json:"flaky"`

	// Cases in first-seen order.
	Cases []CaseReport `json:"cases"`
}

// Success reports whether every case passed cleanly (flaky counts as
// not failed but not a clean pass either).
func (r *SessionReport) Success() bool {
	return r.TotalCases > 0 && r.Failed == 0
}

// Case returns the report for the given id, or nil.
func (r *SessionReport) Case(id string) *CaseReport {
	for i := range r.Cases {
		if r.Cases[i].ID == id {
			return &r.Cases[i]
		}
	}
	return nil
}
