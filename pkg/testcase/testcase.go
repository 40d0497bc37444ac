// Package testcase handles parsing and representation of test case
// YAML files: ordered action steps referencing element descriptor ids.
package testcase

import (
	"fmt"

	"github.com/qaforge/healrunner/pkg/core"
)

// Step is one user-intent action within a test case.
type Step struct {
	// Kind is the action to perform.
	Kind core.ActionKind

	// Target is the element descriptor id the action resolves, e.g.
	// "login.username". Empty for navigate.
	Target string

	// Value is the text to fill or the URL to navigate to.
	Value string

	// Label is an optional human-readable step description.
	Label string
}

// Describe returns a human-readable description of the step.
func (s Step) Describe() string {
	if s.Label != "" {
		return s.Label
	}
	switch s.Kind {
	case core.ActionNavigate:
		return fmt.Sprintf("navigate %s", s.Value)
	case core.ActionFill:
		return fmt.Sprintf("fill %s", s.Target)
	default:
		return fmt.Sprintf("%s %s", s.Kind, s.Target)
	}
}

// TestCase is one ordered action sequence. Steps within a case are
// strictly sequential; different cases are independent.
type TestCase struct {
	// ID is the stable test case identity used by the aggregator to
	// correlate repeated runs.
	ID string

	// Name is the display name.
	Name string

	// SourcePath is the file the case was parsed from.
	SourcePath string

	// Steps in execution order.
	Steps []Step
}

// DisplayName returns the name, falling back to the id.
func (tc *TestCase) DisplayName() string {
	if tc.Name != "" {
		return tc.Name
	}
	return tc.ID
}
