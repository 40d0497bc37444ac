// Package core defines the driver capability set and the result types
// shared by the resolver, executor, and report layers.
package core

import (
	"context"
	"time"
)

// Driver is the minimal capability set the engine requires from a
// browser-automation backend. Any backend implementing these five
// methods is substitutable: Chrome over CDP, a remote grid, or the
// mock driver used in tests.
//
// The engine handles candidate ranking, healing, and retries; the
// Driver just talks to one live page.
type Driver interface {
	// Exists probes whether the locator matches at least one element on
	// the live page, waiting up to timeout before giving up. A miss is
	// (false, nil); an error is reserved for backend-level failures
	// such as a lost browser connection or a cancelled context.
	Exists(ctx context.Context, locator string, timeout time.Duration) (bool, error)

	// Fill types the value into the element matched by locator.
	Fill(ctx context.Context, locator, value string) error

	// Click clicks the element matched by locator.
	Click(ctx context.Context, locator string) error

	// Navigate loads the given URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error

	// CaptureEvidence captures a diagnostic artifact (screenshot or DOM
	// snapshot) and returns a reference to it, typically a file path.
	CaptureEvidence(ctx context.Context) (string, error)
}

// SessionDriver is implemented by backends whose live page state cannot
// be shared between concurrently running test cases. The runner opens
// one session per case, so a navigation or fill in one case never leaks
// into another.
type SessionDriver interface {
	Driver

	// NewSession opens an independent session. The returned close
	// function releases the session's resources and is safe to call
	// exactly once.
	NewSession(ctx context.Context) (Driver, func(), error)
}

// ActionKind identifies the user-intent operation an action performs.
type ActionKind string

// Action kinds.
const (
	ActionFill     ActionKind = "fill"
	ActionClick    ActionKind = "click"
	ActionNavigate ActionKind = "navigate"
	ActionAssert   ActionKind = "assert"
)

// Valid reports whether the kind is one of the supported actions.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionFill, ActionClick, ActionNavigate, ActionAssert:
		return true
	}
	return false
}

// NeedsTarget reports whether the action resolves an element descriptor.
// Navigate operates on a URL, not an element.
func (k ActionKind) NeedsTarget() bool {
	return k != ActionNavigate
}

// NeedsValue reports whether the action requires a value: the text to
// fill or the URL to navigate to.
func (k ActionKind) NeedsValue() bool {
	return k == ActionFill || k == ActionNavigate
}
