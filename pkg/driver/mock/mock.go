// Package mock provides a scriptable in-memory driver for testing the
// engine without a real browser.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Driver is a mock implementation of core.Driver. Which locators exist
// on the simulated page and which actions fail is scripted through
// Config; every call is recorded for assertions.
type Driver struct {
	// Configuration
	Config Config

	mu        sync.Mutex
	calls     []Call
	failCount map[string]int
}

// Config configures mock driver behavior.
type Config struct {
	// Present lists the locators that exist on the simulated page.
	Present []string
	// ProbeDelay adds artificial latency to every Exists probe.
	ProbeDelay time.Duration
	// FailFirst makes the first N actions against a locator fail before
	// succeeding, keyed by locator. Simulates transient detachment.
	FailFirst map[string]int
	// FailNavigate makes every Navigate call fail.
	FailNavigate bool
	// EvidenceErr, when set, makes CaptureEvidence return this error.
	EvidenceErr error
}

// Call records one driver invocation.
type Call struct {
	Method  string
	Locator string
	Value   string
}

// New creates a mock driver.
func New(cfg Config) *Driver {
	return &Driver{
		Config:    cfg,
		failCount: make(map[string]int),
	}
}

// Exists reports whether the locator is scripted as present.
func (d *Driver) Exists(ctx context.Context, locator string, timeout time.Duration) (bool, error) {
	d.record("Exists", locator, "")

	if d.Config.ProbeDelay > 0 {
		select {
		case <-time.After(d.Config.ProbeDelay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	for _, l := range d.present() {
		if l == locator {
			return true, nil
		}
	}
	return false, nil
}

// present copies the scripted locator list under the lock, so probes
// running concurrently with AddPresent never observe a partial append.
func (d *Driver) present() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Config.Present))
	copy(out, d.Config.Present)
	return out
}

// Fill simulates typing into the element.
func (d *Driver) Fill(ctx context.Context, locator, value string) error {
	d.record("Fill", locator, value)
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.maybeFail(locator)
}

// Click simulates clicking the element.
func (d *Driver) Click(ctx context.Context, locator string) error {
	d.record("Click", locator, "")
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.maybeFail(locator)
}

// Navigate simulates a page load.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.record("Navigate", "", url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Config.FailNavigate {
		return fmt.Errorf("mock navigation failure: %s", url)
	}
	return nil
}

// CaptureEvidence returns a synthetic evidence reference.
func (d *Driver) CaptureEvidence(ctx context.Context) (string, error) {
	d.record("CaptureEvidence", "", "")
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Config.EvidenceErr != nil {
		return "", d.Config.EvidenceErr
	}

	d.mu.Lock()
	n := len(d.calls)
	d.mu.Unlock()
	return fmt.Sprintf("mock-evidence-%d.png", n), nil
}

// Calls returns a copy of all recorded calls.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallCount returns how many times method was invoked, across all
// locators when locator is empty.
func (d *Driver) CallCount(method, locator string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c.Method == method && (locator == "" || c.Locator == locator) {
			n++
		}
	}
	return n
}

// AddPresent scripts a locator into existence mid-test.
func (d *Driver) AddPresent(locator string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Config.Present = append(d.Config.Present, locator)
}

func (d *Driver) record(method, locator, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: method, Locator: locator, Value: value})
}

// maybeFail consumes one scripted failure for the locator, if any left.
func (d *Driver) maybeFail(locator string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	budget, ok := d.Config.FailFirst[locator]
	if !ok {
		return nil
	}
	if d.failCount[locator] < budget {
		d.failCount[locator]++
		return fmt.Errorf("mock transient failure %d/%d on %s", d.failCount[locator], budget, locator)
	}
	return nil
}
