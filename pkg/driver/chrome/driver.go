// Package chrome implements the driver interface over a headless
// Chrome instance controlled through the DevTools protocol.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/logger"
)

// Config configures the Chrome driver.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless runs Chrome without a visible window. Default true.
	Headless bool

	// Stealth applies anti-automation-detection patches to the page.
	Stealth bool

	// EvidenceDir is where screenshots are written. Default "evidence".
	EvidenceDir string

	// NavigateTimeout bounds Navigate including the load wait.
	// Default 30s.
	NavigateTimeout time.Duration
}

// Driver owns one Chrome browser. It opens an independent page per
// test case through NewSession, so concurrently running cases never
// share live page state. The Driver itself also serves as a session on
// a default page for single-case use.
type Driver struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	seq     atomic.Int64

	session
}

var _ core.SessionDriver = (*Driver)(nil)

// session drives one Chrome page.
type session struct {
	cfg  *Config
	page *rod.Page
	seq  *atomic.Int64
}

// New launches (or connects to) Chrome and opens the default page.
func New(cfg Config) (*Driver, error) {
	if cfg.EvidenceDir == "" {
		cfg.EvidenceDir = "evidence"
	}
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}

	d := &Driver{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("chrome: launch: %w", err)
		}
		wsURL = u
		d.lnch = l
		logger.Info("chrome: launched local browser at %s", wsURL)
	} else {
		logger.Info("chrome: connecting to remote browser at %s", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		d.cleanup()
		return nil, fmt.Errorf("chrome: connect: %w", err)
	}
	d.browser = b

	page, err := d.newPage()
	if err != nil {
		d.cleanup()
		return nil, fmt.Errorf("chrome: create page: %w", err)
	}
	d.session = session{cfg: &d.cfg, page: page, seq: &d.seq}

	return d, nil
}

// NewSession opens a fresh page for one test case. Every concurrently
// scheduled case gets its own page, so navigation and input in one
// case are invisible to the others. The close function closes the page
// but leaves the browser running.
func (d *Driver) NewSession(ctx context.Context) (core.Driver, func(), error) {
	page, err := d.newPage()
	if err != nil {
		return nil, nil, fmt.Errorf("chrome: create session page: %w", err)
	}
	s := &session{cfg: &d.cfg, page: page, seq: &d.seq}
	return s, func() {
		if err := page.Close(); err != nil {
			logger.Warn("chrome: close session page: %v", err)
		}
	}, nil
}

func (d *Driver) newPage() (*rod.Page, error) {
	if d.cfg.Stealth {
		return stealth.Page(d.browser)
	}
	return d.browser.Page(proto.TargetCreateTarget{URL: ""})
}

// Exists probes for the locator, waiting up to timeout. A probe that
// times out is a miss, not an error; only backend failures and parent
// context cancellation surface as errors.
func (s *session) Exists(ctx context.Context, locator string, timeout time.Duration) (bool, error) {
	_, err := s.page.Context(ctx).Timeout(timeout).Element(locator)
	if err == nil {
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return false, fmt.Errorf("chrome: probe %s: %w", locator, err)
}

// Fill clears the element matched by locator and types the value.
func (s *session) Fill(ctx context.Context, locator, value string) error {
	el, err := s.page.Context(ctx).Element(locator)
	if err != nil {
		return fmt.Errorf("chrome: fill %s: %w", locator, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("chrome: fill %s: select: %w", locator, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("chrome: fill %s: input: %w", locator, err)
	}
	return nil
}

// Click clicks the element matched by locator.
func (s *session) Click(ctx context.Context, locator string) error {
	el, err := s.page.Context(ctx).Element(locator)
	if err != nil {
		return fmt.Errorf("chrome: click %s: %w", locator, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("chrome: click %s: %w", locator, err)
	}
	return nil
}

// Navigate loads the URL and waits for the load event.
func (s *session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()

	if err := s.page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("chrome: navigate %s: %w", url, err)
	}
	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		// A slow load event is not fatal; the page may already be usable.
		logger.Warn("chrome: wait load for %s: %v", url, err)
	}
	return nil
}

// CaptureEvidence screenshots the page into the evidence directory and
// returns the file path.
func (s *session) CaptureEvidence(ctx context.Context) (string, error) {
	data, err := s.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("chrome: screenshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.EvidenceDir, 0755); err != nil {
		return "", fmt.Errorf("chrome: evidence dir: %w", err)
	}

	name := fmt.Sprintf("evidence-%d-%03d.png", time.Now().Unix(), s.seq.Add(1))
	path := filepath.Join(s.cfg.EvidenceDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("chrome: write evidence: %w", err)
	}
	return path, nil
}

// Close shuts down the default page, browser, and launched Chrome
// process. Sessions still open are torn down with the browser.
func (d *Driver) Close() error {
	d.cleanup()
	return nil
}

func (d *Driver) cleanup() {
	if d.session.page != nil {
		d.session.page.Close()
		d.session.page = nil
	}
	if d.browser != nil {
		d.browser.Close()
		d.browser = nil
	}
	if d.lnch != nil {
		d.lnch.Cleanup()
		d.lnch = nil
	}
}
