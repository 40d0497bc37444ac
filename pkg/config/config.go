// Package config handles configuration for healrunner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine holds the execution engine knobs. Zero values mean "use the
// default"; call ApplyDefaults before handing the struct to the runner.
type Engine struct {
	// MaxRetries caps resolution/action retry attempts per action.
	MaxRetries int `yaml:"maxRetries"`

	// BackoffBaseMs is the initial backoff unit; each retry doubles it.
	BackoffBaseMs int `yaml:"backoffBaseMs"`

	// BackoffCapMs is the ceiling on exponential backoff growth.
	BackoffCapMs int `yaml:"backoffCapMs"`

	// ExistenceProbeTimeoutMs is the per-candidate probe timeout.
	ExistenceProbeTimeoutMs int `yaml:"existenceProbeTimeoutMs"`

	// MaxConcurrentTestCases bounds the worker pool width.
	MaxConcurrentTestCases int `yaml:"maxConcurrentTestCases"`

	// PerTestCaseDeadlineMs is the overall cancellation deadline for
	// one test case run.
	PerTestCaseDeadlineMs int `yaml:"perTestCaseDeadlineMs"`

	// FreshnessWindowMs is the recency-bonus window for the ranker.
	FreshnessWindowMs int `yaml:"freshnessWindowMs"`
}

// Engine defaults.
const (
	DefaultMaxRetries        = 3
	DefaultBackoffBaseMs     = 250
	DefaultBackoffCapMs      = 4000
	DefaultProbeTimeoutMs    = 300
	DefaultMaxConcurrent     = 4
	DefaultCaseDeadlineMs    = 120_000
	DefaultFreshnessWindowMs = 600_000
)

// ApplyDefaults fills unset fields with defaults.
func (e *Engine) ApplyDefaults() {
	if e.MaxRetries <= 0 {
		e.MaxRetries = DefaultMaxRetries
	}
	if e.BackoffBaseMs <= 0 {
		e.BackoffBaseMs = DefaultBackoffBaseMs
	}
	if e.BackoffCapMs <= 0 {
		e.BackoffCapMs = DefaultBackoffCapMs
	}
	if e.ExistenceProbeTimeoutMs <= 0 {
		e.ExistenceProbeTimeoutMs = DefaultProbeTimeoutMs
	}
	if e.MaxConcurrentTestCases <= 0 {
		e.MaxConcurrentTestCases = DefaultMaxConcurrent
	}
	if e.PerTestCaseDeadlineMs <= 0 {
		e.PerTestCaseDeadlineMs = DefaultCaseDeadlineMs
	}
	if e.FreshnessWindowMs <= 0 {
		e.FreshnessWindowMs = DefaultFreshnessWindowMs
	}
}

// Validate rejects configurations the engine cannot honor.
func (e *Engine) Validate() error {
	if e.BackoffCapMs < e.BackoffBaseMs {
		return fmt.Errorf("config: backoffCapMs (%d) below backoffBaseMs (%d)", e.BackoffCapMs, e.BackoffBaseMs)
	}
	return nil
}

// Duration accessors.

// BackoffBase returns the initial backoff interval.
func (e *Engine) BackoffBase() time.Duration {
	return time.Duration(e.BackoffBaseMs) * time.Millisecond
}

// BackoffCap returns the backoff ceiling.
func (e *Engine) BackoffCap() time.Duration {
	return time.Duration(e.BackoffCapMs) * time.Millisecond
}

// ProbeTimeout returns the per-candidate existence probe timeout.
func (e *Engine) ProbeTimeout() time.Duration {
	return time.Duration(e.ExistenceProbeTimeoutMs) * time.Millisecond
}

// CaseDeadline returns the per-test-case deadline.
func (e *Engine) CaseDeadline() time.Duration {
	return time.Duration(e.PerTestCaseDeadlineMs) * time.Millisecond
}

// FreshnessWindow returns the ranker's recency window.
func (e *Engine) FreshnessWindow() time.Duration {
	return time.Duration(e.FreshnessWindowMs) * time.Millisecond
}

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Engine knobs.
	Engine Engine `yaml:"engine"`

	// Elements is the path to the element inventory file produced by
	// the upstream crawler/classifier pipeline.
	Elements string `yaml:"elements"`

	// Cases lists test case files or directories.
	Cases []string `yaml:"cases"`

	// Repeats is how many times the whole suite is replayed; values
	// above 1 enable flakiness confirmation across runs.
	Repeats int `yaml:"repeats"`

	// Driver selects the backend: "chrome" or "mock".
	Driver string `yaml:"driver"`

	// EvidenceDir is where failure evidence is written.
	EvidenceDir string `yaml:"evidenceDir"`

	// Output is the report artifact path.
	Output string `yaml:"output"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Engine.ApplyDefaults()
	if cfg.Repeats <= 0 {
		cfg.Repeats = 1
	}
	return &cfg, nil
}

// LoadFromDir looks for healrunner.yaml or healrunner.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"healrunner.yaml", "healrunner.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// No config file found, return a defaulted config.
	cfg := &Config{Repeats: 1}
	cfg.Engine.ApplyDefaults()
	return cfg, nil
}
