package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEngineApplyDefaults(t *testing.T) {
	var e Engine
	e.ApplyDefaults()

	if e.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", e.MaxRetries, DefaultMaxRetries)
	}
	if e.BackoffBaseMs != DefaultBackoffBaseMs {
		t.Errorf("BackoffBaseMs = %d", e.BackoffBaseMs)
	}
	if e.BackoffCapMs != DefaultBackoffCapMs {
		t.Errorf("BackoffCapMs = %d", e.BackoffCapMs)
	}
	if e.MaxConcurrentTestCases != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrentTestCases = %d", e.MaxConcurrentTestCases)
	}

	// Explicit values survive.
	e2 := Engine{MaxRetries: 7}
	e2.ApplyDefaults()
	if e2.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, defaults overwrote explicit value", e2.MaxRetries)
	}
}

func TestEngineValidate(t *testing.T) {
	e := Engine{BackoffBaseMs: 500, BackoffCapMs: 100}
	if err := e.Validate(); err == nil {
		t.Error("cap below base should be rejected")
	}

	ok := Engine{BackoffBaseMs: 100, BackoffCapMs: 500}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestEngineDurations(t *testing.T) {
	e := Engine{BackoffBaseMs: 250, PerTestCaseDeadlineMs: 120_000}
	if got := e.BackoffBase(); got != 250*time.Millisecond {
		t.Errorf("BackoffBase() = %v", got)
	}
	if got := e.CaseDeadline(); got != 2*time.Minute {
		t.Errorf("CaseDeadline() = %v", got)
	}
}

func TestLoad(t *testing.T) {
	src := `
engine:
  maxRetries: 5
  backoffBaseMs: 100
elements: elements.yaml
cases:
  - cases/
repeats: 3
driver: mock
output: out/report.json
`
	path := filepath.Join(t.TempDir(), "healrunner.yaml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Engine.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Engine.MaxRetries)
	}
	if cfg.Engine.BackoffBaseMs != 100 {
		t.Errorf("BackoffBaseMs = %d", cfg.Engine.BackoffBaseMs)
	}
	// Unset knobs are defaulted.
	if cfg.Engine.BackoffCapMs != DefaultBackoffCapMs {
		t.Errorf("BackoffCapMs = %d, want default", cfg.Engine.BackoffCapMs)
	}
	if cfg.Elements != "elements.yaml" {
		t.Errorf("Elements = %q", cfg.Elements)
	}
	if cfg.Repeats != 3 {
		t.Errorf("Repeats = %d", cfg.Repeats)
	}
	if cfg.Driver != "mock" {
		t.Errorf("Driver = %q", cfg.Driver)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	// Empty directory yields a defaulted config, not an error.
	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error: %v", err)
	}
	if cfg.Repeats != 1 || cfg.Engine.MaxRetries != DefaultMaxRetries {
		t.Errorf("defaulted config wrong: %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(dir, "healrunner.yaml"), []byte("repeats: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error: %v", err)
	}
	if cfg.Repeats != 2 {
		t.Errorf("Repeats = %d, want 2", cfg.Repeats)
	}
}
