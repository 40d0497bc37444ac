package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qaforge/healrunner/pkg/element"
)

const inventory = `
elements:
  - id: login.username
    role: input
    candidates:
      - locator: "#user-name"
  - id: login.submit
    role: button
    candidates:
      - locator: "#login-button"
`

const goodCase = `
id: login
steps:
  - navigate: https://shop.example.com/login
  - fill: { target: login.username, value: standard_user }
  - click: login.submit
`

func testStore(t *testing.T) *element.Store {
	t.Helper()
	store, err := element.Parse([]byte(inventory), "elements.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "login.yaml", goodCase)

	result := New(testStore(t)).Validate(path)

	if !result.IsValid() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Cases) != 1 {
		t.Fatalf("Cases = %d, want 1", len(result.Cases))
	}
	if result.Cases[0].ID != "login" {
		t.Errorf("ID = %q", result.Cases[0].ID)
	}
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: a\nsteps:\n  - click: login.submit\n")
	writeFile(t, dir, "b.yml", "id: b\nsteps:\n  - assert: login.username\n")
	writeFile(t, dir, "notes.txt", "not a case")

	result := New(testStore(t)).Validate(dir)

	if !result.IsValid() {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Cases) != 2 {
		t.Errorf("Cases = %d, want 2 (txt skipped)", len(result.Cases))
	}
}

func TestValidateUnknownTarget(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml",
		"id: bad\nsteps:\n  - click: checkout.confirm\n")

	result := New(testStore(t)).Validate(path)

	if result.IsValid() {
		t.Fatal("unknown element should fail validation")
	}
	if !strings.Contains(result.Errors[0].Error(), "checkout.confirm") {
		t.Errorf("error = %v, want the unknown id named", result.Errors[0])
	}
}

func TestValidateDuplicateCaseID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "id: same\nsteps:\n  - click: login.submit\n")
	writeFile(t, dir, "b.yaml", "id: same\nsteps:\n  - click: login.submit\n")

	result := New(testStore(t)).Validate(dir)

	if result.IsValid() {
		t.Fatal("duplicate case id should fail validation")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err.Error(), "duplicate test case id") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v", result.Errors)
	}
}

func TestValidateParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", "steps:\n  - swipe: x\n")

	result := New(testStore(t)).Validate(path)

	if result.IsValid() {
		t.Fatal("unparseable case should fail validation")
	}
}

func TestValidateMissingPath(t *testing.T) {
	result := New(testStore(t)).Validate(filepath.Join(t.TempDir(), "nope.yaml"))
	if result.IsValid() {
		t.Fatal("missing path should fail validation")
	}
}
