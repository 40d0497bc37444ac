// Package validator validates test case files before execution. It
// parses all files upfront and cross-checks every step target against
// the element inventory, so a typoed descriptor id fails fast instead
// of burning a retry budget at runtime.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qaforge/healrunner/pkg/element"
	"github.com/qaforge/healrunner/pkg/testcase"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Cases is the list of parsed test cases in execution order.
	Cases []testcase.TestCase
	// Errors contains all validation errors found.
	Errors []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates test case files against an element store.
type Validator struct {
	store *element.Store
}

// New creates a Validator bound to the element inventory.
func New(store *element.Store) *Validator {
	return &Validator{store: store}
}

// Validate parses the given files or directories and checks every case.
func (v *Validator) Validate(paths ...string) *Result {
	result := &Result{}
	seen := make(map[string]string) // case id -> source file

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("cannot access: %v", err),
			})
			continue
		}

		files := []string{path}
		if info.IsDir() {
			files, err = collectCaseFiles(path)
			if err != nil {
				result.Errors = append(result.Errors, &ValidationError{
					File:    path,
					Message: fmt.Sprintf("failed to scan directory: %v", err),
				})
				continue
			}
		}

		for _, file := range files {
			v.validateFile(file, result, seen)
		}
	}

	return result
}

// collectCaseFiles finds all .yaml/.yml files in a directory.
func collectCaseFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// validateFile parses one case file and checks its steps.
func (v *Validator) validateFile(filePath string, result *Result, seen map[string]string) {
	tc, err := testcase.ParseFile(filePath)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    filePath,
			Message: fmt.Sprintf("parse error: %v", err),
		})
		return
	}

	if prev, dup := seen[tc.ID]; dup {
		result.Errors = append(result.Errors, &ValidationError{
			File:    filePath,
			Message: fmt.Sprintf("duplicate test case id %q (also in %s)", tc.ID, prev),
		})
		return
	}
	seen[tc.ID] = filePath

	for i, step := range tc.Steps {
		if step.Kind.NeedsTarget() && !v.store.Has(step.Target) {
			result.Errors = append(result.Errors, &ValidationError{
				File:    filePath,
				Message: fmt.Sprintf("step %d (%s): unknown element %q", i, step.Kind, step.Target),
			})
		}
	}

	result.Cases = append(result.Cases, *tc)
}
