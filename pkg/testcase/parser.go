package testcase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qaforge/healrunner/pkg/core"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// caseFile is the top-level YAML shape of a test case file.
type caseFile struct {
	ID    string      `yaml:"id"`
	Name  string      `yaml:"name"`
	Steps []yaml.Node `yaml:"steps"`
}

// stepBody is the mapping form of a step's parameters.
type stepBody struct {
	Target string `yaml:"target"`
	Value  string `yaml:"value"`
	URL    string `yaml:"url"`
	Label  string `yaml:"label"`
}

// ParseFile parses a single test case YAML file. A missing id defaults
// to the file name without extension.
func ParseFile(path string) (*TestCase, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is a user-provided case file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses test case YAML content.
//
// Steps are single-key mappings keyed by action kind. The value is
// either a scalar shorthand (navigate: the URL, click/assert: the
// target id) or a mapping with target/value/label fields:
//
//	steps:
//	  - navigate: https://shop.example.com/login
//	  - fill: { target: login.username, value: standard_user }
//	  - click: login.submit
//	  - assert: { target: dashboard.header }
func Parse(data []byte, sourcePath string) (*TestCase, error) {
	var cf caseFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid test case: %v", err)}
	}

	tc := &TestCase{
		ID:         cf.ID,
		Name:       cf.Name,
		SourcePath: sourcePath,
	}
	if tc.ID == "" {
		base := filepath.Base(sourcePath)
		tc.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if len(cf.Steps) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "test case declares no steps"}
	}

	for i := range cf.Steps {
		step, err := parseStep(&cf.Steps[i], sourcePath)
		if err != nil {
			return nil, err
		}
		tc.Steps = append(tc.Steps, step)
	}

	return tc, nil
}

func parseStep(node *yaml.Node, sourcePath string) (Step, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "step must be a single-key mapping keyed by action kind",
		}
	}

	keyNode, valNode := node.Content[0], node.Content[1]
	kind := core.ActionKind(keyNode.Value)
	if !kind.Valid() {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    keyNode.Line,
			Message: fmt.Sprintf("unknown action kind %q", keyNode.Value),
		}
	}

	step := Step{Kind: kind}

	switch valNode.Kind {
	case yaml.ScalarNode:
		// Shorthand form.
		if kind == core.ActionNavigate {
			step.Value = valNode.Value
		} else {
			step.Target = valNode.Value
		}
	case yaml.MappingNode:
		var body stepBody
		if err := valNode.Decode(&body); err != nil {
			return Step{}, &ParseError{
				Path:    sourcePath,
				Line:    valNode.Line,
				Message: fmt.Sprintf("invalid %s step: %v", kind, err),
			}
		}
		step.Target = body.Target
		step.Value = body.Value
		step.Label = body.Label
		if kind == core.ActionNavigate && step.Value == "" {
			step.Value = body.URL
		}
	default:
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    valNode.Line,
			Message: fmt.Sprintf("invalid %s step body", kind),
		}
	}

	if kind.NeedsTarget() && step.Target == "" {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    keyNode.Line,
			Message: fmt.Sprintf("%s step requires a target", kind),
		}
	}
	if kind.NeedsValue() && step.Value == "" {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    keyNode.Line,
			Message: fmt.Sprintf("%s step requires a value", kind),
		}
	}

	return step, nil
}
