package element

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseError represents an inventory parsing error with location info.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// inventoryFile is the on-disk shape of an element inventory, the
// boundary contract with the upstream crawler/classifier pipeline.
type inventoryFile struct {
	Elements []Descriptor `yaml:"elements"`
}

// ParseFile parses an element inventory YAML file and returns a
// populated Store.
func ParseFile(path string) (*Store, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is a user-provided inventory file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses element inventory YAML content.
func Parse(data []byte, sourcePath string) (*Store, error) {
	var inv inventoryFile
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid inventory: %v", err)}
	}

	if len(inv.Elements) == 0 {
		return nil, &ParseError{Path: sourcePath, Message: "inventory declares no elements"}
	}

	store := NewStore()
	for i := range inv.Elements {
		d := inv.Elements[i]
		if d.Role == "" {
			d.Role = RoleCustom
		}
		for j := range d.Candidates {
			c := &d.Candidates[j]
			if c.Locator == "" {
				return nil, &ParseError{
					Path:    sourcePath,
					Message: fmt.Sprintf("element %q: candidate %d has no locator", d.ID, j),
				}
			}
			// Clamp out-of-range confidence rather than rejecting the
			// whole inventory; upstream scores are advisory.
			if c.Confidence < 0 {
				c.Confidence = 0
			}
			if c.Confidence > 1 {
				c.Confidence = 1
			}
		}
		if err := store.Add(d); err != nil {
			return nil, &ParseError{Path: sourcePath, Message: err.Error()}
		}
	}

	return store, nil
}
