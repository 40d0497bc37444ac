package element

import "testing"

const validInventory = `
elements:
  - id: login.username
    role: input
    candidates:
      - locator: "#user-name"
        confidence: 0.9
      - locator: 'input[name="user-name"]'
        confidence: 0.6
  - id: login.submit
    role: button
    candidates:
      - locator: "#login-button"
        confidence: 0.95
`

func TestParseInventory(t *testing.T) {
	store, err := Parse([]byte(validInventory), "elements.yaml")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if got := store.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	d, ok := store.Snapshot("login.username")
	if !ok {
		t.Fatal("login.username missing")
	}
	if d.Role != RoleInput {
		t.Errorf("Role = %q, want input", d.Role)
	}
	if len(d.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(d.Candidates))
	}
	if d.Candidates[0].Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", d.Candidates[0].Confidence)
	}

	ids := store.IDs()
	if len(ids) != 2 || ids[0] != "login.username" || ids[1] != "login.submit" {
		t.Errorf("IDs() = %v, declaration order lost", ids)
	}
}

func TestParseInventoryDefaultsRole(t *testing.T) {
	src := `
elements:
  - id: cart.badge
    candidates:
      - locator: ".shopping_cart_badge"
`
	store, err := Parse([]byte(src), "elements.yaml")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	d, _ := store.Snapshot("cart.badge")
	if d.Role != RoleCustom {
		t.Errorf("Role = %q, want custom default", d.Role)
	}
}

func TestParseInventoryClampsConfidence(t *testing.T) {
	src := `
elements:
  - id: x
    role: input
    candidates:
      - locator: "#a"
        confidence: 1.7
      - locator: "#b"
        confidence: -0.2
`
	store, err := Parse([]byte(src), "elements.yaml")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	d, _ := store.Snapshot("x")
	if d.Candidates[0].Confidence != 1 {
		t.Errorf("over-range confidence = %v, want 1", d.Candidates[0].Confidence)
	}
	if d.Candidates[1].Confidence != 0 {
		t.Errorf("under-range confidence = %v, want 0", d.Candidates[1].Confidence)
	}
}

func TestParseInventoryErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not yaml", `{{{`},
		{"empty", ``},
		{"no elements", `elements: []`},
		{"empty locator", "elements:\n  - id: x\n    role: input\n    candidates:\n      - locator: \"\"\n"},
		{"duplicate id", "elements:\n  - id: x\n    role: input\n    candidates:\n      - locator: \"#a\"\n  - id: x\n    role: input\n    candidates:\n      - locator: \"#b\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src), "elements.yaml"); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}
