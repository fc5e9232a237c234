package panel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultPanelIsValid(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("default panel invalid: %v", err)
	}
	if len(p.Experts) < 3 {
		t.Errorf("default panel too small: %d experts", len(p.Experts))
	}
}

func TestSelect_Deterministic(t *testing.T) {
	p := Default()
	a, err := p.Select(3, "business_decision")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	b, _ := p.Select(3, "business_decision")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("selection not deterministic (-first +second):\n%s", diff)
	}
}

func TestSelect_PrefersSpecializationMatch(t *testing.T) {
	p := Default()
	experts, err := p.Select(2, "business_decision")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	// strategist and analyst both carry the "business" tag and come first
	// in panel order.
	if experts[0].ID != "strategist" || experts[1].ID != "analyst" {
		t.Errorf("got %s,%s; want strategist,analyst", experts[0].ID, experts[1].ID)
	}
}

func TestSelect_Bounds(t *testing.T) {
	p := Default()
	if _, err := p.Select(0, ""); err == nil {
		t.Error("Select(0) should fail")
	}
	if _, err := p.Select(len(p.Experts)+1, ""); err == nil {
		t.Error("Select beyond panel size should fail")
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.yaml")
	content := `name: custom
experts:
  - id: economist
    name: The Economist
    specializations: [finance, macro]
    preamble: "You are The Economist."
  - id: engineer
    name: The Engineer
    specializations: [technology]
    preamble: "You are The Engineer."
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Name != "custom" || len(p.Experts) != 2 {
		t.Errorf("unexpected panel: %+v", p)
	}
	e, ok := p.ByID("economist")
	if !ok || e.Name != "The Economist" {
		t.Errorf("ByID(economist) = %+v, %v", e, ok)
	}
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.yaml")
	content := `name: broken
experts:
  - {id: a, name: A}
  - {id: a, name: A again}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected duplicate id error")
	}
}
