// Package panel defines the catalog of expert identities a debate draws
// from. Panels are read-only once loaded; a running debate never mutates
// them.
package panel

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Expert is one debate participant identity. The assignment of experts to
// a debate is fixed at start and immutable for the debate's life.
type Expert struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Specializations []string `yaml:"specializations" json:"specializations"`
	// Preamble is prepended to every prompt sent on this expert's behalf.
	Preamble string `yaml:"preamble" json:"preamble,omitempty"`
}

// Panel is a named catalog of experts.
type Panel struct {
	Name    string   `yaml:"name"`
	Experts []Expert `yaml:"experts"`
}

// Default returns the built-in five-expert panel.
func Default() Panel {
	return Panel{
		Name: "default",
		Experts: []Expert{
			{
				ID:              "strategist",
				Name:            "The Strategist",
				Specializations: []string{"strategy", "business", "competitive-analysis"},
				Preamble:        "You are The Strategist: weigh long-term positioning over short-term wins. Always name the option you recommend.",
			},
			{
				ID:              "analyst",
				Name:            "The Analyst",
				Specializations: []string{"finance", "data", "business"},
				Preamble:        "You are The Analyst: argue from numbers and evidence. Quantify costs and benefits. Always name the option you recommend.",
			},
			{
				ID:              "skeptic",
				Name:            "The Skeptic",
				Specializations: []string{"risk", "compliance", "general"},
				Preamble:        "You are The Skeptic: stress-test every claim and surface downside risks other experts gloss over. Always name the option you recommend.",
			},
			{
				ID:              "pragmatist",
				Name:            "The Pragmatist",
				Specializations: []string{"operations", "product", "general"},
				Preamble:        "You are The Pragmatist: focus on what can actually be executed with the stated resources. Always name the option you recommend.",
			},
			{
				ID:              "visionary",
				Name:            "The Visionary",
				Specializations: []string{"innovation", "product", "strategy"},
				Preamble:        "You are The Visionary: explore the upside case and second-order opportunities. Always name the option you recommend.",
			},
		},
	}
}

// Load reads a panel definition from a YAML file.
func Load(path string) (Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Panel{}, fmt.Errorf("read panel file: %w", err)
	}
	var p Panel
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Panel{}, fmt.Errorf("parse panel file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Panel{}, fmt.Errorf("panel file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks structural integrity: non-empty, unique ids, named experts.
func (p Panel) Validate() error {
	if len(p.Experts) == 0 {
		return fmt.Errorf("panel has no experts")
	}
	seen := make(map[string]bool, len(p.Experts))
	for i, e := range p.Experts {
		if e.ID == "" {
			return fmt.Errorf("expert %d has no id", i)
		}
		if e.Name == "" {
			return fmt.Errorf("expert %q has no name", e.ID)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate expert id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// ByID returns the expert with the given id.
func (p Panel) ByID(id string) (Expert, bool) {
	for _, e := range p.Experts {
		if e.ID == id {
			return e, true
		}
	}
	return Expert{}, false
}

// Select picks n experts for a debate, preferring specialization matches for
// the given category. Selection order is deterministic: matching experts in
// panel order first, then the rest in panel order.
func (p Panel) Select(n int, category string) ([]Expert, error) {
	if n <= 0 {
		return nil, fmt.Errorf("expert count must be positive, got %d", n)
	}
	if n > len(p.Experts) {
		return nil, fmt.Errorf("panel %q has %d experts, %d requested", p.Name, len(p.Experts), n)
	}

	category = strings.ToLower(category)
	matches := func(e Expert) bool {
		for _, s := range e.Specializations {
			if category != "" && strings.Contains(category, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}

	selected := make([]Expert, 0, n)
	for _, e := range p.Experts {
		if len(selected) == n {
			break
		}
		if matches(e) {
			selected = append(selected, e)
		}
	}
	for _, e := range p.Experts {
		if len(selected) == n {
			break
		}
		if !matches(e) {
			selected = append(selected, e)
		}
	}
	return selected, nil
}
