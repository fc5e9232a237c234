package dimension

import (
	"math"
	"testing"
)

func TestModelWeightsSumToOne(t *testing.T) {
	for _, dt := range Types() {
		m := ModelFor(dt)
		var sum float64
		for _, d := range m.Dimensions {
			sum += d.Weight
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s: weights sum to %.4f, want 1.0", dt, sum)
		}
	}
}

func TestModelFor_UnknownFallsBackToGeneral(t *testing.T) {
	m := ModelFor(DebateType("nonsense"))
	if m.Type != TypeGeneral {
		t.Errorf("got %s, want %s", m.Type, TypeGeneral)
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		input string
		want  DebateType
	}{
		{"Should we acquire our smaller competitor given the budget?", TypeBusinessDecision},
		{"What market entry strategy makes sense for Europe?", TypeStrategy},
		{"Should the next release include the collaboration feature?", TypeProduct},
		{"Should I repaint the office?", TypeGeneral},
		// business keywords win over product keywords when both appear
		{"Should we invest in a new product line?", TypeBusinessDecision},
	}
	for _, tt := range tests {
		if got := InferType(tt.input); got != tt.want {
			t.Errorf("InferType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestCriticalDimensions(t *testing.T) {
	m := ModelFor(TypeBusinessDecision)
	critical := map[string]bool{}
	for _, d := range m.Dimensions {
		if d.Critical() {
			critical[d.Name] = true
		}
	}
	if !critical["objective"] || !critical["constraints"] {
		t.Errorf("objective and constraints should be critical, got %v", critical)
	}
	if critical["timeline"] {
		t.Error("timeline at weight 0.15 must not be critical (threshold is exclusive)")
	}
}

func TestClosedAnswerDimensionsCarryOptions(t *testing.T) {
	for _, dt := range Types() {
		for _, d := range ModelFor(dt).Dimensions {
			if d.Name == "timeline" && len(d.Options) == 0 {
				t.Errorf("%s/timeline: expected multiple-choice options", dt)
			}
		}
	}
}
