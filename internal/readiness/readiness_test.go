package readiness

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"agora/internal/dimension"
)

func TestAnalyze_ShortInputRejected(t *testing.T) {
	for _, input := range []string{"", "short", "123456789", "   padded  "} {
		if _, err := Analyze(input, ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Analyze(%q): got %v, want ErrInvalidInput", input, err)
		}
	}
}

func TestAnalyze_InfersType(t *testing.T) {
	a, err := Analyze("Should we acquire the vendor given our budget limit?", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.DebateType != dimension.TypeBusinessDecision {
		t.Errorf("type = %s, want business_decision", a.DebateType)
	}
}

func TestAnalyze_DimensionScoring(t *testing.T) {
	// Two objective keywords ("decide", "whether"), one constraint keyword
	// ("budget"), nothing else.
	input := "We need to decide whether the budget works for this."
	a, err := Analyze(input, dimension.TypeGeneral)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := a.DimensionScores["objective"]; got != 80 {
		t.Errorf("objective = %d, want 80 (two hits)", got)
	}
	if got := a.DimensionScores["constraints"]; got != 40 {
		t.Errorf("constraints = %d, want 40 (one hit)", got)
	}
	if got := a.DimensionScores["timeline"]; got != 0 {
		t.Errorf("timeline = %d, want 0 (no hits)", got)
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Level
	}{
		{29, LevelInsufficient},
		{30, LevelBasic},
		{49, LevelBasic},
		{50, LevelGood},
		{74, LevelGood},
		{75, LevelExcellent},
	}
	for _, tt := range tests {
		if got := levelFor(tt.score); got != tt.want {
			t.Errorf("levelFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRecommendedAction(t *testing.T) {
	tests := []struct {
		score       int
		hasCritical bool
		want        Action
	}{
		{80, false, ActionProceed},
		{80, true, ActionClarify},
		{50, false, ActionClarify},
		{20, false, ActionRefine},
		{20, true, ActionClarify},
	}
	for _, tt := range tests {
		if got := actionFor(tt.score, tt.hasCritical); got != tt.want {
			t.Errorf("actionFor(%d, %v) = %s, want %s", tt.score, tt.hasCritical, got, tt.want)
		}
	}
}

func TestAnalyze_AssumptionsAndQuestions(t *testing.T) {
	a, err := Analyze("Should we acquire the vendor?", dimension.TypeBusinessDecision)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	assumed := map[string]bool{}
	for _, as := range a.Assumptions {
		assumed[as.Dimension] = true
		if as.Confirmed != nil {
			t.Errorf("assumption %s: Confirmed should start nil", as.ID)
		}
	}
	// Every dimension below the present threshold gets an assumption.
	for dim, score := range a.DimensionScores {
		if score < 80 && !assumed[dim] {
			t.Errorf("dimension %s scored %d but has no assumption", dim, score)
		}
	}

	// Critical dimensions with weak evidence always get a high-priority
	// question; closed-set dimensions carry options.
	var sawCritical, sawOptions bool
	for _, q := range a.Questions {
		if q.Priority == PriorityHigh {
			sawCritical = true
		}
		if len(q.Options) > 0 {
			sawOptions = true
		}
	}
	if !sawCritical {
		t.Error("expected at least one high-priority question for a bare input")
	}
	if !sawOptions {
		t.Error("expected at least one multiple-choice question (timeline/stakeholders)")
	}
}

func TestAnalyze_ConfidenceTracksEvidence(t *testing.T) {
	if confidenceFor(0) >= confidenceFor(40) {
		t.Error("assumption confidence must rise with evidence")
	}
}

func TestRefine_IsPure(t *testing.T) {
	original := "Should we acquire the vendor to grow revenue?"
	assumptions := map[string]bool{"assume-constraints": true}
	questions := map[string][]string{"ask-constraints": {"budget capped at 2M"}}

	enhanced1, a1, err := Refine(original, assumptions, questions, "board meets next month")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	enhanced2, a2, err := Refine(original, assumptions, questions, "board meets next month")
	if err != nil {
		t.Fatalf("Refine (second call): %v", err)
	}

	if enhanced1 != enhanced2 {
		t.Errorf("enhanced context differs between identical calls:\n%q\n%q", enhanced1, enhanced2)
	}
	if diff := cmp.Diff(a1, a2); diff != "" {
		t.Errorf("assessments differ between identical calls (-first +second):\n%s", diff)
	}
}

func TestRefine_AppendsAnnotations(t *testing.T) {
	original := "Should we acquire the vendor to grow revenue?"
	enhanced, updated, err := Refine(original,
		map[string]bool{"assume-constraints": true},
		map[string][]string{"ask-constraints": {"budget capped at 2M", "no new hires"}},
		"",
	)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if !strings.HasPrefix(enhanced, original) {
		t.Error("enhanced context must start with the original input")
	}
	if !strings.Contains(enhanced, "[Confirmed: ") {
		t.Errorf("missing confirmed-assumption annotation: %q", enhanced)
	}
	if !strings.Contains(enhanced, "[constraints: budget capped at 2M, no new hires]") {
		t.Errorf("missing question-answer annotation: %q", enhanced)
	}

	// The answered constraint keywords now appear in the text, so the
	// constraints dimension must not score lower than before.
	base, _ := Analyze(original, "")
	if updated.DimensionScores["constraints"] < base.DimensionScores["constraints"] {
		t.Error("refinement must not lower a dimension score")
	}
	if updated.OverallScore < base.OverallScore {
		t.Errorf("overall score dropped after refinement: %d -> %d", base.OverallScore, updated.OverallScore)
	}
}

func TestMarkConfirmed(t *testing.T) {
	a := &Assessment{Assumptions: []Assumption{
		{ID: "assume-risk"},
		{ID: "assume-timeline"},
	}}
	markConfirmed(a, map[string]bool{"assume-risk": true, "assume-timeline": false})
	if a.Assumptions[0].Confirmed == nil || !*a.Assumptions[0].Confirmed {
		t.Error("assume-risk should be confirmed true")
	}
	if a.Assumptions[1].Confirmed == nil || *a.Assumptions[1].Confirmed {
		t.Error("assume-timeline should be confirmed false")
	}
}

func TestRefine_ShortInputRejected(t *testing.T) {
	if _, _, err := Refine("too short", nil, nil, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}
