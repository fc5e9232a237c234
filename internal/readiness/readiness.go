// Package readiness scores free-text decision questions against a dimension
// model and decides whether a debate has enough stated context to proceed.
// Both entry points are pure: identical arguments always produce identical
// output, so callers may retry or cache freely.
package readiness

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"agora/internal/dimension"
)

// ErrInvalidInput is returned when the user input is too short to assess.
var ErrInvalidInput = errors.New("input too short to assess")

// MinInputLen is the minimum accepted input length in bytes.
const MinInputLen = 10

// presentThreshold: dimensions scoring below this synthesize an assumption.
const presentThreshold = 80

// Level buckets the overall score.
type Level string

const (
	LevelInsufficient Level = "insufficient"
	LevelBasic        Level = "basic"
	LevelGood         Level = "good"
	LevelExcellent    Level = "excellent"
)

// Action is the recommended next step for the caller.
type Action string

const (
	ActionProceed Action = "proceed"
	ActionClarify Action = "clarify"
	ActionRefine  Action = "refine"
)

// PriorityHigh marks questions for critical dimensions; everything else is
// PriorityMedium.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Assumption is a plausible default proposed for a weakly evidenced
// dimension. Confirmed is nil until the user answers.
type Assumption struct {
	ID         string  `json:"id"`
	Dimension  string  `json:"dimension"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Confirmed  *bool   `json:"confirmed"`
}

// Question is a clarifying question for a missing dimension. Options, when
// non-empty, make it multiple-choice.
type Question struct {
	ID        string   `json:"id"`
	Dimension string   `json:"dimension"`
	Text      string   `json:"text"`
	Priority  string   `json:"priority"`
	Options   []string `json:"options,omitempty"`
}

// Assessment is the result of scoring one input against a dimension model.
// It is ephemeral: never persisted as part of the debate aggregate.
type Assessment struct {
	DebateType        dimension.DebateType `json:"debateType"`
	DimensionScores   map[string]int       `json:"dimensionScores"`
	OverallScore      int                  `json:"overallScore"`
	Level             Level                `json:"level"`
	RecommendedAction Action               `json:"recommendedAction"`
	Assumptions       []Assumption         `json:"assumptions"`
	Questions         []Question           `json:"questions"`
}

// Analyze scores userInput against the dimension model for debateType.
// An empty debateType is inferred by keyword matching. Inputs shorter than
// MinInputLen fail with ErrInvalidInput.
func Analyze(userInput string, debateType dimension.DebateType) (*Assessment, error) {
	if len(strings.TrimSpace(userInput)) < MinInputLen {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrInvalidInput, MinInputLen)
	}
	if debateType == "" {
		debateType = dimension.InferType(userInput)
	}
	model := dimension.ModelFor(debateType)
	lower := strings.ToLower(userInput)

	a := &Assessment{
		DebateType:      model.Type,
		DimensionScores: make(map[string]int, len(model.Dimensions)),
	}

	var weighted float64
	for _, dim := range model.Dimensions {
		score := scoreDimension(lower, dim)
		a.DimensionScores[dim.Name] = score
		weighted += float64(score) * dim.Weight

		if score < presentThreshold {
			a.Assumptions = append(a.Assumptions, Assumption{
				ID:         "assume-" + dim.Name,
				Dimension:  dim.Name,
				Text:       dim.DefaultAssumption,
				Confidence: confidenceFor(score),
			})
			if dim.Critical() || score == 0 {
				priority := PriorityMedium
				if dim.Critical() {
					priority = PriorityHigh
				}
				a.Questions = append(a.Questions, Question{
					ID:        "ask-" + dim.Name,
					Dimension: dim.Name,
					Text:      dim.Question,
					Priority:  priority,
					Options:   dim.Options,
				})
			}
		}
	}

	a.OverallScore = int(math.Round(weighted))
	a.Level = levelFor(a.OverallScore)
	a.RecommendedAction = actionFor(a.OverallScore, hasCriticalQuestion(a.Questions))
	return a, nil
}

// scoreDimension counts keyword hits: 0 hits scores 0, one hit 40, two or
// more 80.
func scoreDimension(lowerInput string, dim dimension.Dimension) int {
	hits := 0
	for _, kw := range dim.Keywords {
		if strings.Contains(lowerInput, kw) {
			hits++
		}
	}
	switch {
	case hits >= 2:
		return 80
	case hits == 1:
		return 40
	default:
		return 0
	}
}

// confidenceFor maps a dimension score to assumption confidence: the less
// evidence present, the less confident the synthesized default.
func confidenceFor(score int) float64 {
	return 0.3 + float64(score)/100*0.5
}

func levelFor(score int) Level {
	switch {
	case score >= 75:
		return LevelExcellent
	case score >= 50:
		return LevelGood
	case score >= 30:
		return LevelBasic
	default:
		return LevelInsufficient
	}
}

func actionFor(score int, hasCriticalQuestion bool) Action {
	if score >= 70 && !hasCriticalQuestion {
		return ActionProceed
	}
	if score >= 40 || hasCriticalQuestion {
		return ActionClarify
	}
	return ActionRefine
}

func hasCriticalQuestion(qs []Question) bool {
	for _, q := range qs {
		if q.Priority == PriorityHigh {
			return true
		}
	}
	return false
}

// Refine enhances the original input with confirmed assumptions, question
// answers, and optional extra context, then re-scores the enhanced text.
// Enhancement is purely textual: answers are appended as bracketed
// annotations in model order, so identical arguments yield byte-identical
// enhanced text and identical scores.
func Refine(
	originalInput string,
	assumptionResponses map[string]bool,
	questionResponses map[string][]string,
	additionalContext string,
) (string, *Assessment, error) {
	base, err := Analyze(originalInput, "")
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString(originalInput)

	for _, assumption := range base.Assumptions {
		if assumptionResponses[assumption.ID] {
			fmt.Fprintf(&b, " [Confirmed: %s]", assumption.Text)
		}
	}
	for _, q := range base.Questions {
		answers := questionResponses[q.ID]
		if len(answers) == 0 {
			continue
		}
		// Join deterministically; multi-select answers keep caller order.
		fmt.Fprintf(&b, " [%s: %s]", q.Dimension, strings.Join(answers, ", "))
	}
	if additionalContext != "" {
		fmt.Fprintf(&b, " [Context: %s]", additionalContext)
	}

	enhanced := b.String()

	// Re-score with the original inferred type pinned, so annotation text
	// cannot flip the debate type between calls.
	updated, err := Analyze(enhanced, base.DebateType)
	if err != nil {
		return "", nil, err
	}
	markConfirmed(updated, assumptionResponses)
	return enhanced, updated, nil
}

// markConfirmed carries the caller's yes/no answers onto the re-scored
// assessment. Assumption ids are dimension-derived, so they are stable
// across Analyze calls.
func markConfirmed(a *Assessment, responses map[string]bool) {
	for i := range a.Assumptions {
		if v, ok := responses[a.Assumptions[i].ID]; ok {
			confirmed := v
			a.Assumptions[i].Confirmed = &confirmed
		}
	}
}
