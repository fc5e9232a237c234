// Package dimension defines the static per-debate-type assessment schema:
// which dimensions a decision question is scored against and how much each
// dimension weighs. Models are read-only process-wide state, safe for
// concurrent reads by any number of debates.
package dimension

import "strings"

// DebateType selects a dimension model for readiness assessment.
type DebateType string

const (
	TypeBusinessDecision DebateType = "business_decision"
	TypeStrategy         DebateType = "strategy"
	TypeProduct          DebateType = "product"
	TypeGeneral          DebateType = "general"
)

// CriticalWeight is the weight above which a dimension is considered
// critical: missing critical dimensions always produce a clarifying question.
const CriticalWeight = 0.15

// Dimension is one axis the assessor scores free-text input against.
type Dimension struct {
	Name     string
	Weight   float64  // weights sum to 1.0 within a model
	Keywords []string // lowercase evidence markers

	// DefaultAssumption is the plausible default the assessor proposes when
	// the dimension is absent from the input.
	DefaultAssumption string
	// Question is the clarifying question asked for missing critical
	// dimensions. Options, when non-empty, make it multiple-choice.
	Question string
	Options  []string
}

// Critical reports whether the dimension's weight makes it critical.
func (d Dimension) Critical() bool { return d.Weight > CriticalWeight }

// Model is the ordered set of dimensions for one debate type.
type Model struct {
	Type       DebateType
	Dimensions []Dimension
}

var timelineOptions = []string{
	"within a month", "this quarter", "within a year", "no fixed deadline",
}

var stakeholderOptions = []string{
	"internal team", "customers", "investors or board", "partners", "general public",
}

var models = map[DebateType]Model{
	TypeBusinessDecision: {
		Type: TypeBusinessDecision,
		Dimensions: []Dimension{
			{
				Name:   "objective",
				Weight: 0.25,
				Keywords: []string{
					"goal", "objective", "decide", "should we", "want to",
					"achieve", "aim", "choose", "whether",
				},
				DefaultAssumption: "the objective is to maximize overall business value from this decision",
				Question:          "What outcome should this decision optimize for?",
			},
			{
				Name:   "constraints",
				Weight: 0.20,
				Keywords: []string{
					"budget", "constraint", "limit", "cannot", "only have",
					"resource", "headcount", "cost cap", "restricted",
				},
				DefaultAssumption: "there are no hard constraints beyond ordinary budget discipline",
				Question:          "What budget, staffing, or policy constraints apply?",
			},
			{
				Name:   "timeline",
				Weight: 0.15,
				Keywords: []string{
					"deadline", "timeline", "by end of", "this month", "this quarter",
					"this year", "within", "weeks", "months", "urgent", "asap",
				},
				DefaultAssumption: "a decision is expected within the current quarter",
				Question:          "When does this decision need to be made?",
				Options:           timelineOptions,
			},
			{
				Name:   "stakeholders",
				Weight: 0.15,
				Keywords: []string{
					"stakeholder", "team", "customer", "board", "investor",
					"employee", "partner", "user", "client",
				},
				DefaultAssumption: "the primary stakeholders are the internal team and existing customers",
				Question:          "Who is most affected by this decision?",
				Options:           stakeholderOptions,
			},
			{
				Name:   "alternatives",
				Weight: 0.15,
				Keywords: []string{
					"option", "alternative", "versus", " vs ", "either",
					"instead", "compare", "or we could",
				},
				DefaultAssumption: "the realistic alternatives are proceeding, deferring, or not acting",
				Question:          "Which alternatives are already on the table?",
			},
			{
				Name:   "risk",
				Weight: 0.10,
				Keywords: []string{
					"risk", "worst case", "downside", "fail", "uncertain",
					"exposure", "liability",
				},
				DefaultAssumption: "moderate downside risk is acceptable if the expected value is positive",
				Question:          "What is the worst acceptable outcome?",
			},
		},
	},
	TypeStrategy: {
		Type: TypeStrategy,
		Dimensions: []Dimension{
			{
				Name:   "vision",
				Weight: 0.25,
				Keywords: []string{
					"vision", "long-term", "mission", "direction", "position",
					"five year", "3-year", "north star",
				},
				DefaultAssumption: "the strategic aim is sustainable growth in the current core market",
				Question:          "What long-term position is this strategy meant to reach?",
			},
			{
				Name:   "market",
				Weight: 0.20,
				Keywords: []string{
					"market", "competitor", "competition", "industry", "segment",
					"demand", "share", "trend",
				},
				DefaultAssumption: "the competitive landscape is stable with a small number of known rivals",
				Question:          "Which market or competitors does this strategy respond to?",
			},
			{
				Name:   "capabilities",
				Weight: 0.20,
				Keywords: []string{
					"capability", "strength", "asset", "advantage", "expertise",
					"technology", "talent", "capacity",
				},
				DefaultAssumption: "current capabilities are sufficient to execute without major hiring",
				Question:          "What existing capabilities can this strategy build on?",
			},
			{
				Name:   "timeline",
				Weight: 0.15,
				Keywords: []string{
					"deadline", "timeline", "horizon", "phase", "roadmap",
					"quarter", "year", "within",
				},
				DefaultAssumption: "the strategy is expected to show results within a year",
				Question:          "Over what horizon should this strategy play out?",
				Options:           timelineOptions,
			},
			{
				Name:   "constraints",
				Weight: 0.10,
				Keywords: []string{
					"budget", "constraint", "limit", "cannot", "resource",
					"regulation", "compliance",
				},
				DefaultAssumption: "funding and regulatory constraints are not binding in the near term",
				Question:          "What constraints bound the strategic options?",
			},
			{
				Name:   "risk",
				Weight: 0.10,
				Keywords: []string{
					"risk", "threat", "disruption", "worst case", "downside",
					"uncertain",
				},
				DefaultAssumption: "the main risk is competitive response rather than execution failure",
				Question:          "What could make this strategy fail?",
			},
		},
	},
	TypeProduct: {
		Type: TypeProduct,
		Dimensions: []Dimension{
			{
				Name:   "problem",
				Weight: 0.25,
				Keywords: []string{
					"problem", "pain", "need", "frustration", "gap",
					"complaint", "struggle", "job to be done",
				},
				DefaultAssumption: "the product addresses a validated user problem rather than a speculative one",
				Question:          "What user problem is this product decision solving?",
			},
			{
				Name:   "users",
				Weight: 0.20,
				Keywords: []string{
					"user", "customer", "audience", "persona", "segment",
					"adopter", "subscriber",
				},
				DefaultAssumption: "the target users are the existing active user base",
				Question:          "Who are the target users?",
				Options:           stakeholderOptions,
			},
			{
				Name:   "scope",
				Weight: 0.20,
				Keywords: []string{
					"feature", "scope", "mvp", "launch", "release", "roadmap",
					"build", "ship",
				},
				DefaultAssumption: "an incremental release is acceptable; a full launch is not required",
				Question:          "What is the minimum scope that would make this worthwhile?",
			},
			{
				Name:   "metrics",
				Weight: 0.15,
				Keywords: []string{
					"metric", "kpi", "retention", "conversion", "engagement",
					"revenue", "adoption", "measure",
				},
				DefaultAssumption: "success is measured by adoption and retention rather than direct revenue",
				Question:          "Which metric should this move?",
			},
			{
				Name:   "timeline",
				Weight: 0.10,
				Keywords: []string{
					"deadline", "timeline", "sprint", "quarter", "launch date",
					"within", "weeks",
				},
				DefaultAssumption: "the team expects to ship within one or two quarters",
				Question:          "When does this need to ship?",
				Options:           timelineOptions,
			},
			{
				Name:   "risk",
				Weight: 0.10,
				Keywords: []string{
					"risk", "churn", "regression", "complexity", "debt",
					"downside",
				},
				DefaultAssumption: "the main risk is added complexity rather than user backlash",
				Question:          "What is the biggest risk of building this?",
			},
		},
	},
	TypeGeneral: {
		Type: TypeGeneral,
		Dimensions: []Dimension{
			{
				Name:   "objective",
				Weight: 0.30,
				Keywords: []string{
					"goal", "objective", "decide", "should", "want",
					"achieve", "choose", "whether",
				},
				DefaultAssumption: "the goal is the outcome with the best overall balance of benefit and effort",
				Question:          "What does a good outcome look like?",
			},
			{
				Name:   "context",
				Weight: 0.25,
				Keywords: []string{
					"because", "currently", "situation", "background", "context",
					"so far", "right now",
				},
				DefaultAssumption: "the current situation is stable enough that the decision is not forced",
				Question:          "What background led to this question?",
			},
			{
				Name:   "alternatives",
				Weight: 0.20,
				Keywords: []string{
					"option", "alternative", "versus", " vs ", "either",
					"instead", "compare",
				},
				DefaultAssumption: "at least two realistic alternatives exist, including doing nothing",
				Question:          "Which alternatives are under consideration?",
			},
			{
				Name:   "timeline",
				Weight: 0.15,
				Keywords: []string{
					"deadline", "timeline", "soon", "urgent", "within",
					"by ", "week", "month",
				},
				DefaultAssumption: "there is no hard deadline but sooner is preferred",
				Question:          "How soon is a decision needed?",
				Options:           timelineOptions,
			},
			{
				Name:   "constraints",
				Weight: 0.10,
				Keywords: []string{
					"budget", "constraint", "limit", "cannot", "only",
					"resource",
				},
				DefaultAssumption: "no constraint rules out any of the alternatives outright",
				Question:          "What constraints narrow the choice?",
			},
		},
	},
}

// typeKeywords drive debate-type inference. Checked in priority order:
// business_decision, strategy, product; general is the fallback.
var typeKeywords = []struct {
	t        DebateType
	keywords []string
}{
	{TypeBusinessDecision, []string{
		"invest", "acquire", "acquisition", "budget", "hire", "vendor",
		"roi", "revenue", "pricing", "contract", "merger", "business",
	}},
	{TypeStrategy, []string{
		"strategy", "strategic", "market entry", "expansion", "compete",
		"positioning", "long-term", "pivot",
	}},
	{TypeProduct, []string{
		"product", "feature", "launch", "roadmap", "mvp", "release",
		"user experience", "app",
	}},
}

// ModelFor returns the dimension model for the given type. Unknown types
// fall back to the general model.
func ModelFor(t DebateType) Model {
	if m, ok := models[t]; ok {
		return m
	}
	return models[TypeGeneral]
}

// InferType guesses the debate type from free text by keyword matching.
// The first type with any hit wins, in priority order; general is returned
// when nothing matches.
func InferType(input string) DebateType {
	lower := strings.ToLower(input)
	for _, tk := range typeKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				return tk.t
			}
		}
	}
	return TypeGeneral
}

// Types returns all known debate types in priority order.
func Types() []DebateType {
	return []DebateType{TypeBusinessDecision, TypeStrategy, TypeProduct, TypeGeneral}
}
