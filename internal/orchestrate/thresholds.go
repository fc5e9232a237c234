package orchestrate

import "time"

// Thresholds holds configurable threshold values for the round loop and the
// moderator policy. The stagnation and drift cutoffs are tunable rather
// than fixed heuristics; the defaults are documented by the tests.
type Thresholds struct {
	// EarlyStopConsensus stops the loop once consensus crosses it.
	EarlyStopConsensus float64 `yaml:"early_stop_consensus"`
	// StagnationOverlap: mean pairwise text overlap within a round at or
	// above this triggers a "deepen" intervention.
	StagnationOverlap float64 `yaml:"stagnation_overlap"`
	// StagnationDelta: consensus movement below this across the last two
	// rounds also counts as stagnation.
	StagnationDelta float64 `yaml:"stagnation_delta"`
	// DriftOverlap: mean overlap between the round and the question below
	// this counts as off-topic drift and triggers a "redirect".
	DriftOverlap float64 `yaml:"drift_overlap"`
	// HistoryCharBudget bounds prompt size; older rounds are compressed
	// (never dropped) once the verbatim history exceeds it.
	HistoryCharBudget int `yaml:"history_char_budget"`
	// CallTimeout bounds each expert invocation; a timed-out turn is
	// recorded as skipped rather than blocking the round.
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// DefaultThresholds returns conservative defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EarlyStopConsensus: 0.90,
		StagnationOverlap:  0.60,
		StagnationDelta:    0.02,
		DriftOverlap:       0.05,
		HistoryCharBudget:  4000,
		CallTimeout:        60 * time.Second,
	}
}
