package orchestrate

import (
	"fmt"

	"agora/internal/arggraph"
	"agora/internal/debate"
)

// moderate evaluates the meta-moderator policy after all experts of a round
// have responded and before the round is sealed. It returns at most one
// intervention message: "redirect" when the round drifted off-topic,
// "deepen" when the debate stagnated, nil otherwise. Drift wins when both
// signals fire.
func moderate(
	th Thresholds,
	d *debate.Debate,
	roundNum int,
	roundMsgs []debate.Message,
	prevConsensus, newConsensus float64,
) *debate.Message {
	spoken := make([]debate.Message, 0, len(roundMsgs))
	for _, m := range roundMsgs {
		if !m.Skipped {
			spoken = append(spoken, m)
		}
	}
	if len(spoken) == 0 {
		return nil
	}

	if questionOverlap(d.Question, spoken) < th.DriftOverlap {
		m := debate.NewMessage(roundNum, debate.ModeratorID,
			fmt.Sprintf("The discussion has drifted from the question. Refocus on: %s", d.Question), 0, 0)
		m.Intervention = debate.InterventionRedirect
		return &m
	}

	stagnated := meanPairwiseOverlap(spoken) >= th.StagnationOverlap
	if !stagnated && len(d.Rounds) >= 1 {
		stagnated = abs(newConsensus-prevConsensus) < th.StagnationDelta
	}
	if stagnated {
		m := debate.NewMessage(roundNum, debate.ModeratorID,
			"Positions are repeating without new ground. Each expert should surface one argument or risk not yet discussed, and address the strongest opposing point directly.", 0, 0)
		m.Intervention = debate.InterventionDeepen
		return &m
	}
	return nil
}

// meanPairwiseOverlap measures textual overlap across the experts of one
// round; high values mean the experts are saying the same thing.
func meanPairwiseOverlap(msgs []debate.Message) float64 {
	if len(msgs) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(msgs); i++ {
		for j := i + 1; j < len(msgs); j++ {
			sum += arggraph.Similarity(msgs[i].Content, msgs[j].Content)
			pairs++
		}
	}
	return sum / float64(pairs)
}

// questionOverlap measures how much the round still talks about the
// question.
func questionOverlap(question string, msgs []debate.Message) float64 {
	var sum float64
	for _, m := range msgs {
		sum += arggraph.Similarity(question, m.Content)
	}
	return sum / float64(len(msgs))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
