package orchestrate

import (
	"fmt"
	"strings"

	"agora/internal/debate"
)

// BuildPrompt assembles the per-round prompt context: the original question,
// accumulated context, and the history of prior rounds. Once the verbatim
// history exceeds historyBudget characters, rounds before the most recent
// one are compressed to one clipped sentence per message; nothing is ever
// dropped outright.
func BuildPrompt(d *debate.Debate, roundNum, historyBudget int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", d.Question)
	if d.Context.Background != "" {
		fmt.Fprintf(&b, "Background: %s\n", d.Context.Background)
	}
	for _, c := range d.Context.Constraints {
		fmt.Fprintf(&b, "Constraint: %s\n", c)
	}
	for _, extra := range d.Context.Additional {
		fmt.Fprintf(&b, "Additional context (%s): %s\n",
			extra.AddedAt.UTC().Format("2006-01-02 15:04"), extra.Text)
	}
	fmt.Fprintf(&b, "Round: %d of %d\n", roundNum, d.MaxRounds)

	history := historySection(d.Rounds, historyBudget)
	if history != "" {
		b.WriteString("\nDebate so far:\n")
		b.WriteString(history)
	}
	return b.String()
}

// historySection renders prior rounds. The most recent round stays verbatim;
// earlier rounds are summarized when the verbatim rendering would exceed the
// budget.
func historySection(rounds []debate.Round, budget int) string {
	if len(rounds) == 0 {
		return ""
	}
	verbatim := renderRounds(rounds, false)
	if budget <= 0 || len(verbatim) <= budget {
		return verbatim
	}
	older := renderRounds(rounds[:len(rounds)-1], true)
	recent := renderRounds(rounds[len(rounds)-1:], false)
	return older + recent
}

// renderRounds renders rounds either verbatim or compressed to a clipped
// first sentence per message.
func renderRounds(rounds []debate.Round, compressed bool) string {
	var b strings.Builder
	for _, r := range rounds {
		for _, m := range r.Messages {
			if m.Skipped {
				fmt.Fprintf(&b, "[round %d] %s: (no contribution: %s)\n", r.Number, m.AuthorID, m.SkipReason)
				continue
			}
			content := m.Content
			if compressed {
				content = firstSentence(content, 160)
			}
			fmt.Fprintf(&b, "[round %d] %s: %s\n", r.Number, m.AuthorID, content)
		}
	}
	return b.String()
}

// firstSentence clips text at the first sentence boundary, capped at max
// runes.
func firstSentence(text string, max int) string {
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 && idx+1 < len(text) {
		text = text[:idx+1]
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return text
}

// historyLines returns the prior-round transcript as invoker history, one
// line per non-skipped message.
func historyLines(rounds []debate.Round) []string {
	var out []string
	for _, r := range rounds {
		for _, m := range r.Messages {
			if m.Skipped {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", m.AuthorID, m.Content))
		}
	}
	return out
}
