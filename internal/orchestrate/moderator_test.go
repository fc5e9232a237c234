package orchestrate

import (
	"testing"

	"agora/internal/debate"
)

const modQuestion = "Should we migrate the billing platform this quarter?"

func modDebate(rounds int) *debate.Debate {
	d := debate.New("owner-1", modQuestion, debate.Context{})
	for i := 1; i <= rounds; i++ {
		d.Rounds = append(d.Rounds, debate.Round{Number: i})
	}
	return d
}

func msg(author, text string) debate.Message {
	return debate.NewMessage(2, author, text, 0, 0)
}

func TestModerateQuietWhenHealthy(t *testing.T) {
	msgs := []debate.Message{
		msg("a", "I recommend the phased migration because the billing platform carries fragile integrations."),
		msg("b", "Delaying past this quarter risks losing the budget window entirely."),
	}
	if m := moderate(DefaultThresholds(), modDebate(0), 1, msgs, 0, 0.6); m != nil {
		t.Fatalf("unexpected intervention: %s", m.Intervention)
	}
}

func TestModerateDeepenOnRepetition(t *testing.T) {
	same := "I recommend the phased migration because the billing platform carries fragile integrations."
	msgs := []debate.Message{msg("a", same), msg("b", same), msg("c", same)}

	m := moderate(DefaultThresholds(), modDebate(0), 1, msgs, 0, 0.6)
	if m == nil {
		t.Fatal("expected deepen intervention on repeated positions")
	}
	if m.Intervention != debate.InterventionDeepen {
		t.Errorf("intervention = %s, want deepen", m.Intervention)
	}
	if m.AuthorID != debate.ModeratorID {
		t.Errorf("author = %s, want moderator", m.AuthorID)
	}
}

func TestModerateDeepenOnFlatConsensus(t *testing.T) {
	msgs := []debate.Message{
		msg("a", "I recommend the phased migration because the billing platform carries fragile integrations."),
		msg("b", "Delaying past this quarter risks losing the budget window entirely."),
	}
	// Texts diverge, but consensus barely moved since the prior round.
	m := moderate(DefaultThresholds(), modDebate(1), 2, msgs, 0.50, 0.51)
	if m == nil || m.Intervention != debate.InterventionDeepen {
		t.Fatalf("intervention = %v, want deepen on flat consensus", m)
	}
}

func TestModerateRedirectOnDriftWinsOverStagnation(t *testing.T) {
	offTopic := "The weather forecast looks pleasant and lunch arrives soon."
	msgs := []debate.Message{msg("a", offTopic), msg("b", offTopic)}

	m := moderate(DefaultThresholds(), modDebate(1), 2, msgs, 0.50, 0.50)
	if m == nil {
		t.Fatal("expected redirect intervention")
	}
	if m.Intervention != debate.InterventionRedirect {
		t.Errorf("intervention = %s, want redirect even though the round also stagnated", m.Intervention)
	}
}

func TestModerateIgnoresFullySkippedRound(t *testing.T) {
	msgs := []debate.Message{
		debate.SkippedMessage(1, "a", "timeout"),
		debate.SkippedMessage(1, "b", "timeout"),
	}
	if m := moderate(DefaultThresholds(), modDebate(0), 1, msgs, 0, 0); m != nil {
		t.Fatalf("unexpected intervention for skipped-only round: %s", m.Intervention)
	}
}
