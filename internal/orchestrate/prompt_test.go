package orchestrate

import (
	"strings"
	"testing"
	"time"

	"agora/internal/debate"
)

func promptDebate() *debate.Debate {
	d := debate.New("owner-1", "Which vendor should we pick?", debate.Context{
		Background:  "Two vendors remain after the first screening.",
		Constraints: []string{"Contract must be signed this month."},
	})
	d.MaxRounds = 4
	return d
}

func TestBuildPromptIncludesContext(t *testing.T) {
	d := promptDebate()
	d.Context.Additional = append(d.Context.Additional, debate.ContextEntry{
		Text:    "Vendor B just cut their price by ten percent.",
		AddedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	})

	got := BuildPrompt(d, 2, 4000)
	for _, want := range []string{
		"Question: Which vendor should we pick?",
		"Background: Two vendors remain",
		"Constraint: Contract must be signed this month.",
		"Additional context (2026-03-01 09:30): Vendor B just cut their price",
		"Round: 2 of 4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Debate so far") {
		t.Error("empty history should not render a history section")
	}
}

func TestBuildPromptHistoryVerbatimUnderBudget(t *testing.T) {
	d := promptDebate()
	d.Rounds = []debate.Round{{
		Number: 1,
		Messages: []debate.Message{
			debate.NewMessage(1, "a", "Vendor A has the stronger support record.", 10, 0.001),
		},
	}}

	got := BuildPrompt(d, 2, 4000)
	if !strings.Contains(got, "Debate so far:") {
		t.Fatal("history header missing")
	}
	if !strings.Contains(got, "[round 1] a: Vendor A has the stronger support record.") {
		t.Errorf("verbatim history missing from prompt:\n%s", got)
	}
}

func TestBuildPromptCompressesOlderRounds(t *testing.T) {
	d := promptDebate()
	d.Rounds = []debate.Round{
		{Number: 1, Messages: []debate.Message{
			debate.NewMessage(1, "a", "Pick vendor A. The longer tail of this argument lists every integration detail and would blow the prompt budget if kept verbatim.", 0, 0),
		}},
		{Number: 2, Messages: []debate.Message{
			debate.NewMessage(2, "b", "Hold the decision. Additional elaboration follows with plenty of supporting words.", 0, 0),
		}},
	}

	got := BuildPrompt(d, 3, 60)
	if !strings.Contains(got, "[round 1] a: Pick vendor A.") {
		t.Errorf("older round not clipped to first sentence:\n%s", got)
	}
	if strings.Contains(got, "longer tail") {
		t.Error("older round kept verbatim despite exceeding the budget")
	}
	if !strings.Contains(got, "Additional elaboration follows with plenty of supporting words.") {
		t.Error("most recent round must stay verbatim")
	}
}

func TestBuildPromptRendersSkippedTurns(t *testing.T) {
	d := promptDebate()
	d.Rounds = []debate.Round{{
		Number:   1,
		Messages: []debate.Message{debate.SkippedMessage(1, "c", "timeout")},
	}}

	got := BuildPrompt(d, 2, 4000)
	if !strings.Contains(got, "[round 1] c: (no contribution: timeout)") {
		t.Errorf("skipped turn not rendered:\n%s", got)
	}
}

func TestHistoryLinesSkipsDegradedTurns(t *testing.T) {
	rounds := []debate.Round{{
		Number: 1,
		Messages: []debate.Message{
			debate.NewMessage(1, "a", "Vendor A.", 0, 0),
			debate.SkippedMessage(1, "b", "content rejected"),
		},
	}}

	got := historyLines(rounds)
	if len(got) != 1 {
		t.Fatalf("history lines = %d, want 1", len(got))
	}
	if got[0] != "a: Vendor A." {
		t.Errorf("line = %q", got[0])
	}
}
