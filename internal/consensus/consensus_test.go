package consensus

import (
	"testing"

	"agora/internal/arggraph"
	"agora/internal/debate"
)

func msg(id, author string, round int, content string) debate.Message {
	return debate.Message{ID: id, AuthorID: author, Round: round, Content: content}
}

func splitRound() []debate.Message {
	return []debate.Message{
		msg("m1", "analyst", 1, "Because margins grow, I recommend option a with confidence 0.7."),
		msg("m2", "skeptic", 1, "However, I recommend option b with confidence 0.6 given the churn risk."),
		msg("m3", "strategist", 1, "I recommend option a with confidence 0.5 because the market rewards scale."),
	}
}

func agreeingRound(round int) []debate.Message {
	return []debate.Message{
		msg("a1", "analyst", round, "I agree, therefore I recommend option a with confidence 0.9."),
		msg("a2", "skeptic", round, "The churn argument fell apart, so I recommend option a with confidence 0.8."),
		msg("a3", "strategist", round, "Building on that, I recommend option a with confidence 0.9."),
	}
}

func TestExtractPreferences_LatestWins(t *testing.T) {
	msgs := append(splitRound(), agreeingRound(2)...)
	prefs := ExtractPreferences(msgs)
	if len(prefs) != 3 {
		t.Fatalf("got %d preferences, want 3", len(prefs))
	}
	for _, p := range prefs {
		if p.Option != "option a" {
			t.Errorf("%s: option %q, want option a (latest statement wins)", p.ExpertID, p.Option)
		}
	}
	// First-spoken order is preserved.
	if prefs[0].ExpertID != "analyst" || prefs[1].ExpertID != "skeptic" {
		t.Errorf("preference order: %+v", prefs)
	}
}

func TestExtractPreferences_ParsesConfidence(t *testing.T) {
	prefs := ExtractPreferences(splitRound())
	if prefs[0].Confidence != 0.7 {
		t.Errorf("analyst confidence = %v, want 0.7", prefs[0].Confidence)
	}
	unquantified := []debate.Message{msg("m", "x", 1, "I recommend option c.")}
	p := ExtractPreferences(unquantified)
	if len(p) != 1 || p[0].Confidence != defaultConfidence {
		t.Errorf("unquantified preference: %+v", p)
	}
}

func TestExtractPreferences_RestatementKeepsConfidence(t *testing.T) {
	msgs := []debate.Message{
		msg("m1", "analyst", 1, "I recommend option x with confidence 0.9."),
		msg("m2", "analyst", 2, "I agree with my earlier view and I recommend option x."),
	}
	prefs := ExtractPreferences(msgs)
	if len(prefs) != 1 || prefs[0].Confidence != 0.9 {
		t.Errorf("restatement walked confidence back: %+v", prefs)
	}

	// Switching options without quantifying does fall back to the default;
	// the old confidence belonged to a different claim.
	switched := append(msgs, msg("m3", "analyst", 3, "On reflection I recommend option y."))
	prefs = ExtractPreferences(switched)
	if len(prefs) != 1 || prefs[0].Option != "option y" || prefs[0].Confidence != defaultConfidence {
		t.Errorf("switched preference: %+v", prefs)
	}
}

func TestScore_EmptyAndSplit(t *testing.T) {
	if got := Score(nil); got != 0 {
		t.Errorf("Score(nil) = %v, want 0", got)
	}
	split := Score(splitRound())
	if split <= 0 || split >= 1 {
		t.Errorf("split round score = %v, want strictly between 0 and 1", split)
	}
}

func TestScore_MonotoneUnderAgreeingExtension(t *testing.T) {
	prefix := splitRound()
	before := Score(prefix)

	extended := append(append([]debate.Message{}, prefix...), agreeingRound(2)...)
	after := Score(extended)
	if after < before {
		t.Errorf("agreeing extension lowered consensus: %v -> %v", before, after)
	}

	// A further all-agreeing round cannot lower it either.
	more := append(append([]debate.Message{}, extended...), agreeingRound(3)...)
	final := Score(more)
	if final < after {
		t.Errorf("second agreeing extension lowered consensus: %v -> %v", after, final)
	}
	if final < 0.99 {
		t.Errorf("unanimous debate should score ~1, got %v", final)
	}
}

func TestScore_MonotoneUnderUnquantifiedRestatement(t *testing.T) {
	prefix := []debate.Message{
		msg("m1", "analyst", 1, "I recommend option x with confidence 0.9."),
		msg("m2", "skeptic", 1, "I recommend option y with confidence 0.5."),
	}
	before := Score(prefix)

	// The modal expert re-affirms without restating a confidence figure;
	// the agreeing extension must not shrink the modal weight share.
	extended := append(append([]debate.Message{}, prefix...),
		msg("m3", "analyst", 2, "I agree with my earlier view and I recommend option x."))
	after := Score(extended)
	if after < before {
		t.Errorf("agreeing-only extension lowered consensus: %v -> %v", before, after)
	}
}

func TestScore_Idempotent(t *testing.T) {
	msgs := append(splitRound(), agreeingRound(2)...)
	if Score(msgs) != Score(msgs) {
		t.Error("score differs across identical runs")
	}
}

func TestQuality_RangesAndIdempotence(t *testing.T) {
	msgs := append(splitRound(), agreeingRound(2)...)
	g := arggraph.NewBuilder().Build("d1", msgs)

	q1 := Quality(g, msgs)
	q2 := Quality(g, msgs)
	if q1 != q2 {
		t.Errorf("quality differs across identical runs: %+v vs %+v", q1, q2)
	}
	for name, v := range map[string]float64{
		"overall":     q1.OverallScore,
		"depth":       q1.DepthScore,
		"balance":     q1.BalanceScore,
		"originality": q1.OriginalityScore,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, out of [0,1]", name, v)
		}
	}
}

func TestOriginality_PenalizesDuplicates(t *testing.T) {
	distinct := splitRound()
	clones := []debate.Message{
		msg("c1", "analyst", 1, "I recommend option a because the unit economics support expansion now."),
		msg("c2", "skeptic", 1, "I recommend option a because the unit economics support expansion now."),
	}
	if originalityScore(clones) >= originalityScore(distinct) {
		t.Errorf("near-duplicates should score lower: clones=%v distinct=%v",
			originalityScore(clones), originalityScore(distinct))
	}
}

func TestBalance_Extremes(t *testing.T) {
	allObjections := &arggraph.Graph{Nodes: []arggraph.Node{
		{ID: "1", Type: arggraph.NodeObjection},
		{ID: "2", Type: arggraph.NodeObjection},
	}}
	mixed := &arggraph.Graph{Nodes: []arggraph.Node{
		{ID: "1", Type: arggraph.NodeObjection},
		{ID: "2", Type: arggraph.NodeSupport},
	}}
	if balanceScore(allObjections) >= balanceScore(mixed) {
		t.Error("one-sided debates should score lower balance than mixed ones")
	}
	if balanceScore(mixed) != 1 {
		t.Errorf("perfectly mixed balance = %v, want 1", balanceScore(mixed))
	}
}

func TestRanking(t *testing.T) {
	msgs := splitRound()
	g := arggraph.NewBuilder().Build("d1", msgs)
	entries := Ranking(msgs, g)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (option a, option b)", len(entries))
	}
	if entries[0].Option != "option a" {
		t.Errorf("top option = %q, want option a", entries[0].Option)
	}
	if entries[0].Score <= entries[1].Score {
		t.Error("ranking must be sorted by score descending")
	}
	var sum float64
	for _, e := range entries {
		sum += e.Score
		if e.Confidence <= 0 || e.Confidence > 1 {
			t.Errorf("%s: confidence %v out of range", e.Option, e.Confidence)
		}
		if len(e.Supporters) == 0 || e.Reasoning == "" {
			t.Errorf("%s: missing supporters or reasoning", e.Option)
		}
	}
	if sum < 99.9 || sum > 100.1 {
		t.Errorf("scores should sum to 100, got %v", sum)
	}
}

func TestRanking_EmptyTranscript(t *testing.T) {
	if entries := Ranking(nil, nil); entries != nil {
		t.Errorf("expected nil ranking, got %+v", entries)
	}
}
