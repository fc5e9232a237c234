package arggraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"agora/internal/debate"
)

func msg(id, author string, round int, content string) debate.Message {
	return debate.Message{ID: id, AuthorID: author, Round: round, Content: content}
}

func sampleTranscript() []debate.Message {
	return []debate.Message{
		msg("m1", "analyst", 1,
			"Because the unit economics are strong, option a is attractive. "+
				"This means option a should be our default. "),
		msg("m2", "skeptic", 1,
			"However, the unit economics look strong only before churn, so option a is riskier than it appears."),
		msg("m3", "strategist", 2,
			"I agree with the analyst that option a is attractive because the unit economics are strong. "+
				"Therefore option a is the strongest path."),
	}
}

func TestBuild_Classification(t *testing.T) {
	g := NewBuilder().Build("d1", sampleTranscript())

	byType := g.NodesByType()
	if byType[NodePremise] == 0 {
		t.Error("expected at least one premise (causal language)")
	}
	if byType[NodeConclusion] == 0 {
		t.Error("expected at least one conclusion (evaluative language)")
	}
	if byType[NodeObjection] == 0 {
		t.Error("expected at least one objection (contradiction marker)")
	}
	if byType[NodeSupport] == 0 {
		t.Error("expected at least one support (agreement marker)")
	}
	for _, n := range g.Nodes {
		if n.Strength < 0 || n.Strength > 1 {
			t.Errorf("node %s strength out of range: %f", n.ID, n.Strength)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	b := NewBuilder()
	g1 := b.Build("d1", sampleTranscript())
	g2 := b.Build("d1", sampleTranscript())
	if diff := cmp.Diff(g1, g2); diff != "" {
		t.Errorf("graphs differ across identical runs (-first +second):\n%s", diff)
	}
	if len(g1.Nodes) == 0 || len(g1.Edges) == 0 {
		t.Fatalf("expected non-trivial graph, got %d nodes / %d edges", len(g1.Nodes), len(g1.Edges))
	}
}

func TestBuild_NodeIDsDependOnDebate(t *testing.T) {
	b := NewBuilder()
	g1 := b.Build("d1", sampleTranscript())
	g2 := b.Build("d2", sampleTranscript())
	if g1.Nodes[0].ID == g2.Nodes[0].ID {
		t.Error("node ids must be scoped to the debate id")
	}
}

func TestBuild_EdgePolarity(t *testing.T) {
	g := NewBuilder().Build("d1", sampleTranscript())

	var sawDisagree, sawAgreeOrSupport bool
	for _, e := range g.Edges {
		if e.Strength < 0 || e.Strength > 1 {
			t.Errorf("edge strength out of range: %f", e.Strength)
		}
		switch e.Type {
		case EdgeDisagreesWith, EdgeAttacks:
			sawDisagree = true
		case EdgeAgreesWith, EdgeSupports, EdgeCites:
			sawAgreeOrSupport = true
		}
	}
	if !sawDisagree {
		t.Error("skeptic's objection should produce an attacking/disagreeing edge")
	}
	if !sawAgreeOrSupport {
		t.Error("strategist's agreement should produce a supporting/agreeing edge")
	}
}

func TestBuild_SkipsModeratorAndSkippedTurns(t *testing.T) {
	msgs := sampleTranscript()
	intervention := debate.Message{
		ID: "mod1", AuthorID: debate.ModeratorID, Round: 1,
		Content:      "Because the debate is circling, therefore focus on costs.",
		Intervention: debate.InterventionDeepen,
	}
	skipped := debate.Message{ID: "s1", AuthorID: "ghost", Round: 1, Skipped: true}
	g := NewBuilder().Build("d1", append(msgs, intervention, skipped))

	for _, n := range g.Nodes {
		if n.ExpertID == debate.ModeratorID || n.ExpertID == "ghost" {
			t.Errorf("unexpected node from %s", n.ExpertID)
		}
	}
}

func TestSupportChainLengths(t *testing.T) {
	g := NewBuilder().Build("d1", sampleTranscript())
	lengths := g.SupportChainLengths()
	if len(lengths) == 0 {
		t.Fatal("expected conclusions with measurable chains")
	}
	var max int
	for _, l := range lengths {
		if l > max {
			max = l
		}
	}
	if max == 0 {
		t.Error("the strategist's conclusion should chain to supporting claims")
	}
}

func TestSupportChainLengths_SharedClaimCountsForDeeperBranch(t *testing.T) {
	// Diamond: the conclusion is supported both directly by claim a and
	// through claim b, which a also supports. The chain length must follow
	// the deeper branch (b then a) even though the direct branch visits a
	// first.
	g := &Graph{
		DebateID: "d1",
		Nodes: []Node{
			{ID: "c", Type: NodeConclusion},
			{ID: "a", Type: NodePremise},
			{ID: "b", Type: NodePremise},
		},
		Edges: []Edge{
			{From: "a", To: "c", Type: EdgeSupports, Strength: 0.8},
			{From: "b", To: "c", Type: EdgeSupports, Strength: 0.8},
			{From: "a", To: "b", Type: EdgeSupports, Strength: 0.8},
		},
	}
	lengths := g.SupportChainLengths()
	if len(lengths) != 1 || lengths[0] != 2 {
		t.Errorf("chain lengths = %v, want [2]", lengths)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First claim. Second claim! Third?")
	if len(got) != 3 {
		t.Errorf("got %d sentences, want 3: %v", len(got), got)
	}
}
