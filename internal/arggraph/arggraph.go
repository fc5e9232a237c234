// Package arggraph reifies debate transcripts into a directed graph of
// claims and relations. Extraction is deterministic: the same transcript
// always yields the same node ids, edges, and attributes, so callers may
// cache by debate id and invalidate only when new rounds are sealed.
package arggraph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"agora/internal/debate"
)

// NodeType classifies an extracted claim.
type NodeType string

const (
	NodePremise    NodeType = "premise"
	NodeConclusion NodeType = "conclusion"
	NodeObjection  NodeType = "objection"
	NodeSupport    NodeType = "support"
)

// EdgeType classifies a directed relation between two claims.
type EdgeType string

const (
	EdgeSupports      EdgeType = "supports"
	EdgeAttacks       EdgeType = "attacks"
	EdgeCites         EdgeType = "cites"
	EdgeAgreesWith    EdgeType = "agrees_with"
	EdgeDisagreesWith EdgeType = "disagrees_with"
)

// Node is one extracted claim, keyed by the message it originated from.
type Node struct {
	ID        string   `json:"id"`
	MessageID string   `json:"messageId"`
	Type      NodeType `json:"type"`
	ExpertID  string   `json:"expertId"`
	Round     int      `json:"round"`
	Content   string   `json:"content"`
	Strength  float64  `json:"strength"` // 0-1
}

// Edge is a directed relation from a later claim to an earlier one.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Type     EdgeType `json:"type"`
	Strength float64  `json:"strength"` // 0-1
}

// Graph is the derived argument structure for one debate.
type Graph struct {
	DebateID string `json:"debateId"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Builder extracts argument graphs. SimilarityThreshold is the tunable
// cutoff for cross-message reference edges.
type Builder struct {
	SimilarityThreshold float64
}

// DefaultSimilarityThreshold is the word-shingle Jaccard cutoff for edge
// inference.
const DefaultSimilarityThreshold = 0.35

// NewBuilder returns a builder with the default similarity threshold.
func NewBuilder() *Builder {
	return &Builder{SimilarityThreshold: DefaultSimilarityThreshold}
}

// structural marker sets, checked in precedence order
var (
	objectionMarkers = []string{
		"however", "disagree", "but ", "on the contrary", "not convinced",
		"that overlooks", "i caution", "object", "flawed",
	}
	supportMarkers = []string{
		"i agree", "agree with", "concur", "building on", "echo", "as noted",
		"rightly points out",
	}
	conclusionMarkers = []string{
		"this means", "therefore", "in conclusion", "we should", "i recommend",
		"the strongest path", "the best choice",
	}
	premiseMarkers = []string{
		"because", "if ", "since ", "given that", "due to", "leads to", "causes",
	}
	citationMarkers = []string{
		"as the", "per the", "the earlier", "as mentioned", "cited",
	}
)

var optionPattern = regexp.MustCompile(`option [a-z0-9]+`)

// Build extracts the argument graph from the ordered message stream.
func (b *Builder) Build(debateID string, messages []debate.Message) *Graph {
	g := &Graph{DebateID: debateID}

	for _, m := range messages {
		if m.Skipped || m.AuthorID == debate.ModeratorID {
			continue
		}
		for idx, sentence := range splitSentences(m.Content) {
			nt, hits := classify(sentence)
			if nt == "" {
				continue
			}
			g.Nodes = append(g.Nodes, Node{
				ID:        nodeID(debateID, m.ID, idx),
				MessageID: m.ID,
				Type:      nt,
				ExpertID:  m.AuthorID,
				Round:     m.Round,
				Content:   sentence,
				Strength:  claimStrength(hits),
			})
		}
	}

	threshold := b.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	for j := 1; j < len(g.Nodes); j++ {
		for i := 0; i < j; i++ {
			from, to := g.Nodes[j], g.Nodes[i]
			if from.MessageID == to.MessageID {
				continue
			}
			et, strength := b.relate(from, to, threshold)
			if et == "" {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				From:     from.ID,
				To:       to.ID,
				Type:     et,
				Strength: strength,
			})
		}
	}
	return g
}

// relate decides whether a later claim references an earlier one and how.
func (b *Builder) relate(from, to Node, threshold float64) (EdgeType, float64) {
	lower := strings.ToLower(from.Content)
	sim := jaccard(wordSet(from.Content), wordSet(to.Content))

	// Explicit citation phrasing links even moderately similar claims.
	if hasAny(lower, citationMarkers) && sim >= threshold/2 {
		return EdgeCites, clamp(sim + 0.2)
	}
	// Naming the same option is itself a reference, whatever the rest of
	// the sentence looks like; agreement polarity decides the edge type.
	if opt := sharedOption(from.Content, to.Content); opt != "" {
		if from.Type == NodeObjection {
			return EdgeDisagreesWith, clamp(0.3 + sim)
		}
		return EdgeAgreesWith, clamp(0.3 + sim)
	}
	if sim < threshold {
		return "", 0
	}
	// Net polarity fallback.
	if from.Type == NodeObjection {
		return EdgeAttacks, clamp(sim)
	}
	return EdgeSupports, clamp(sim)
}

// classify maps a sentence to a node type by structural markers, returning
// the marker hit count. Precedence: objection, support, conclusion, premise.
func classify(sentence string) (NodeType, int) {
	lower := strings.ToLower(sentence)
	for _, set := range []struct {
		nt      NodeType
		markers []string
	}{
		{NodeObjection, objectionMarkers},
		{NodeSupport, supportMarkers},
		{NodeConclusion, conclusionMarkers},
		{NodePremise, premiseMarkers},
	} {
		if n := countHits(lower, set.markers); n > 0 {
			return set.nt, n
		}
	}
	return "", 0
}

func countHits(lower string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			n++
		}
	}
	return n
}

func hasAny(lower string, markers []string) bool {
	return countHits(lower, markers) > 0
}

// claimStrength maps marker density to a strength in [0.5, 0.95].
func claimStrength(hits int) float64 {
	s := 0.5 + 0.15*float64(hits-1)
	if s > 0.95 {
		s = 0.95
	}
	return s
}

// nodeID derives a stable id from the debate, message, and claim index.
func nodeID(debateID, messageID string, idx int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", debateID, messageID, idx)))
	return hex.EncodeToString(sum[:])[:12]
}

// sharedOption returns the option label mentioned by both texts, if any.
func sharedOption(a, b string) string {
	aOpts := optionPattern.FindAllString(strings.ToLower(a), -1)
	bOpts := optionPattern.FindAllString(strings.ToLower(b), -1)
	for _, x := range aOpts {
		for _, y := range bOpts {
			if x == y {
				return x
			}
		}
	}
	return ""
}

// splitSentences splits text on terminal punctuation, trimming whitespace.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(cur.String()); len(s) > 3 {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); len(s) > 3 {
		out = append(out, s)
	}
	return out
}

// wordSet lowers, strips punctuation, and keeps words longer than 3 runes.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

// Similarity returns the word-shingle Jaccard similarity of two texts in
// [0,1]. Shared by edge inference, the originality scorer, and the
// moderator's stagnation detection.
func Similarity(a, b string) float64 {
	return jaccard(wordSet(a), wordSet(b))
}

// jaccard computes intersection over union on word sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NodesByType counts nodes per type; used by the quality scorer.
func (g *Graph) NodesByType() map[NodeType]int {
	out := make(map[NodeType]int)
	for _, n := range g.Nodes {
		out[n.Type]++
	}
	return out
}

// SupportChainLengths returns, for each conclusion node, the longest chain
// of claims reachable from it through supporting relations (supports,
// cites, agrees_with). Used as the depth signal.
func (g *Graph) SupportChainLengths() []int {
	adj := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Type == EdgeSupports || e.Type == EdgeCites || e.Type == EdgeAgreesWith {
			// An edge runs from the later claim to the earlier claim it
			// supports; chains are walked backwards from conclusions.
			adj[e.To] = append(adj[e.To], e.From)
		}
	}
	var lengths []int
	for _, n := range g.Nodes {
		if n.Type != NodeConclusion {
			continue
		}
		seen := map[string]bool{n.ID: true}
		depth := walk(n.ID, adj, seen)
		lengths = append(lengths, depth)
	}
	return lengths
}

// walk returns the longest simple path below id. seen holds only the
// current path: entries are removed on backtrack, so a claim shared by two
// branches still counts toward the deeper one.
func walk(id string, adj map[string][]string, seen map[string]bool) int {
	best := 0
	for _, next := range adj[id] {
		if seen[next] {
			continue
		}
		seen[next] = true
		d := 1 + walk(next, adj, seen)
		delete(seen, next)
		if d > best {
			best = d
		}
	}
	return best
}
