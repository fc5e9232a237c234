// Package consensus converts free-form expert output into comparable
// numeric signals: a confidence-weighted agreement score, quality metrics,
// and the final option ranking. All functions are pure over the message
// stream, so recomputing on the same prefix yields the same numbers.
package consensus

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"agora/internal/arggraph"
	"agora/internal/debate"
)

// Preference is one expert's currently stated preferred option.
type Preference struct {
	ExpertID   string
	Option     string
	Confidence float64
}

var (
	preferencePattern = regexp.MustCompile(
		`(?:recommend|prefer)\s+(.+?)(?:\s+with\s+confidence|[.,;:!?]|$)`)
	confidencePattern = regexp.MustCompile(
		`confidence\s+(1(?:\.0+)?|0?\.\d+)`)
)

// defaultConfidence is assumed when an expert states a preference without
// quantifying it.
const defaultConfidence = 0.5

// ExtractPreferences scans the ordered message stream and returns each
// expert's latest stated preference, in first-spoken expert order.
func ExtractPreferences(messages []debate.Message) []Preference {
	latest := make(map[string]Preference)
	var order []string

	for _, m := range messages {
		if m.Skipped || m.AuthorID == debate.ModeratorID {
			continue
		}
		option, confidence, explicit, ok := parsePreference(m.Content)
		if !ok {
			continue
		}
		prev, seen := latest[m.AuthorID]
		if !seen {
			order = append(order, m.AuthorID)
		}
		// Restating the same option without quantifying it does not walk
		// the expert's stated confidence back to the default.
		if !explicit && seen && prev.Option == option {
			confidence = prev.Confidence
		}
		latest[m.AuthorID] = Preference{ExpertID: m.AuthorID, Option: option, Confidence: confidence}
	}

	out := make([]Preference, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}

// parsePreference pulls "recommend <option> [with confidence N]" phrasing
// out of message text. explicit reports whether the confidence figure was
// stated rather than defaulted.
func parsePreference(content string) (option string, confidence float64, explicit, ok bool) {
	lower := strings.ToLower(content)
	m := preferencePattern.FindStringSubmatch(lower)
	if m == nil {
		return "", 0, false, false
	}
	option = strings.Join(strings.Fields(m[1]), " ")
	if option == "" {
		return "", 0, false, false
	}
	confidence = defaultConfidence
	if c := confidencePattern.FindStringSubmatch(lower); c != nil {
		if v, err := strconv.ParseFloat(c[1], 64); err == nil && v > 0 && v <= 1 {
			confidence = v
			explicit = true
		}
	}
	return option, confidence, explicit, true
}

// Score returns the consensus score in [0,1]: the confidence-weighted share
// of experts backing the modal option, evaluated at every round boundary
// of the message stream with the running maximum kept. The prefix maximum
// makes the score monotone non-decreasing under agreement-only extensions
// even when a restatement carries less weight than the original claim.
func Score(messages []debate.Message) float64 {
	var best float64
	for i := 1; i <= len(messages); i++ {
		if i == len(messages) || messages[i].Round != messages[i-1].Round {
			if s := modalShare(messages[:i]); s > best {
				best = s
			}
		}
	}
	return best
}

// modalShare is the single-pass score over one message prefix: the modal
// option's share of total expressed confidence.
func modalShare(messages []debate.Message) float64 {
	prefs := ExtractPreferences(messages)
	if len(prefs) == 0 {
		return 0
	}
	weights := make(map[string]float64)
	var total float64
	for _, p := range prefs {
		weights[p.Option] += p.Confidence
		total += p.Confidence
	}
	if total == 0 {
		return 0
	}
	var best float64
	for _, w := range weights {
		if w > best {
			best = w
		}
	}
	return best / total
}

// Quality derives the per-debate quality metrics from the argument graph
// and the transcript. All values are in [0,1].
func Quality(g *arggraph.Graph, messages []debate.Message) debate.QualityMetrics {
	depth := depthScore(g)
	balance := balanceScore(g)
	originality := originalityScore(messages)
	return debate.QualityMetrics{
		DepthScore:       depth,
		BalanceScore:     balance,
		OriginalityScore: originality,
		OverallScore:     0.4*depth + 0.3*balance + 0.3*originality,
	}
}

// depthScore normalizes the mean support-chain length behind conclusions.
// A mean chain of four claims or more scores 1.
func depthScore(g *arggraph.Graph) float64 {
	lengths := g.SupportChainLengths()
	if len(lengths) == 0 {
		return 0
	}
	var sum int
	for _, l := range lengths {
		sum += l
	}
	mean := float64(sum) / float64(len(lengths))
	if mean > 4 {
		mean = 4
	}
	return mean / 4
}

// balanceScore rewards a healthy mix of objection and support claims.
// All-objections or all-support both score 0.
func balanceScore(g *arggraph.Graph) float64 {
	counts := g.NodesByType()
	obj := counts[arggraph.NodeObjection]
	sup := counts[arggraph.NodeSupport]
	total := obj + sup
	if total == 0 {
		return 0.5
	}
	share := float64(obj) / float64(total)
	return 1 - 2*abs(share-0.5)
}

// originalityScore penalizes near-duplicate content across experts within
// the same round: 1 minus the mean of per-round maximum pairwise similarity.
func originalityScore(messages []debate.Message) float64 {
	byRound := make(map[int][]debate.Message)
	var rounds []int
	for _, m := range messages {
		if m.Skipped || m.AuthorID == debate.ModeratorID {
			continue
		}
		if _, ok := byRound[m.Round]; !ok {
			rounds = append(rounds, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	var sum float64
	var counted int
	for _, r := range rounds {
		msgs := byRound[r]
		if len(msgs) < 2 {
			continue
		}
		var max float64
		for i := 0; i < len(msgs); i++ {
			for j := i + 1; j < len(msgs); j++ {
				if s := arggraph.Similarity(msgs[i].Content, msgs[j].Content); s > max {
					max = s
				}
			}
		}
		sum += max
		counted++
	}
	if counted == 0 {
		return 1
	}
	return 1 - sum/float64(counted)
}

// Ranking produces the final option ranking from the transcript and graph.
// Entries are sorted by score descending, option label ascending for ties;
// scores are 0-100.
func Ranking(messages []debate.Message, g *arggraph.Graph) []debate.RankingEntry {
	prefs := ExtractPreferences(messages)
	if len(prefs) == 0 {
		return nil
	}

	type bucket struct {
		supporters []string
		confSum    float64
	}
	buckets := make(map[string]*bucket)
	var options []string
	var total float64
	for _, p := range prefs {
		b, ok := buckets[p.Option]
		if !ok {
			b = &bucket{}
			buckets[p.Option] = b
			options = append(options, p.Option)
		}
		b.supporters = append(b.supporters, p.ExpertID)
		b.confSum += p.Confidence
		total += p.Confidence
	}

	entries := make([]debate.RankingEntry, 0, len(options))
	for _, opt := range options {
		b := buckets[opt]
		pros, cons := prosAndCons(g, opt)
		entries = append(entries, debate.RankingEntry{
			Option:     opt,
			Score:      100 * b.confSum / total,
			Supporters: b.supporters,
			Pros:       pros,
			Cons:       cons,
			Confidence: b.confSum / float64(len(b.supporters)),
			Reasoning: fmt.Sprintf("%d of %d experts favored %q with mean confidence %.2f",
				len(b.supporters), len(prefs), opt, b.confSum/float64(len(b.supporters))),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Option < entries[j].Option
	})
	return entries
}

// prosAndCons collects up to three supporting and three objecting claims
// that mention the option.
func prosAndCons(g *arggraph.Graph, option string) (pros, cons []string) {
	if g == nil {
		return nil, nil
	}
	for _, n := range g.Nodes {
		if !strings.Contains(strings.ToLower(n.Content), option) {
			continue
		}
		switch n.Type {
		case arggraph.NodeObjection:
			if len(cons) < 3 {
				cons = append(cons, n.Content)
			}
		case arggraph.NodeSupport, arggraph.NodePremise:
			if len(pros) < 3 {
				pros = append(pros, n.Content)
			}
		}
	}
	return pros, cons
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
