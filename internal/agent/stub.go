package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agora/internal/panel"
)

// Stub is a deterministic invoker for tests and offline demo runs. Replies
// come from a script keyed by expert id and per-expert call number (1-based),
// so a given call sequence always produces the same transcript.
// Thread-safe: the call counter is mutex-protected for concurrent fan-out.
type Stub struct {
	Script  func(expertID string, call int) (Reply, error)
	Latency map[string]time.Duration // optional per-expert artificial delay

	mu    sync.Mutex
	calls map[string]int
}

// NewStub returns a stub backed by the given script. A nil script uses
// ConvergingScript with two generic options converging on the second round.
func NewStub(script func(expertID string, call int) (Reply, error)) *Stub {
	if script == nil {
		script = ConvergingScript([]string{"Option A", "Option B"}, 2)
	}
	return &Stub{Script: script, calls: make(map[string]int)}
}

func (s *Stub) Invoke(ctx context.Context, expert panel.Expert, _ string, _ []string) (Reply, error) {
	s.mu.Lock()
	s.calls[expert.ID]++
	call := s.calls[expert.ID]
	s.mu.Unlock()

	if d := s.Latency[expert.ID]; d > 0 {
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-time.After(d):
		}
	}
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	return s.Script(expert.ID, call)
}

// Calls returns how many times the given expert has been invoked.
func (s *Stub) Calls(expertID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[expertID]
}

// ConvergingScript produces a debate that starts split across the given
// options and converges on the first option from round convergeAt onward.
// The text deliberately carries causal, evaluative, and agreement markers so
// scoring and graph extraction have something to chew on.
func ConvergingScript(options []string, convergeAt int) func(expertID string, call int) (Reply, error) {
	if len(options) == 0 {
		options = []string{"Option A"}
	}
	return func(expertID string, call int) (Reply, error) {
		var text string
		if call < convergeAt {
			// Spread initial preferences across options by expert id hash.
			opt := options[pick(expertID)%len(options)]
			text = fmt.Sprintf(
				"Because the stated constraints favor it, I recommend %s with confidence 0.6. "+
					"However, the downside risk deserves scrutiny. This means we should compare execution costs before committing.",
				opt)
		} else {
			text = fmt.Sprintf(
				"I agree with the emerging view: I recommend %s with confidence 0.9. "+
					"Because the earlier cost argument holds, this means %s is the strongest path. Therefore we should proceed.",
				options[0], options[0])
		}
		tokens := len(text) / 4
		return Reply{Text: text, TokensUsed: tokens, CostUSD: float64(tokens) * 0.00002}, nil
	}
}

// pick maps an expert id to a stable small integer.
func pick(id string) int {
	h := 0
	for _, r := range id {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	return h
}

// FailingScript wraps a script so that the given expert always fails with
// err. Useful for degraded-turn and retry-exhaustion tests.
func FailingScript(inner func(string, int) (Reply, error), failID string, err error) func(string, int) (Reply, error) {
	return func(expertID string, call int) (Reply, error) {
		if expertID == failID {
			return Reply{}, err
		}
		return inner(expertID, call)
	}
}
