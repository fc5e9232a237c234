// Package orchestrate drives the debate state machine: the round loop,
// concurrent expert fan-out, moderator interventions, and completion. One
// debate executes its loop as a single logical task; within a round the
// expert invocations run concurrently but results are appended in expert
// assignment order, so transcripts are reproducible regardless of network
// timing.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"agora/internal/agent"
	"agora/internal/arggraph"
	"agora/internal/consensus"
	"agora/internal/debate"
	"agora/internal/logging"
	"agora/internal/store"
)

var (
	// ErrConcurrentStart is returned when a round loop is already running
	// for the same debate id.
	ErrConcurrentStart = errors.New("a round loop is already running for this debate")
	// ErrNoProgress marks a fatal round in which no expert responded.
	ErrNoProgress = errors.New("no expert responded in a round")
	// ErrPaused is returned when starting a paused debate without resuming.
	ErrPaused = errors.New("debate is paused")
)

// RunnerConfig bundles the tunables of the round loop.
type RunnerConfig struct {
	Thresholds Thresholds
	Retry      agent.RetryConfig
}

// DefaultRunnerConfig returns a RunnerConfig with sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Thresholds: DefaultThresholds(),
		Retry:      agent.DefaultRetryConfig(),
	}
}

// Runner executes debate round loops against a store and an invoker.
// Safe for concurrent use across distinct debates; a per-debate guard
// rejects concurrent loops for the same id.
type Runner struct {
	store   store.Store
	invoker agent.Invoker
	cfg     RunnerConfig
	builder *arggraph.Builder
	log     *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewRunner wires a runner. The builder's similarity threshold follows the
// default unless the caller swaps the builder afterwards.
func NewRunner(st store.Store, inv agent.Invoker, cfg RunnerConfig) *Runner {
	return &Runner{
		store:   st,
		invoker: inv,
		cfg:     cfg,
		builder: arggraph.NewBuilder(),
		log:     logging.New("orchestrate"),
		running: make(map[string]bool),
	}
}

// Running reports whether a round loop is currently executing for the
// debate. Callers must not hard-delete a debate while this is true.
func (r *Runner) Running(debateID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running[debateID]
}

func (r *Runner) acquire(debateID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[debateID] {
		return false
	}
	r.running[debateID] = true
	return true
}

func (r *Runner) release(debateID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, debateID)
}

// Reserve marks the debate id busy so no round loop can start while the
// caller works on it, for example during a hard delete. It returns a
// release func, or ErrConcurrentStart if a loop already holds the id.
func (r *Runner) Reserve(debateID string) (func(), error) {
	if !r.acquire(debateID) {
		return nil, fmt.Errorf("%w: %s", ErrConcurrentStart, debateID)
	}
	return func() { r.release(debateID) }, nil
}

// Start runs the round loop for a pending (or resumed in-progress) debate
// until completion, failure, round exhaustion, or a pause boundary. At most
// one loop runs per debate id; a second caller gets ErrConcurrentStart.
func (r *Runner) Start(ctx context.Context, debateID, callerID string) error {
	if !r.acquire(debateID) {
		return fmt.Errorf("%w: %s", ErrConcurrentStart, debateID)
	}
	defer r.release(debateID)

	d, err := r.store.GetDebate(debateID)
	if err != nil {
		return err
	}
	if err := d.Authorize(callerID); err != nil {
		return err
	}

	switch d.Status {
	case debate.StatusPending:
		if err := d.Transition(debate.StatusInProgress); err != nil {
			return err
		}
		if err := r.store.UpdateDebate(d); err != nil {
			return fmt.Errorf("persist start: %w", err)
		}
		r.log.Info("debate started", "debate", d.ID, "experts", len(d.Experts), "max_rounds", d.MaxRounds)
	case debate.StatusInProgress:
		if d.Paused {
			return fmt.Errorf("%w: %s", ErrPaused, d.ID)
		}
		r.log.Info("debate resumed", "debate", d.ID, "rounds_done", len(d.Rounds))
	default:
		return fmt.Errorf("%w: cannot start from %s", debate.ErrBadTransition, d.Status)
	}

	return r.run(ctx, debateID)
}

// run is the round loop. The debate is reloaded at every round boundary so
// pause requests and added context take effect between rounds, never
// mid-round.
func (r *Runner) run(ctx context.Context, debateID string) error {
	for {
		d, err := r.store.GetDebate(debateID)
		if err != nil {
			return err
		}
		if d.Paused {
			r.log.Info("pause observed at round boundary", "debate", d.ID, "rounds_done", len(d.Rounds))
			return nil
		}
		roundNum := len(d.Rounds) + 1
		if roundNum > d.MaxRounds {
			return r.finalize(d)
		}

		prevConsensus := d.ConsensusScore
		prompt := BuildPrompt(d, roundNum, r.cfg.Thresholds.HistoryCharBudget)
		history := historyLines(d.Rounds)

		msgs, err := r.fanOut(ctx, d, roundNum, prompt, history)
		if err != nil {
			return r.fail(d, err)
		}
		spoken := 0
		for _, m := range msgs {
			if !m.Skipped {
				spoken++
			}
		}
		if spoken == 0 {
			return r.fail(d, ErrNoProgress)
		}

		newConsensus := consensus.Score(append(d.AllMessages(), msgs...))
		if m := moderate(r.cfg.Thresholds, d, roundNum, msgs, prevConsensus, newConsensus); m != nil {
			r.log.Info("moderator intervention", "debate", d.ID, "round", roundNum, "type", m.Intervention)
			msgs = append(msgs, *m)
		}

		round := debate.Round{Number: roundNum, Messages: msgs, SealedAt: time.Now().UTC()}
		if err := d.SealRound(round); err != nil {
			return r.fail(d, err)
		}
		if err := r.store.AppendRound(d.ID, round); err != nil {
			return r.fail(d, err)
		}
		// A pause or added context may have been written while the round
		// ran; mutate only this loop's fields atomically so those writes
		// survive instead of being clobbered by the boundary snapshot.
		d.ConsensusScore = newConsensus
		if err := r.store.MutateDebate(d.ID, func(rec *debate.Debate) error {
			rec.ConsensusScore = newConsensus
			rec.TotalCostUSD = d.TotalCostUSD
			return nil
		}); err != nil {
			return r.fail(d, err)
		}
		r.log.Info("round sealed", "debate", d.ID, "round", roundNum,
			"spoke", spoken, "consensus", fmt.Sprintf("%.3f", newConsensus))

		if newConsensus >= r.cfg.Thresholds.EarlyStopConsensus {
			r.log.Info("early stop: consensus threshold crossed", "debate", d.ID, "consensus", newConsensus)
			return r.finalize(d)
		}
	}
}

// fanOut invokes all assigned experts concurrently with a per-call timeout.
// Results land in a slice indexed by expert assignment order; degraded
// turns (timeout, retry exhaustion, content rejection) become skipped
// messages so the round can proceed with the remaining experts.
func (r *Runner) fanOut(ctx context.Context, d *debate.Debate, roundNum int, prompt string, history []string) ([]debate.Message, error) {
	results := make([]debate.Message, len(d.Experts))
	g, gctx := errgroup.WithContext(ctx)

	for i, expert := range d.Experts {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.cfg.Thresholds.CallTimeout)
			defer cancel()

			callPrompt := prompt
			if expert.Preamble != "" {
				callPrompt = expert.Preamble + "\n\n" + prompt
			}
			reply, err := agent.InvokeWithRetry(callCtx, r.invoker, r.cfg.Retry, expert, callPrompt, history)
			switch {
			case err == nil:
				results[i] = debate.NewMessage(roundNum, expert.ID, reply.Text, reply.TokensUsed, reply.CostUSD)
			case errors.Is(err, agent.ErrContentRejected):
				r.log.Warn("expert turn rejected", "debate", d.ID, "round", roundNum, "expert", expert.ID)
				results[i] = debate.SkippedMessage(roundNum, expert.ID, "content rejected")
			case errors.Is(err, context.DeadlineExceeded):
				r.log.Warn("expert turn timed out", "debate", d.ID, "round", roundNum, "expert", expert.ID)
				results[i] = debate.SkippedMessage(roundNum, expert.ID, "timeout")
			case errors.Is(err, agent.ErrTransient):
				r.log.Warn("expert retries exhausted", "debate", d.ID, "round", roundNum, "expert", expert.ID)
				results[i] = debate.SkippedMessage(roundNum, expert.ID, "retries exhausted")
			default:
				r.log.Warn("expert turn failed", "debate", d.ID, "round", roundNum, "expert", expert.ID, "err", err)
				results[i] = debate.SkippedMessage(roundNum, expert.ID, "agent error")
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// finalize derives the final ranking and quality metrics and completes the
// debate. A transcript from which no ranking can be derived fails instead.
func (r *Runner) finalize(d *debate.Debate) error {
	msgs := d.AllMessages()
	graph := r.builder.Build(d.ID, msgs)
	ranking := consensus.Ranking(msgs, graph)
	if len(ranking) == 0 {
		return r.fail(d, errors.New("no ranking derivable from transcript"))
	}

	d.FinalRanking = ranking
	d.ConsensusScore = consensus.Score(msgs)
	d.Quality = consensus.Quality(graph, msgs)
	if err := d.Transition(debate.StatusCompleted); err != nil {
		return err
	}
	if err := r.store.MutateDebate(d.ID, func(rec *debate.Debate) error {
		rec.FinalRanking = d.FinalRanking
		rec.ConsensusScore = d.ConsensusScore
		rec.Quality = d.Quality
		rec.TotalCostUSD = d.TotalCostUSD
		return rec.Transition(debate.StatusCompleted)
	}); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}
	r.log.Info("debate completed", "debate", d.ID,
		"rounds", len(d.Rounds), "consensus", fmt.Sprintf("%.3f", d.ConsensusScore),
		"top_option", ranking[0].Option)
	return nil
}

// fail transitions the debate to failed, retaining the rounds sealed so
// far; partial transcripts are never lost.
func (r *Runner) fail(d *debate.Debate, cause error) error {
	r.log.Error("debate failed", "debate", d.ID, "rounds", len(d.Rounds), "err", cause)
	if err := d.Transition(debate.StatusFailed); err != nil {
		return errors.Join(cause, err)
	}
	if err := r.store.MutateDebate(d.ID, func(rec *debate.Debate) error {
		rec.TotalCostUSD = d.TotalCostUSD
		return rec.Transition(debate.StatusFailed)
	}); err != nil {
		return errors.Join(cause, err)
	}
	return fmt.Errorf("debate %s failed: %w", d.ID, cause)
}
