// Package service is the application facade shared by the CLI and the MCP
// server. It owns the wiring of store, runner, panel, and pricing, and
// enforces the ownership capability on every debate-scoped call.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"agora/internal/agent"
	"agora/internal/arggraph"
	"agora/internal/credit"
	"agora/internal/debate"
	"agora/internal/logging"
	"agora/internal/orchestrate"
	"agora/internal/panel"
	"agora/internal/readiness"
	"agora/internal/store"
)

// ErrDebateRunning is returned when a destructive operation is attempted
// while the debate's round loop is executing.
var ErrDebateRunning = errors.New("debate round loop is running")

// ErrConcurrentStart is the orchestrator's start-guard sentinel, re-exported
// so callers of the service surface need not import the orchestrator.
var ErrConcurrentStart = orchestrate.ErrConcurrentStart

// Options configures a Service. Zero-value fields fall back to defaults.
type Options struct {
	Panel   panel.Panel              // empty: the built-in default panel
	Pricing credit.Pricing           // zero: credit.DefaultPricing()
	Runner  orchestrate.RunnerConfig // zero: orchestrate.DefaultRunnerConfig()
}

// Service exposes the debate lifecycle and readiness operations.
type Service struct {
	store   store.Store
	runner  *orchestrate.Runner
	panel   panel.Panel
	pricing credit.Pricing
	builder *arggraph.Builder
	log     *slog.Logger

	mu     sync.Mutex
	graphs map[string]cachedGraph
}

// cachedGraph is valid for as long as no further round has been sealed.
type cachedGraph struct {
	rounds int
	graph  *arggraph.Graph
}

// New wires a service over the given store and invoker.
func New(st store.Store, inv agent.Invoker, opts Options) *Service {
	if len(opts.Panel.Experts) == 0 {
		opts.Panel = panel.Default()
	}
	if opts.Pricing == (credit.Pricing{}) {
		opts.Pricing = credit.DefaultPricing()
	}
	if opts.Runner == (orchestrate.RunnerConfig{}) {
		opts.Runner = orchestrate.DefaultRunnerConfig()
	}
	return &Service{
		store:   st,
		runner:  orchestrate.NewRunner(st, inv, opts.Runner),
		panel:   opts.Panel,
		pricing: opts.Pricing,
		builder: arggraph.NewBuilder(),
		log:     logging.New("service"),
		graphs:  make(map[string]cachedGraph),
	}
}

// Panel returns the expert panel the service selects from.
func (s *Service) Panel() panel.Panel { return s.panel }

// Analyze scores the readiness of a decision input, inferring the debate
// type from its wording.
func (s *Service) Analyze(input string) (*readiness.Assessment, error) {
	return readiness.Analyze(input, "")
}

// Refine enhances the original input with the caller's answers and
// re-scores it. The enhanced text is what a subsequent Create should use.
func (s *Service) Refine(input string, assumptionResponses map[string]bool, questionResponses map[string][]string, additionalContext string) (string, *readiness.Assessment, error) {
	return readiness.Refine(input, assumptionResponses, questionResponses, additionalContext)
}

// Create opens a draft debate owned by ownerID.
func (s *Service) Create(ownerID, question string, ctx debate.Context) (*debate.Debate, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.New("owner id required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question required")
	}
	d := debate.New(ownerID, question, ctx)
	if err := s.store.CreateDebate(d); err != nil {
		return nil, fmt.Errorf("create debate: %w", err)
	}
	s.log.Info("debate created", "debate", d.ID, "owner", ownerID)
	return d, nil
}

// ConfigureRequest describes the panel assignment for a draft debate.
// Explicit ExpertIDs win; otherwise ExpertCount experts are auto-selected
// with specialization preference for Category.
type ConfigureRequest struct {
	ExpertIDs   []string
	ExpertCount int // default 3 when auto-selecting
	MaxRounds   int // default 3
	Category    string
}

// Configure assigns experts and the round limit, moving the debate from
// draft to pending. The assignment is immutable afterwards.
func (s *Service) Configure(debateID, callerID string, req ConfigureRequest) (*debate.Debate, error) {
	d, err := s.load(debateID, callerID)
	if err != nil {
		return nil, err
	}

	var experts []panel.Expert
	if len(req.ExpertIDs) > 0 {
		for _, id := range req.ExpertIDs {
			e, ok := s.panel.ByID(id)
			if !ok {
				return nil, fmt.Errorf("unknown expert %q", id)
			}
			experts = append(experts, e)
		}
	} else {
		n := req.ExpertCount
		if n == 0 {
			n = 3
		}
		experts, err = s.panel.Select(n, req.Category)
		if err != nil {
			return nil, err
		}
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = 3
	}
	if err := d.Configure(experts, maxRounds, req.Category); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDebate(d); err != nil {
		return nil, fmt.Errorf("persist configuration: %w", err)
	}
	s.log.Info("debate configured", "debate", d.ID, "experts", len(experts), "max_rounds", maxRounds)
	return d, nil
}

// Start runs the round loop to completion, failure, or a pause boundary.
// Ownership and status checks happen inside the runner.
func (s *Service) Start(ctx context.Context, debateID, callerID string) error {
	return s.runner.Start(ctx, debateID, callerID)
}

// Pause requests a stop at the next round boundary. The in-flight round
// always completes and is sealed first.
func (s *Service) Pause(debateID, callerID string) error {
	if _, err := s.load(debateID, callerID); err != nil {
		return err
	}
	if err := s.store.MutateDebate(debateID, func(rec *debate.Debate) error {
		return rec.SetPaused(true)
	}); err != nil {
		return err
	}
	s.log.Info("pause requested", "debate", debateID)
	return nil
}

// Resume clears the pause flag and continues the round loop from the next
// unplayed round.
func (s *Service) Resume(ctx context.Context, debateID, callerID string) error {
	d, err := s.load(debateID, callerID)
	if err != nil {
		return err
	}
	if err := s.store.MutateDebate(debateID, func(rec *debate.Debate) error {
		return rec.SetPaused(false)
	}); err != nil {
		return err
	}
	s.log.Info("debate resuming", "debate", d.ID, "rounds_done", len(d.Rounds))
	return s.runner.Start(ctx, debateID, callerID)
}

// AddContext appends context to an in-progress debate; it reaches the
// experts with the next round's prompt.
func (s *Service) AddContext(debateID, callerID, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("context text required")
	}
	if _, err := s.load(debateID, callerID); err != nil {
		return err
	}
	return s.store.MutateDebate(debateID, func(rec *debate.Debate) error {
		return rec.AddContext(text, time.Now().UTC())
	})
}

// Get returns the debate if callerID owns it.
func (s *Service) Get(debateID, callerID string) (*debate.Debate, error) {
	return s.load(debateID, callerID)
}

// List returns the caller's debates, optionally filtered by status.
func (s *Service) List(callerID string, status debate.Status) ([]*debate.Debate, error) {
	return s.store.ListDebates(callerID, status)
}

// Graph returns the argument graph for the debate's transcript. Graphs are
// cached per debate and rebuilt only when another round has been sealed.
func (s *Service) Graph(debateID, callerID string) (*arggraph.Graph, error) {
	d, err := s.load(debateID, callerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.graphs[d.ID]; ok && c.rounds == len(d.Rounds) {
		return c.graph, nil
	}
	g := s.builder.Build(d.ID, d.AllMessages())
	s.graphs[d.ID] = cachedGraph{rounds: len(d.Rounds), graph: g}
	return g, nil
}

// Delete removes a debate and its transcript. Refused while the round loop
// is running.
func (s *Service) Delete(debateID, callerID string) error {
	if _, err := s.load(debateID, callerID); err != nil {
		return err
	}
	// Reserving the id in the runner both refuses the delete while a round
	// loop runs and keeps a concurrent Start from slipping in under it.
	release, err := s.runner.Reserve(debateID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDebateRunning, debateID)
	}
	defer release()
	if err := s.store.DeleteDebate(debateID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.graphs, debateID)
	s.mu.Unlock()
	s.log.Info("debate deleted", "debate", debateID)
	return nil
}

// Usage is the billing view of a debate.
type Usage struct {
	TotalCostUSD float64        `json:"totalCostUsd"`
	Credits      int64          `json:"credits"`
	Pricing      credit.Pricing `json:"pricing"`
}

// Credits converts the debate's accumulated provider cost into billable
// credits under the configured pricing.
func (s *Service) Credits(debateID, callerID string) (Usage, error) {
	d, err := s.load(debateID, callerID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		TotalCostUSD: d.TotalCostUSD,
		Credits:      s.pricing.Credits(d.TotalCostUSD),
		Pricing:      s.pricing,
	}, nil
}

func (s *Service) load(debateID, callerID string) (*debate.Debate, error) {
	d, err := s.store.GetDebate(debateID)
	if err != nil {
		return nil, err
	}
	if err := d.Authorize(callerID); err != nil {
		return nil, err
	}
	return d, nil
}
