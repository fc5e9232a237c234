// Package mcp exposes the debate service over the Model Context Protocol,
// so editor-embedded agents can assess readiness and run debates as tools.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"agora/internal/arggraph"
	"agora/internal/debate"
	"agora/internal/logging"
	"agora/internal/readiness"
	"agora/internal/service"
)

// Server wraps the MCP SDK server around the debate service. Round loops
// started without wait=true run as background goroutines owned by the
// server; Shutdown cancels them.
type Server struct {
	MCPServer *sdkmcp.Server

	svc *service.Service
	log *slog.Logger

	runCtx    context.Context
	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

// NewServer creates an MCP server exposing the debate tools.
func NewServer(svc *service.Service) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		svc:       svc,
		log:       logging.New("mcp"),
		runCtx:    ctx,
		runCancel: cancel,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "agora", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Shutdown stops background round loops and waits for them to park at the
// next round boundary.
func (s *Server) Shutdown() {
	s.runCancel()
	s.wg.Wait()
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_readiness",
		Description: "Score how ready a decision input is for debate. Returns dimension scores, assumptions, and clarifying questions.",
	}, s.handleAnalyze)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "refine_input",
		Description: "Fold confirmed assumptions and question answers into the input and re-score it. Use the returned enhanced input to create the debate.",
	}, s.handleRefine)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_debate",
		Description: "Create a draft debate owned by the caller.",
	}, s.handleCreate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "configure_debate",
		Description: "Assign experts and the round limit, moving the debate from draft to pending.",
	}, s.handleConfigure)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_debate",
		Description: "Run the debate round loop. With wait=true the call blocks until the debate completes; otherwise the loop runs in the background and get_debate reports progress.",
	}, s.handleStart)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_debate",
		Description: "Get the debate's status, consensus score, sealed rounds, and final ranking.",
	}, s.handleGet)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_argument_graph",
		Description: "Get the argument graph extracted from the debate transcript: claims, and support/attack relations between them.",
	}, s.handleGraph)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_debates",
		Description: "List the caller's debates, optionally filtered by status.",
	}, s.handleList)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "add_context",
		Description: "Append context to an in-progress debate; it reaches the experts with the next round.",
	}, s.handleAddContext)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "pause_debate",
		Description: "Request a pause. The in-flight round finishes and is sealed; the loop stops at the round boundary.",
	}, s.handlePause)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "resume_debate",
		Description: "Clear the pause flag and continue the round loop from the next unplayed round.",
	}, s.handleResume)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "delete_debate",
		Description: "Delete a debate and its transcript. Refused while its round loop is running.",
	}, s.handleDelete)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_credits",
		Description: "Get the debate's accumulated provider cost and the billable credits it converts to.",
	}, s.handleCredits)
}

// --- Tool input/output types ---

type analyzeInput struct {
	Input string `json:"input" jsonschema:"the decision input to assess"`
}

type analyzeOutput struct {
	Assessment *readiness.Assessment `json:"assessment"`
}

type refineInput struct {
	Input               string              `json:"input" jsonschema:"the original decision input"`
	AssumptionResponses map[string]bool     `json:"assumption_responses,omitempty" jsonschema:"assumption id to confirmed/rejected"`
	QuestionResponses   map[string][]string `json:"question_responses,omitempty" jsonschema:"question id to selected or free-form answers"`
	AdditionalContext   string              `json:"additional_context,omitempty" jsonschema:"free-form extra context"`
}

type refineOutput struct {
	EnhancedInput string                `json:"enhanced_input"`
	Assessment    *readiness.Assessment `json:"assessment"`
}

type createInput struct {
	CallerID    string   `json:"caller_id" jsonschema:"owner of the new debate"`
	Question    string   `json:"question" jsonschema:"the decision question to debate"`
	Background  string   `json:"background,omitempty" jsonschema:"background shared with every expert"`
	Constraints []string `json:"constraints,omitempty" jsonschema:"hard constraints the options must satisfy"`
}

type createOutput struct {
	DebateID string `json:"debate_id"`
	Status   string `json:"status"`
}

type configureInput struct {
	DebateID    string   `json:"debate_id" jsonschema:"debate id from create_debate"`
	CallerID    string   `json:"caller_id" jsonschema:"debate owner"`
	ExpertIDs   []string `json:"expert_ids,omitempty" jsonschema:"explicit expert ids; wins over expert_count"`
	ExpertCount int      `json:"expert_count,omitempty" jsonschema:"number of experts to auto-select (default 3)"`
	MaxRounds   int      `json:"max_rounds,omitempty" jsonschema:"round limit (default 3)"`
	Category    string   `json:"category,omitempty" jsonschema:"debate category used for specialization matching"`
}

type configureOutput struct {
	Status    string   `json:"status"`
	Experts   []string `json:"experts"`
	MaxRounds int      `json:"max_rounds"`
}

type startInput struct {
	DebateID string `json:"debate_id" jsonschema:"debate id"`
	CallerID string `json:"caller_id" jsonschema:"debate owner"`
	Wait     bool   `json:"wait,omitempty" jsonschema:"block until the loop finishes instead of running in the background"`
}

type startOutput struct {
	Status string `json:"status"`
}

type getInput struct {
	DebateID string `json:"debate_id" jsonschema:"debate id"`
	CallerID string `json:"caller_id" jsonschema:"debate owner"`
}

type debateSummary struct {
	DebateID       string                 `json:"debate_id"`
	Status         string                 `json:"status"`
	Paused         bool                   `json:"paused"`
	Rounds         int                    `json:"rounds"`
	MaxRounds      int                    `json:"max_rounds"`
	ConsensusScore float64                `json:"consensus_score"`
	TotalCostUSD   float64                `json:"total_cost_usd"`
	FinalRanking   []debate.RankingEntry  `json:"final_ranking,omitempty"`
	Quality        *debate.QualityMetrics `json:"quality,omitempty"`
}

type getOutput struct {
	Debate debateSummary `json:"debate"`
}

type graphOutput struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`

	Graph *arggraph.Graph `json:"graph"`
}

type listInput struct {
	CallerID string `json:"caller_id" jsonschema:"debate owner"`
	Status   string `json:"status,omitempty" jsonschema:"optional status filter (draft, pending, in_progress, completed, failed)"`
}

type listOutput struct {
	Debates []debateSummary `json:"debates"`
}

type addContextInput struct {
	DebateID string `json:"debate_id" jsonschema:"debate id"`
	CallerID string `json:"caller_id" jsonschema:"debate owner"`
	Text     string `json:"text" jsonschema:"context to append"`
}

type okOutput struct {
	OK string `json:"ok"`
}

type creditsOutput struct {
	Usage service.Usage `json:"usage"`
}

// --- Tool handlers ---

func (s *Server) handleAnalyze(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeInput) (*sdkmcp.CallToolResult, analyzeOutput, error) {
	a, err := s.svc.Analyze(input.Input)
	if err != nil {
		return nil, analyzeOutput{}, err
	}
	return nil, analyzeOutput{Assessment: a}, nil
}

func (s *Server) handleRefine(ctx context.Context, _ *sdkmcp.CallToolRequest, input refineInput) (*sdkmcp.CallToolResult, refineOutput, error) {
	enhanced, a, err := s.svc.Refine(input.Input, input.AssumptionResponses, input.QuestionResponses, input.AdditionalContext)
	if err != nil {
		return nil, refineOutput{}, err
	}
	return nil, refineOutput{EnhancedInput: enhanced, Assessment: a}, nil
}

func (s *Server) handleCreate(ctx context.Context, _ *sdkmcp.CallToolRequest, input createInput) (*sdkmcp.CallToolResult, createOutput, error) {
	d, err := s.svc.Create(input.CallerID, input.Question, debate.Context{
		Background:  input.Background,
		Constraints: input.Constraints,
	})
	if err != nil {
		return nil, createOutput{}, err
	}
	return nil, createOutput{DebateID: d.ID, Status: string(d.Status)}, nil
}

func (s *Server) handleConfigure(ctx context.Context, _ *sdkmcp.CallToolRequest, input configureInput) (*sdkmcp.CallToolResult, configureOutput, error) {
	d, err := s.svc.Configure(input.DebateID, input.CallerID, service.ConfigureRequest{
		ExpertIDs:   input.ExpertIDs,
		ExpertCount: input.ExpertCount,
		MaxRounds:   input.MaxRounds,
		Category:    input.Category,
	})
	if err != nil {
		return nil, configureOutput{}, err
	}
	out := configureOutput{Status: string(d.Status), MaxRounds: d.MaxRounds}
	for _, e := range d.Experts {
		out.Experts = append(out.Experts, e.ID)
	}
	return nil, out, nil
}

func (s *Server) handleStart(ctx context.Context, _ *sdkmcp.CallToolRequest, input startInput) (*sdkmcp.CallToolResult, startOutput, error) {
	if input.Wait {
		if err := s.svc.Start(ctx, input.DebateID, input.CallerID); err != nil {
			return nil, startOutput{}, err
		}
		d, err := s.svc.Get(input.DebateID, input.CallerID)
		if err != nil {
			return nil, startOutput{}, err
		}
		return nil, startOutput{Status: string(d.Status)}, nil
	}

	// Background run: validate reachability first so the caller gets an
	// immediate error for a debate they do not own.
	if _, err := s.svc.Get(input.DebateID, input.CallerID); err != nil {
		return nil, startOutput{}, err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.svc.Start(s.runCtx, input.DebateID, input.CallerID); err != nil {
			s.log.Error("background round loop ended with error", "debate", input.DebateID, "err", err)
		}
	}()
	return nil, startOutput{Status: string(debate.StatusInProgress)}, nil
}

func (s *Server) handleGet(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInput) (*sdkmcp.CallToolResult, getOutput, error) {
	d, err := s.svc.Get(input.DebateID, input.CallerID)
	if err != nil {
		return nil, getOutput{}, err
	}
	return nil, getOutput{Debate: summarize(d)}, nil
}

func (s *Server) handleGraph(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInput) (*sdkmcp.CallToolResult, graphOutput, error) {
	g, err := s.svc.Graph(input.DebateID, input.CallerID)
	if err != nil {
		return nil, graphOutput{}, err
	}
	return nil, graphOutput{Nodes: len(g.Nodes), Edges: len(g.Edges), Graph: g}, nil
}

func (s *Server) handleList(ctx context.Context, _ *sdkmcp.CallToolRequest, input listInput) (*sdkmcp.CallToolResult, listOutput, error) {
	debates, err := s.svc.List(input.CallerID, debate.Status(input.Status))
	if err != nil {
		return nil, listOutput{}, err
	}
	out := listOutput{Debates: make([]debateSummary, 0, len(debates))}
	for _, d := range debates {
		out.Debates = append(out.Debates, summarize(d))
	}
	return nil, out, nil
}

func (s *Server) handleAddContext(ctx context.Context, _ *sdkmcp.CallToolRequest, input addContextInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := s.svc.AddContext(input.DebateID, input.CallerID, input.Text); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: "context added"}, nil
}

func (s *Server) handlePause(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := s.svc.Pause(input.DebateID, input.CallerID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: "pause requested; the in-flight round will finish first"}, nil
}

func (s *Server) handleResume(ctx context.Context, _ *sdkmcp.CallToolRequest, input startInput) (*sdkmcp.CallToolResult, startOutput, error) {
	if input.Wait {
		if err := s.svc.Resume(ctx, input.DebateID, input.CallerID); err != nil {
			return nil, startOutput{}, err
		}
		d, err := s.svc.Get(input.DebateID, input.CallerID)
		if err != nil {
			return nil, startOutput{}, err
		}
		return nil, startOutput{Status: string(d.Status)}, nil
	}

	if _, err := s.svc.Get(input.DebateID, input.CallerID); err != nil {
		return nil, startOutput{}, err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.svc.Resume(s.runCtx, input.DebateID, input.CallerID); err != nil {
			s.log.Error("background resume ended with error", "debate", input.DebateID, "err", err)
		}
	}()
	return nil, startOutput{Status: string(debate.StatusInProgress)}, nil
}

func (s *Server) handleDelete(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInput) (*sdkmcp.CallToolResult, okOutput, error) {
	if err := s.svc.Delete(input.DebateID, input.CallerID); err != nil {
		return nil, okOutput{}, err
	}
	return nil, okOutput{OK: "debate deleted"}, nil
}

func (s *Server) handleCredits(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInput) (*sdkmcp.CallToolResult, creditsOutput, error) {
	usage, err := s.svc.Credits(input.DebateID, input.CallerID)
	if err != nil {
		return nil, creditsOutput{}, err
	}
	return nil, creditsOutput{Usage: usage}, nil
}

func summarize(d *debate.Debate) debateSummary {
	s := debateSummary{
		DebateID:       d.ID,
		Status:         string(d.Status),
		Paused:         d.Paused,
		Rounds:         len(d.Rounds),
		MaxRounds:      d.MaxRounds,
		ConsensusScore: d.ConsensusScore,
		TotalCostUSD:   d.TotalCostUSD,
		FinalRanking:   d.FinalRanking,
	}
	if d.Status == debate.StatusCompleted {
		q := d.Quality
		s.Quality = &q
	}
	return s
}
