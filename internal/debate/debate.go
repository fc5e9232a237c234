// Package debate holds the aggregate data model: a Debate owns its rounds,
// messages, and final ranking exclusively. Status transitions are monotonic;
// pausing is a side flag valid only while in progress.
package debate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agora/internal/panel"
)

// Status is the debate lifecycle state.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var (
	// ErrOwnership is returned when a caller touches a debate it does not own.
	ErrOwnership = errors.New("caller does not own this debate")
	// ErrBadTransition is returned for illegal status transitions.
	ErrBadTransition = errors.New("illegal debate status transition")
	// ErrNotInProgress guards operations that only apply to running debates.
	ErrNotInProgress = errors.New("debate is not in progress")
)

// transitions is the legal status machine. Terminal states have no edges.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusPending},
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InterventionType tags moderator messages.
type InterventionType string

const (
	InterventionRedirect InterventionType = "redirect"
	InterventionDeepen   InterventionType = "deepen"
)

// ModeratorID is the author id used for intervention messages.
const ModeratorID = "moderator"

// Message is one expert or moderator contribution. Append-only: never
// edited after creation.
type Message struct {
	ID           string           `json:"id"`
	Round        int              `json:"round"`
	AuthorID     string           `json:"authorId"`
	Content      string           `json:"content"`
	TokensUsed   int              `json:"tokensUsed"`
	CostUSD      float64          `json:"costUsd"`
	Intervention InterventionType `json:"intervention,omitempty"`
	Skipped      bool             `json:"skipped,omitempty"`
	SkipReason   string           `json:"skipReason,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Round is one synchronized turn of all assigned experts plus an optional
// moderator intervention. Sealed rounds are immutable.
type Round struct {
	Number   int       `json:"number"`
	Messages []Message `json:"messages"`
	SealedAt time.Time `json:"sealedAt"`
}

// ContextEntry is additional context appended mid-debate. It takes effect
// from the next round's prompt assembly onward.
type ContextEntry struct {
	Text    string    `json:"text"`
	AddedAt time.Time `json:"addedAt"`
}

// Context is the structured question context.
type Context struct {
	Background  string         `json:"background,omitempty"`
	Constraints []string       `json:"constraints,omitempty"`
	Additional  []ContextEntry `json:"additional,omitempty"`
}

// RankingEntry is one candidate option in the final ranking.
type RankingEntry struct {
	Option     string   `json:"option"`
	Score      float64  `json:"score"` // 0-100
	Supporters []string `json:"supporters"`
	Pros       []string `json:"pros,omitempty"`
	Cons       []string `json:"cons,omitempty"`
	Confidence float64  `json:"confidence"` // 0-1
	Reasoning  string   `json:"reasoning"`
}

// QualityMetrics are the scorer's per-debate quality signals, all in [0,1].
type QualityMetrics struct {
	OverallScore     float64 `json:"overallScore"`
	DepthScore       float64 `json:"depthScore"`
	BalanceScore     float64 `json:"balanceScore"`
	OriginalityScore float64 `json:"originalityScore"`
}

// Debate is the aggregate root.
type Debate struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"ownerId"`
	Question   string  `json:"question"`
	Context    Context `json:"context"`
	Mode       string  `json:"mode"`
	Status     Status  `json:"status"`
	Paused     bool    `json:"paused"`
	Visibility string  `json:"visibility"`
	Category   string  `json:"category,omitempty"`
	MaxRounds  int     `json:"maxRounds"`

	// Experts are assigned once at configure time, in invocation order.
	Experts []panel.Expert `json:"experts,omitempty"`

	Rounds         []Round        `json:"rounds,omitempty"`
	FinalRanking   []RankingEntry `json:"finalRanking,omitempty"`
	ConsensusScore float64        `json:"consensusScore"`
	Quality        QualityMetrics `json:"quality"`
	TotalCostUSD   float64        `json:"totalCostUsd"`

	CreatedAt   time.Time `json:"createdAt"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// New creates a draft debate owned by ownerID.
func New(ownerID, question string, ctx Context) *Debate {
	return &Debate{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Question:   question,
		Context:    ctx,
		Mode:       "dynamic",
		Status:     StatusDraft,
		Visibility: "private",
		CreatedAt:  time.Now().UTC(),
	}
}

// Authorize checks the single ownership capability: callerID must equal the
// debate's owner. No partial data is ever returned on violation.
func (d *Debate) Authorize(callerID string) error {
	if callerID != d.OwnerID {
		return fmt.Errorf("%w: debate %s", ErrOwnership, d.ID)
	}
	return nil
}

// Transition moves the debate to the given status if legal.
func (d *Debate) Transition(to Status) error {
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, d.Status, to)
	}
	d.Status = to
	switch to {
	case StatusInProgress:
		if d.StartedAt.IsZero() {
			d.StartedAt = time.Now().UTC()
		}
	case StatusCompleted, StatusFailed:
		d.CompletedAt = time.Now().UTC()
		d.Paused = false
	}
	return nil
}

// Configure attaches experts, round limit, and category, moving draft to
// pending. The expert assignment is immutable afterwards.
func (d *Debate) Configure(experts []panel.Expert, maxRounds int, category string) error {
	if d.Status != StatusDraft {
		return fmt.Errorf("%w: configure requires draft, debate is %s", ErrBadTransition, d.Status)
	}
	if len(experts) == 0 {
		return errors.New("at least one expert required")
	}
	if maxRounds <= 0 {
		return fmt.Errorf("round limit must be positive, got %d", maxRounds)
	}
	d.Experts = experts
	d.MaxRounds = maxRounds
	d.Category = category
	return d.Transition(StatusPending)
}

// AddContext appends additional context. Permitted only while in progress;
// it takes effect with the next round's prompt assembly.
func (d *Debate) AddContext(text string, now time.Time) error {
	if d.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot add context while %s", ErrNotInProgress, d.Status)
	}
	d.Context.Additional = append(d.Context.Additional, ContextEntry{Text: text, AddedAt: now})
	return nil
}

// SetPaused flips the pause side-flag. Only meaningful while in progress.
func (d *Debate) SetPaused(paused bool) error {
	if d.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot pause/resume while %s", ErrNotInProgress, d.Status)
	}
	d.Paused = paused
	return nil
}

// SealRound appends a finished round. Round numbers must be strictly
// increasing with no gaps.
func (d *Debate) SealRound(r Round) error {
	if d.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot seal round while %s", ErrNotInProgress, d.Status)
	}
	if want := len(d.Rounds) + 1; r.Number != want {
		return fmt.Errorf("round %d sealed out of order, want %d", r.Number, want)
	}
	for _, m := range r.Messages {
		d.TotalCostUSD += m.CostUSD
	}
	d.Rounds = append(d.Rounds, r)
	return nil
}

// NewMessage builds an append-only message with a fresh id.
func NewMessage(round int, authorID, content string, tokens int, costUSD float64) Message {
	return Message{
		ID:         uuid.NewString(),
		Round:      round,
		AuthorID:   authorID,
		Content:    content,
		TokensUsed: tokens,
		CostUSD:    costUSD,
		CreatedAt:  time.Now().UTC(),
	}
}

// SkippedMessage records a degraded turn (timeout, retry exhaustion, or
// content rejection) without blocking the round.
func SkippedMessage(round int, authorID, reason string) Message {
	m := NewMessage(round, authorID, "", 0, 0)
	m.Skipped = true
	m.SkipReason = reason
	return m
}

// AllMessages returns the full ordered message stream across sealed rounds.
func (d *Debate) AllMessages() []Message {
	var out []Message
	for _, r := range d.Rounds {
		out = append(out, r.Messages...)
	}
	return out
}
