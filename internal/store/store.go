// Package store is the persistence facade for the debate aggregate.
// Domain and CLI code use only the Store interface; the implementation is
// SQLite or in-memory. The contract mirrors what the orchestrator needs:
// atomic read-modify-write on a single debate record and append-only writes
// for sealed rounds.
package store

import (
	"errors"

	"agora/internal/debate"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (e.g. .agora) if it does not exist.
const DefaultDBPath = ".agora/agora.db"

// ErrNotFound is returned when a debate id does not exist.
var ErrNotFound = errors.New("debate not found")

// Store persists debates and their sealed rounds.
//
// UpdateDebate persists the aggregate fields (status, flags, context,
// ranking, scores, cost) but never rewrites sealed rounds; rounds enter
// storage exclusively through AppendRound and are immutable afterwards.
type Store interface {
	CreateDebate(d *debate.Debate) error
	GetDebate(id string) (*debate.Debate, error)
	UpdateDebate(d *debate.Debate) error
	// MutateDebate applies fn to the stored record and persists the result
	// as one atomic read-modify-write, so two writers touching different
	// aggregate fields cannot clobber each other. fn sees aggregate fields
	// only; sealed rounds are not loaded and cannot be changed through it.
	MutateDebate(id string, fn func(*debate.Debate) error) error
	AppendRound(debateID string, r debate.Round) error
	// ListDebates filters by owner and, when status is non-empty, by status.
	ListDebates(ownerID string, status debate.Status) ([]*debate.Debate, error)
	DeleteDebate(id string) error
	Close() error
}
