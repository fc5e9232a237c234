package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"agora/internal/debate"
)

// MemStore is an in-memory Store for tests and ephemeral runs. Debates are
// deep-copied on the way in and out so callers never share mutable state
// with the store.
type MemStore struct {
	mu      sync.RWMutex
	debates map[string]*debate.Debate
	seq     map[string]int // creation order for stable listing
	nextSeq int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		debates: make(map[string]*debate.Debate),
		seq:     make(map[string]int),
	}
}

func (s *MemStore) CreateDebate(d *debate.Debate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.debates[d.ID]; exists {
		return fmt.Errorf("debate %s already exists", d.ID)
	}
	s.debates[d.ID] = clone(d)
	s.seq[d.ID] = s.nextSeq
	s.nextSeq++
	return nil
}

func (s *MemStore) GetDebate(id string) (*debate.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.debates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(d), nil
}

func (s *MemStore) UpdateDebate(d *debate.Debate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.debates[d.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, d.ID)
	}
	updated := clone(d)
	updated.Rounds = stored.Rounds // rounds are append-only via AppendRound
	s.debates[d.ID] = updated
	return nil
}

func (s *MemStore) MutateDebate(id string, fn func(*debate.Debate) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.debates[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := clone(stored)
	if err := fn(updated); err != nil {
		return err
	}
	updated.Rounds = stored.Rounds // rounds are append-only via AppendRound
	s.debates[id] = updated
	return nil
}

func (s *MemStore) AppendRound(debateID string, r debate.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.debates[debateID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, debateID)
	}
	if want := len(stored.Rounds) + 1; r.Number != want {
		return fmt.Errorf("append round %d out of order, want %d", r.Number, want)
	}
	stored.Rounds = append(stored.Rounds, cloneRound(r))
	return nil
}

func cloneRound(r debate.Round) debate.Round {
	tmp := clone(&debate.Debate{Rounds: []debate.Round{r}})
	return tmp.Rounds[0]
}

func (s *MemStore) ListDebates(ownerID string, status debate.Status) ([]*debate.Debate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*debate.Debate
	for _, d := range s.debates {
		if d.OwnerID != ownerID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *MemStore) DeleteDebate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debates[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.debates, id)
	delete(s.seq, id)
	return nil
}

func (s *MemStore) Close() error { return nil }

// clone deep-copies a debate through JSON; the aggregate is fully
// serializable by construction.
func clone(d *debate.Debate) *debate.Debate {
	data, err := json.Marshal(d)
	if err != nil {
		panic(fmt.Sprintf("debate not serializable: %v", err))
	}
	var out debate.Debate
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("debate not round-trippable: %v", err))
	}
	return &out
}
