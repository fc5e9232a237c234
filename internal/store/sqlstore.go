package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agora/internal/debate"

	_ "modernc.org/sqlite"
)

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .agora) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, currentSchemaVersion)
	}
	return nil
}

func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) CreateDebate(d *debate.Debate) error {
	payload, err := marshalAggregate(d)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO debates (id, owner_id, status, created_at, payload) VALUES (?, ?, ?, ?, ?)",
		d.ID, d.OwnerID, string(d.Status), d.CreatedAt.UTC().Format(time.RFC3339Nano), payload,
	)
	if err != nil {
		return fmt.Errorf("insert debate: %w", err)
	}
	return nil
}

func (s *SqlStore) GetDebate(id string) (*debate.Debate, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT payload FROM debates WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select debate: %w", err)
	}
	d, err := unmarshalAggregate(payload)
	if err != nil {
		return nil, err
	}
	if err := s.loadRounds(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SqlStore) UpdateDebate(d *debate.Debate) error {
	payload, err := marshalAggregate(d)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		"UPDATE debates SET owner_id = ?, status = ?, payload = ? WHERE id = ?",
		d.OwnerID, string(d.Status), payload, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update debate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update debate: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, d.ID)
	}
	return nil
}

func (s *SqlStore) MutateDebate(id string, fn func(*debate.Debate) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin mutate debate: %w", err)
	}
	defer tx.Rollback()

	var payload []byte
	err = tx.QueryRow("SELECT payload FROM debates WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("select debate: %w", err)
	}
	d, err := unmarshalAggregate(payload)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	payload, err = marshalAggregate(d)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(
		"UPDATE debates SET owner_id = ?, status = ?, payload = ? WHERE id = ?",
		d.OwnerID, string(d.Status), payload, id,
	); err != nil {
		return fmt.Errorf("mutate debate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mutate debate: %w", err)
	}
	return nil
}

func (s *SqlStore) AppendRound(debateID string, r debate.Round) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin append round: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM rounds WHERE debate_id = ?", debateID).Scan(&count); err != nil {
		return fmt.Errorf("count rounds: %w", err)
	}
	if want := count + 1; r.Number != want {
		return fmt.Errorf("append round %d out of order, want %d", r.Number, want)
	}

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM debates WHERE id = ?", debateID).Scan(&exists); err != nil {
		return fmt.Errorf("check debate: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, debateID)
	}

	if _, err := tx.Exec(
		"INSERT INTO rounds (debate_id, number, sealed_at) VALUES (?, ?, ?)",
		debateID, r.Number, r.SealedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	for seq, m := range r.Messages {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO messages (id, debate_id, round, seq, payload) VALUES (?, ?, ?, ?, ?)",
			m.ID, debateID, r.Number, seq, payload,
		); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit round: %w", err)
	}
	return nil
}

func (s *SqlStore) ListDebates(ownerID string, status debate.Status) ([]*debate.Debate, error) {
	query := "SELECT payload FROM debates WHERE owner_id = ?"
	args := []any{ownerID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list debates: %w", err)
	}
	defer rows.Close()

	var out []*debate.Debate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan debate: %w", err)
		}
		d, err := unmarshalAggregate(payload)
		if err != nil {
			return nil, err
		}
		if err := s.loadRounds(d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SqlStore) DeleteDebate(id string) error {
	res, err := s.db.Exec("DELETE FROM debates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete debate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete debate: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// loadRounds reassembles sealed rounds from the append-only tables.
func (s *SqlStore) loadRounds(d *debate.Debate) error {
	rows, err := s.db.Query(
		"SELECT number, sealed_at FROM rounds WHERE debate_id = ? ORDER BY number", d.ID)
	if err != nil {
		return fmt.Errorf("select rounds: %w", err)
	}
	defer rows.Close()

	d.Rounds = nil
	for rows.Next() {
		var number int
		var sealedAt string
		if err := rows.Scan(&number, &sealedAt); err != nil {
			return fmt.Errorf("scan round: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, sealedAt)
		if err != nil {
			return fmt.Errorf("parse sealed_at: %w", err)
		}
		d.Rounds = append(d.Rounds, debate.Round{Number: number, SealedAt: ts})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range d.Rounds {
		msgRows, err := s.db.Query(
			"SELECT payload FROM messages WHERE debate_id = ? AND round = ? ORDER BY seq",
			d.ID, d.Rounds[i].Number)
		if err != nil {
			return fmt.Errorf("select messages: %w", err)
		}
		for msgRows.Next() {
			var payload []byte
			if err := msgRows.Scan(&payload); err != nil {
				_ = msgRows.Close()
				return fmt.Errorf("scan message: %w", err)
			}
			var m debate.Message
			if err := json.Unmarshal(payload, &m); err != nil {
				_ = msgRows.Close()
				return fmt.Errorf("unmarshal message: %w", err)
			}
			d.Rounds[i].Messages = append(d.Rounds[i].Messages, m)
		}
		if err := msgRows.Err(); err != nil {
			_ = msgRows.Close()
			return err
		}
		_ = msgRows.Close()
	}
	return nil
}

// marshalAggregate serializes the debate without its rounds; rounds are
// stored append-only in their own tables.
func marshalAggregate(d *debate.Debate) ([]byte, error) {
	stripped := *d
	stripped.Rounds = nil
	payload, err := json.Marshal(&stripped)
	if err != nil {
		return nil, fmt.Errorf("marshal debate: %w", err)
	}
	return payload, nil
}

func unmarshalAggregate(payload []byte) (*debate.Debate, error) {
	var d debate.Debate
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("unmarshal debate: %w", err)
	}
	return &d, nil
}
