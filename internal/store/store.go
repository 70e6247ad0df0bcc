package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/draftpit/cricket-draft-backend/internal/engine"
)

var ErrNotFound = errors.New("session not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		code       TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Store persists sessions and users in an embedded sqlite database. Sessions
// are stored as one JSON document per code, mirroring the shape the room
// actor holds in memory; the store is a durability sink, never the source of
// truth during an active turn.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The room actors save concurrently; a single connection keeps sqlite's
	// writer lock uncontended.
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveSession upserts the session document. Callers treat failures as
// non-fatal; the live state stays authoritative.
func (s *Store) SaveSession(ctx context.Context, sess engine.Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.Code, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (code, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(code) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		sess.Code, string(doc))
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.Code, err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context, code string) (engine.Session, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM sessions WHERE code = ?`, code).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Session{}, ErrNotFound
	}
	if err != nil {
		return engine.Session{}, fmt.Errorf("load session %s: %w", code, err)
	}
	var sess engine.Session
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		return engine.Session{}, fmt.Errorf("unmarshal session %s: %w", code, err)
	}
	return sess, nil
}
