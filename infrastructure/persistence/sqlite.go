// Package persistence stores per-session state that must survive process
// restarts, such as chat transcripts and query history.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, key)
);
`

// StateStore is a SQLite-backed key/value store for session state. Values
// are stored as JSON documents.
type StateStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens or creates the state database at the given path.
func Open(path string, logger *zap.Logger) (*StateStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// ForSession returns a Persister view scoped to one session.
func (s *StateStore) ForSession(sessionID string) *SessionPersister {
	return &SessionPersister{store: s, sessionID: sessionID}
}

// DeleteSession removes all persisted state for a session.
func (s *StateStore) DeleteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM session_state WHERE session_id = ?`, sessionID)
	return err
}

func (s *StateStore) save(sessionID, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode state value",
			zap.String("session_id", sessionID), zap.String("key", key), zap.Error(err))
		return
	}

	_, err = s.db.Exec(`
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		sessionID, key, string(raw))
	if err != nil {
		s.logger.Warn("failed to persist state value",
			zap.String("session_id", sessionID), zap.String("key", key), zap.Error(err))
	}
}

func (s *StateStore) load(sessionID, key string, dest any) bool {
	var raw string
	err := s.db.QueryRow(
		`SELECT value FROM session_state WHERE session_id = ? AND key = ?`,
		sessionID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logger.Warn("failed to read state value",
			zap.String("session_id", sessionID), zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A corrupt row is dropped so the caller falls back to defaults.
		s.logger.Warn("dropping corrupt state value",
			zap.String("session_id", sessionID), zap.String("key", key), zap.Error(err))
		_, _ = s.db.Exec(
			`DELETE FROM session_state WHERE session_id = ? AND key = ?`,
			sessionID, key)
		return false
	}
	return true
}

// SessionPersister implements store.Persister for a single session.
type SessionPersister struct {
	store     *StateStore
	sessionID string
}

func (p *SessionPersister) Save(key string, value any) {
	p.store.save(p.sessionID, key, value)
}

func (p *SessionPersister) Load(key string, dest any) bool {
	return p.store.load(p.sessionID, key, dest)
}
