// Package storage provides persistent TokenStore implementations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	portalbridge "github.com/opengovern/portal-bridge"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteTokenStore persists the credential in a single-table key/value store so
// it survives restarts. Reads are served from memory.
type SQLiteTokenStore struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
}

// OpenSQLiteTokenStore opens (or creates) the store at path and loads the
// persisted credential. Use ":memory:" for a throwaway store.
func OpenSQLiteTokenStore(ctx context.Context, path string) (*SQLiteTokenStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	s := &SQLiteTokenStore{db: db}
	var token string
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, portalbridge.CredentialKey).Scan(&token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		_ = db.Close()
		return nil, fmt.Errorf("load credential: %w", err)
	default:
		s.token = token
	}
	return s, nil
}

func (s *SQLiteTokenStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteTokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *SQLiteTokenStore) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		portalbridge.CredentialKey, token, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	s.token = token
	return nil
}

// ClearToken forgets the credential in memory even when the delete fails, so
// a forced logout always takes effect for this process.
func (s *SQLiteTokenStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, portalbridge.CredentialKey); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
