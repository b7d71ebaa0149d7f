// Package credstore persists the opaque session token across process
// restarts. The store is a single slot: there is never more than one token,
// and clearing it is how the session forgets its credential.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"badyet/internal/log"

	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// New opens (creating if needed) the credential database at dbPath and runs
// pending migrations.
func New(dbPath string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open credential database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping credential database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentCredStore)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Token returns the stored session token, or "" if none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE slot = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return token, nil
}

// Save stores token, replacing any previous one.
func (s *Store) Save(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("refusing to store empty token")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (slot, token, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP`,
		token)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	s.logger.DebugContext(ctx, "Credential saved")
	return nil
}

// Clear removes the stored token. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}

	s.logger.DebugContext(ctx, "Credential cleared")
	return nil
}
