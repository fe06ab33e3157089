package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go-task-relay/internal/database"
)

const (
	keyToken    = "token"
	keyUsername = "username"
)

// Stored is the client state that outlives a process.
type Stored struct {
	Token    string
	Username string
}

// TokenStore persists the current token between runs. Load on an empty
// store returns a zero Stored and no error.
type TokenStore interface {
	Load(ctx context.Context) (Stored, error)
	Save(ctx context.Context, stored Stored) error
	Clear(ctx context.Context) error
	Close() error
}

// SQLiteTokenStore keeps the token in the key/value metadata table of a
// local SQLite file.
type SQLiteTokenStore struct {
	db *sql.DB
}

func OpenSQLiteTokenStore(ctx context.Context, path string) (*SQLiteTokenStore, error) {
	db, err := database.OpenSQLite(ctx, path, database.SetClientSQLite)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	return &SQLiteTokenStore{db: db}, nil
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (Stored, error) {
	token, err := s.get(ctx, keyToken)
	if err != nil {
		return Stored{}, err
	}
	username, err := s.get(ctx, keyUsername)
	if err != nil {
		return Stored{}, err
	}
	return Stored{Token: token, Username: username}, nil
}

func (s *SQLiteTokenStore) Save(ctx context.Context, stored Stored) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range map[string]string{keyToken: stored.Token, keyUsername: stored.Username} {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO metadata (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, []byte(value))
		if err != nil {
			return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?)`, keyToken, keyUsername)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteTokenStore) get(ctx context.Context, key string) (string, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return string(value), nil
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	stored Stored
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load(_ context.Context) (Stored, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, stored Stored) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = stored
	return nil
}

func (m *MemoryTokenStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = Stored{}
	return nil
}

func (m *MemoryTokenStore) Close() error {
	return nil
}
