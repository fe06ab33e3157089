package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"go-task-relay/internal/model"
)

// SQLiteStore keeps accounts in the "users" table of a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, username string, passwordHash string) (model.Account, error) {
	account := model.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Status:       model.AccountPending,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, status, created_at) VALUES (?, ?, ?, ?)`,
		account.Username, account.PasswordHash, string(account.Status), account.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return model.Account{}, model.ErrDuplicateUsername
		}
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *SQLiteStore) FindAccount(ctx context.Context, username string) (model.Account, error) {
	var (
		account   model.Account
		status    string
		createdAt string
		syncedAt  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, status, created_at, synced_at FROM users WHERE username = ?`, username).
		Scan(&account.Username, &account.PasswordHash, &status, &createdAt, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account: %w", err)
	}

	account.Status = model.AccountStatus(status)
	if account.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.Account{}, fmt.Errorf("parse created_at: %w", err)
	}
	if syncedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err != nil {
			return model.Account{}, fmt.Errorf("parse synced_at: %w", err)
		}
		account.SyncedAt = &t
	}
	return account, nil
}

func (s *SQLiteStore) MarkSynced(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = 'synced', synced_at = ? WHERE username = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), username)
	if err != nil {
		return fmt.Errorf("mark account synced: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = ? AND status = 'pending'`, username)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}
