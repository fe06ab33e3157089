package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-task-relay/internal/model"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, username string, passwordHash string) (model.Account, error) {
	account := model.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Status:       model.AccountPending,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO relay_accounts (username, password_hash, status, created_at)
		 VALUES ($1, $2, $3, $4)`,
		account.Username, account.PasswordHash, string(account.Status), account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.Account{}, model.ErrDuplicateUsername
		}
		return model.Account{}, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FindAccount(ctx context.Context, username string) (model.Account, error) {
	var (
		account model.Account
		status  string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT username, password_hash, status, created_at, synced_at
		 FROM relay_accounts WHERE username = $1`, username).
		Scan(&account.Username, &account.PasswordHash, &status, &account.CreatedAt, &account.SyncedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account: %w", err)
	}
	account.Status = model.AccountStatus(status)
	return account, nil
}

func (s *PostgresStore) MarkSynced(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE relay_accounts SET status = 'synced', synced_at = $2 WHERE username = $1`,
		username, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark account synced: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM relay_accounts WHERE username = $1 AND status = 'pending'`, username)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error {
	return nil
}
