package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-task-relay/internal/model"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// GetOrCreate registers jti for userID unless the user already has a token,
// and returns the token id that is in effect.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID int64, jti string) (string, error) {
	var current string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO auth_tokens (jti, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING jti`, jti, userID).Scan(&current)
	if err != nil {
		return "", fmt.Errorf("get or create token: %w", err)
	}
	return current, nil
}

// Owner returns the user a token id is registered to.
func (r *TokenRepository) Owner(ctx context.Context, jti string) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM auth_tokens WHERE jti = $1`, jti).Scan(&userID)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find token owner: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) RevokeForUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
