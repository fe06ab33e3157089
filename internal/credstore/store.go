// Package credstore is the relay's local credential bookkeeping: a
// username → salted password hash mapping used to reject duplicate
// registrations before anything is forwarded to the identity authority.
//
// Implementations must make CreateAccount race-free per username: of any
// number of concurrent creates for one username exactly one succeeds and the
// rest fail with model.ErrDuplicateUsername.
package credstore

import (
	"context"

	"go-task-relay/internal/model"
)

type Store interface {
	// CreateAccount persists a new account in the pending state.
	CreateAccount(ctx context.Context, username string, passwordHash string) (model.Account, error)
	FindAccount(ctx context.Context, username string) (model.Account, error)
	// MarkSynced records that the identity authority confirmed the account.
	MarkSynced(ctx context.Context, username string) error
	// DeleteAccount removes a pending account. Used as a compensating action
	// when the upstream forward fails; synced accounts are left untouched.
	DeleteAccount(ctx context.Context, username string) error
	Close() error
}
