package model

import "time"

type AccountStatus string

const (
	// AccountPending marks a relay account persisted locally whose forward to
	// the identity authority has not been confirmed.
	AccountPending AccountStatus = "pending"
	AccountSynced  AccountStatus = "synced"
)

// Account is the relay's local bookkeeping copy of a registration.
type Account struct {
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	SyncedAt     *time.Time    `json:"synced_at,omitempty"`
}
