package model

import "time"

// User is the identity authority's record of an account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"date_joined"`
}

type AuthClaims struct {
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	TokenID  string `json:"jti"`
}

// SessionToken is what a successful login hands back to the client. The
// token value is a credential and must be treated as opaque.
type SessionToken struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
