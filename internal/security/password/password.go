// Package password hashes and verifies user passwords with slow, salted
// one-way functions. Verification always recomputes the hash from the
// candidate password and compares it with the stored encoding.
package password

import (
	"errors"
)

var (
	ErrInvalidHash   = errors.New("password: invalid or unsupported hash encoding")
	ErrEmptyPassword = errors.New("password: empty password")
)

// Hasher produces self-describing encoded hashes.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify returns (true, nil) on match, (false, nil) on mismatch and
	// (false, ErrInvalidHash) when encoded cannot be parsed.
	Verify(encoded string, password string) (bool, error)
}
