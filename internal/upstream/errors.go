package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable covers transport failures, timeouts, 5xx answers and
	// success answers that cannot be decoded.
	ErrUnreachable = errors.New("identity authority unreachable")
	// ErrRejected matches any *RejectedError.
	ErrRejected = errors.New("identity authority rejected request")
)

// RejectedError is a 4xx answer from the identity authority.
type RejectedError struct {
	StatusCode int
	// Message is the authority's primary error message, empty when the body
	// carried none.
	Message string
	Body    []byte
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity authority rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("identity authority rejected request (status %d)", e.StatusCode)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
