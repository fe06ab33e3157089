package apierror

import (
	"errors"
	"fmt"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an APIError carrying the same code, so
// package-level sentinels keep matching after the message is replaced.
func (e *APIError) Is(target error) bool {
	var other *APIError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *APIError) WithMessage(message string) *APIError {
	clone := *e
	clone.Message = message
	return &clone
}

// Wrap returns a copy of e that keeps err as its cause. The cause is never
// rendered to clients; it only feeds server-side logging and errors.Is.
func (e *APIError) Wrap(err error) *APIError {
	clone := *e
	clone.cause = err
	return &clone
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}
