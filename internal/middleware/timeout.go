package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds handler run time. On expiry the client gets a 503 with
// body as its payload.
func Timeout(timeout time.Duration, body string) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, body)
	}
}

const (
	RelayTimeoutBody     = `{"error":"Request timed out"}`
	AuthorityTimeoutBody = `{"detail":"Request timed out"}`
)
