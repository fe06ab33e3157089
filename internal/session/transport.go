package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

var ErrNotAuthenticated = errors.New("not logged in")

// Transport is the only place the token is attached to outgoing requests and
// the only place a rejected token is noticed.
type Transport struct {
	Session *Session
	// Scheme is the Authorization keyword, "Token" unless set.
	Scheme string
	Base   http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Session.Token()
	if token == "" {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, ErrNotAuthenticated
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", t.scheme()+" "+token)

	resp, err := t.base().RoundTrip(authed)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := t.Session.invalidateToken(context.WithoutCancel(req.Context()), token, ReasonRejected); err != nil {
			slog.Warn("failed to clear rejected session", "error", err)
		}
	}
	return resp, nil
}

func (t *Transport) scheme() string {
	if t.Scheme == "" {
		return "Token"
	}
	return t.Scheme
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}
