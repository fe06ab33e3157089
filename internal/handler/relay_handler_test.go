package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-relay/internal/model"
	"go-task-relay/internal/relay"
)

type stubRelayService struct {
	registerErr error
	token       model.SessionToken
	loginErr    error

	gotUsername string
	gotPassword string
}

func (s *stubRelayService) Register(_ context.Context, username string, password string) error {
	s.gotUsername, s.gotPassword = username, password
	return s.registerErr
}

func (s *stubRelayService) Login(_ context.Context, username string, password string) (model.SessionToken, error) {
	s.gotUsername, s.gotPassword = username, password
	return s.token, s.loginErr
}

func serveRelay(t *testing.T, h http.HandlerFunc, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/api/register", http.NoBody)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	return rec.Code, decoded
}

func TestRelayHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "created",
			body:       `{"username":"alice","password":"secret123"}`,
			wantStatus: http.StatusCreated,
			wantBody:   map[string]any{"message": registeredMessage},
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Request body is missing"},
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "invalid JSON body"},
		},
		{
			name:       "missing fields",
			body:       `{"username":"alice"}`,
			serviceErr: relay.ErrMissingFields,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Username and password are required"},
		},
		{
			name:       "duplicate",
			body:       `{"username":"alice","password":"x"}`,
			serviceErr: relay.ErrDuplicateUsername,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Username already exists"},
		},
		{
			name:       "sync failed hides cause",
			body:       `{"username":"alice","password":"x"}`,
			serviceErr: relay.ErrUpstreamSyncFailed.Wrap(errors.New("dial tcp 10.0.0.5:8000: connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "Failed to sync user with identity authority"},
		},
		{
			name:       "unclassified error",
			body:       `{"username":"alice","password":"x"}`,
			serviceErr: errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRelayHandler(&stubRelayService{registerErr: tt.serviceErr})

			status, body := serveRelay(t, h.Register, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRelayHandler_Login(t *testing.T) {
	t.Run("token passed through", func(t *testing.T) {
		svc := &stubRelayService{token: model.SessionToken{Token: "abc", UserID: 3, Username: "alice"}}
		h := NewRelayHandler(svc)

		status, body := serveRelay(t, h.Login, `{"username":"alice","password":"secret123"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]any{"token": "abc", "user_id": float64(3), "username": "alice"}, body)
		assert.Equal(t, "alice", svc.gotUsername)
		assert.Equal(t, "secret123", svc.gotPassword)
	})

	t.Run("authority message surfaces", func(t *testing.T) {
		svc := &stubRelayService{loginErr: relay.ErrInvalidCredentials.WithMessage("Unable to log in with provided credentials.")}
		h := NewRelayHandler(svc)

		status, body := serveRelay(t, h.Login, `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, map[string]any{"error": "Unable to log in with provided credentials."}, body)
	})

	t.Run("unreachable", func(t *testing.T) {
		h := NewRelayHandler(&stubRelayService{loginErr: relay.ErrUpstreamUnreachable})

		status, body := serveRelay(t, h.Login, `{"username":"alice","password":"secret123"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, map[string]any{"error": "Internal server error"}, body)
	})
}
