package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-relay/internal/model"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveUpstream(operation string, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, operation+":"+outcome)
}

func TestClientLoginSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds model.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Username)
		assert.Equal(t, "secret123", creds.Password)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1", "user_id": 7, "username": "alice"})
	}))
	t.Cleanup(server.Close)

	observer := &recordingObserver{}
	client := New(server.URL+"/", time.Second, WithObserver(observer))

	token, err := client.Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.Equal(t, model.SessionToken{Token: "tok-1", UserID: 7, Username: "alice"}, token)
	require.Equal(t, []string{"login:success"}, observer.outcomes)
}

func TestClientLoginRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
	}))
	t.Cleanup(server.Close)

	observer := &recordingObserver{}
	_, err := New(server.URL, time.Second, WithObserver(observer)).Login(context.Background(), "alice", "nope")

	require.ErrorIs(t, err, ErrRejected)
	require.NotErrorIs(t, err, ErrUnreachable)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	require.Equal(t, "Unable to log in with provided credentials.", rejected.Message)
	require.Equal(t, []string{"login:rejected"}, observer.outcomes)
}

func TestClientUnreachableCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "undecodable success body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>ok</html>"))
			},
		},
		{
			name: "success without token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"user_id":1}`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			t.Cleanup(server.Close)

			_, err := New(server.URL, 100*time.Millisecond).Login(context.Background(), "alice", "secret123")
			require.ErrorIs(t, err, ErrUnreachable)
			require.NotErrorIs(t, err, ErrRejected)
		})
	}
}

func TestClientConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	observer := &recordingObserver{}
	err := New(url, time.Second, WithObserver(observer)).Register(context.Background(), "alice", "secret123")
	require.ErrorIs(t, err, ErrUnreachable)
	require.Equal(t, []string{"register:unreachable"}, observer.outcomes)
}

func TestClientRegister(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/register/", r.URL.Path)
		var creds model.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Username == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Username already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User created successfully"}`))
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, time.Second)
	require.NoError(t, client.Register(context.Background(), "alice", "secret123"))

	err := client.Register(context.Background(), "taken", "secret123")
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "Username already exists", rejected.Message)
}

func TestPrimaryMessage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`{"non_field_errors":["bad creds"],"error":"other"}`: "bad creds",
		`{"error":"Username already exists"}`:                "Username already exists",
		`{"detail":"Invalid token."}`:                        "Invalid token.",
		`{"username":["This field is required."]}`:           "username: This field is required.",
		`{"non_field_errors":[]}`:                            "",
		`not json`:                                           "",
		`[]`:                                                 "",
	}

	for body, want := range tests {
		assert.Equal(t, want, PrimaryMessage([]byte(body)), body)
	}
}
