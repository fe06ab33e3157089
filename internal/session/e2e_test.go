package session_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-task-relay/internal/config"
	"go-task-relay/internal/credstore"
	"go-task-relay/internal/handler"
	"go-task-relay/internal/middleware"
	"go-task-relay/internal/model"
	"go-task-relay/internal/relay"
	"go-task-relay/internal/repository"
	"go-task-relay/internal/router"
	"go-task-relay/internal/security/password"
	"go-task-relay/internal/service"
	"go-task-relay/internal/session"
	"go-task-relay/internal/upstream"
)

type stack struct {
	relayURL string
	tasksURL string
}

func startStack(t *testing.T) stack {
	t.Helper()

	serverCfg := config.Server{RequestTimeout: 5 * time.Second, RateLimitRPM: 1000, AuthRateLimit: 1000}

	mem := repository.NewMemory()
	hasher := password.NewArgon2id(password.Argon2idParams{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})
	authService := service.NewAuthService(mem.Users(), mem.Tokens(), hasher, "session-e2e-secret-123")
	authority := httptest.NewServer(router.NewAuthority(serverCfg, middleware.NewAuthMiddleware(authService), router.AuthorityHandlers{
		Auth: handler.NewAuthHandler(authService),
		Task: handler.NewTaskHandler(service.NewTaskService(mem.Tasks())),
	}, nil))
	t.Cleanup(authority.Close)

	relaySvc := relay.NewService(credstore.NewMemoryStore(), upstream.New(authority.URL, 2*time.Second), password.NewBcrypt(4), relay.PolicyEager, nil)
	relaySrv := httptest.NewServer(router.NewRelay(serverCfg, handler.NewRelayHandler(relaySvc), router.RelayOptions{}))
	t.Cleanup(relaySrv.Close)

	return stack{relayURL: relaySrv.URL, tasksURL: authority.URL}
}

func TestEndToEnd_LoginThenRejectedToken(t *testing.T) {
	ctx := context.Background()
	st := startStack(t)

	s, err := session.Open(ctx, session.NewMemoryTokenStore())
	require.NoError(t, err)
	require.Equal(t, session.Unauthenticated, s.State())

	relayClient := session.NewRelayClient(st.relayURL, 5*time.Second)
	tasks := session.NewTaskClient(st.tasksURL, s, "Token", 5*time.Second)

	message, err := relayClient.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully and synced with identity authority", message)

	token, err := relayClient.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, "alice", token.Username)

	require.NoError(t, s.Authenticate(ctx, token))
	assert.Equal(t, session.ViewTasks, s.Route(session.ViewLogin))

	list, err := tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Corrupt the token the way a tampered local store would.
	require.NoError(t, s.Authenticate(ctx, model.SessionToken{Token: token.Token + "x", Username: "alice"}))

	_, err = tasks.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnauthorized)
	assert.Equal(t, session.Unauthenticated, s.State())
	assert.Equal(t, session.ViewLogin, s.Route(session.ViewTasks))

	_, err = tasks.List(ctx)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestEndToEnd_RelayErrors(t *testing.T) {
	ctx := context.Background()
	st := startStack(t)
	relayClient := session.NewRelayClient(st.relayURL, 5*time.Second)

	_, err := relayClient.Register(ctx, "", "secret123")
	assert.ErrorIs(t, err, session.ErrRejected)
	assert.EqualError(t, err, "Username and password are required")

	_, err = relayClient.Register(ctx, "bob", "secret123")
	require.NoError(t, err)
	_, err = relayClient.Register(ctx, "bob", "secret123")
	assert.ErrorIs(t, err, session.ErrRejected)
	assert.EqualError(t, err, "Username already exists")

	_, err = relayClient.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
	assert.EqualError(t, err, "Unable to log in with provided credentials.")
}

func TestEndToEnd_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	st := startStack(t)

	relayClient := session.NewRelayClient(st.relayURL, 5*time.Second)
	_, err := relayClient.Register(ctx, "carol", "secret123")
	require.NoError(t, err)
	token, err := relayClient.Login(ctx, "carol", "secret123")
	require.NoError(t, err)

	s, err := session.Open(ctx, session.NewMemoryTokenStore())
	require.NoError(t, err)
	require.NoError(t, s.Authenticate(ctx, token))
	tasks := session.NewTaskClient(st.tasksURL, s, "Bearer", 5*time.Second)

	require.NoError(t, tasks.Revalidate(ctx))

	title, effort, due := "Write report", 3, time.Now().AddDate(0, 0, 7).Format(model.DateLayout)
	created, err := tasks.Create(ctx, model.TaskRequest{Title: &title, Effort: &effort, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, title, created.Title)

	newEffort := 5
	patched, err := tasks.Patch(ctx, created.ID, model.TaskRequest{Effort: &newEffort})
	require.NoError(t, err)
	assert.Equal(t, 5, patched.Effort)
	assert.Equal(t, title, patched.Title)

	fetched, err := tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, patched.Effort, fetched.Effort)

	var buf bytes.Buffer
	n, err := tasks.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := book.GetRows(service.ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, title, rows[1][1])

	require.NoError(t, tasks.Delete(ctx, created.ID))
	_, err = tasks.Get(ctx, created.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, session.Authenticated, s.State())
}
