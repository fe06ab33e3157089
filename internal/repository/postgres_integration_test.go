//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-relay/internal/config"
	"go-task-relay/internal/database"
	"go-task-relay/internal/model"
)

func TestPostgresRepositories(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, "integration", config.Database{URL: dsn, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	users := NewUserRepository(db.Pool)
	tokens := NewTokenRepository(db.Pool)
	tasks := NewTaskRepository(db.Pool)

	username := "it-" + uuid.NewString()
	user, err := users.Create(ctx, username, "hash")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM auth_users WHERE id = $1`, user.ID)
	})

	_, err = users.Create(ctx, username, "hash")
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

	found, err := users.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	jti, err := tokens.GetOrCreate(ctx, user.ID, "jti-"+username)
	require.NoError(t, err)
	again, err := tokens.GetOrCreate(ctx, user.ID, "other")
	require.NoError(t, err)
	assert.Equal(t, jti, again)

	owner, err := tokens.Owner(ctx, jti)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)

	due := model.NewDate(time.Now().AddDate(0, 0, 3))
	created, err := tasks.Create(ctx, model.Task{UserID: user.ID, Title: "ship", Effort: 2, DueDate: due})
	require.NoError(t, err)

	got, err := tasks.FindByID(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, due.String(), got.DueDate.String())

	_, err = tasks.FindByID(ctx, user.ID+1_000_000, created.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	require.NoError(t, tasks.Delete(ctx, user.ID, created.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, user.ID, created.ID), model.ErrTaskNotFound)
}
