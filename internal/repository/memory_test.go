package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-relay/internal/model"
)

func TestMemoryUsers_CreateUnique(t *testing.T) {
	users := NewMemory().Users()
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.EqualValues(t, 1, alice.ID)

	_, err = users.Create(ctx, "alice", "other")
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

	// case-sensitive
	_, err = users.Create(ctx, "Alice", "hash")
	require.NoError(t, err)

	found, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, found)

	_, err = users.FindByID(ctx, 99)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestMemoryUsers_ConcurrentCreate(t *testing.T) {
	users := NewMemory().Users()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := users.Create(context.Background(), "race", "hash"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}

func TestMemoryTokens_GetOrCreate(t *testing.T) {
	tokens := NewMemory().Tokens()
	ctx := context.Background()

	first, err := tokens.GetOrCreate(ctx, 1, "jti-a")
	require.NoError(t, err)
	assert.Equal(t, "jti-a", first)

	second, err := tokens.GetOrCreate(ctx, 1, "jti-b")
	require.NoError(t, err)
	assert.Equal(t, "jti-a", second)

	owner, err := tokens.Owner(ctx, "jti-a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, owner)

	_, err = tokens.Owner(ctx, "jti-b")
	assert.ErrorIs(t, err, model.ErrTokenNotFound)

	require.NoError(t, tokens.RevokeForUser(ctx, 1))
	_, err = tokens.Owner(ctx, "jti-a")
	assert.ErrorIs(t, err, model.ErrTokenNotFound)
}

func TestMemoryTasks_OwnerScoping(t *testing.T) {
	tasks := NewMemory().Tasks()
	ctx := context.Background()
	due := model.NewDate(time.Now().AddDate(0, 0, 7))

	first, err := tasks.Create(ctx, model.Task{UserID: 1, Title: "write report", Effort: 2, DueDate: due})
	require.NoError(t, err)
	second, err := tasks.Create(ctx, model.Task{UserID: 1, Title: "review", Effort: 1, DueDate: due})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, model.Task{UserID: 2, Title: "not mine", Effort: 1, DueDate: due})
	require.NoError(t, err)

	list, err := tasks.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	_, err = tasks.FindByID(ctx, 2, first.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	first.Title = "write final report"
	updated, err := tasks.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "write final report", updated.Title)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	stolen := first
	stolen.UserID = 2
	_, err = tasks.Update(ctx, stolen)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, 2, first.ID), model.ErrTaskNotFound)
	require.NoError(t, tasks.Delete(ctx, 1, first.ID))
	assert.ErrorIs(t, tasks.Delete(ctx, 1, first.ID), model.ErrTaskNotFound)
}
