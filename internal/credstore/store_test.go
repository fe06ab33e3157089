package credstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"go-task-relay/internal/database"
	"go-task-relay/internal/model"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "users.db"), database.SetRelaySQLite)
	require.NoError(t, err)
	store := NewSQLiteStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			runStoreContract(t, factory(t))
		})
	}
}

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "alice", "hash-1")
	require.NoError(t, err)
	require.Equal(t, model.AccountPending, account.Status)
	require.Nil(t, account.SyncedAt)

	_, err = store.CreateAccount(ctx, "alice", "hash-2")
	require.ErrorIs(t, err, model.ErrDuplicateUsername)

	found, err := store.FindAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "hash-1", found.PasswordHash)
	require.Equal(t, model.AccountPending, found.Status)

	_, err = store.FindAccount(ctx, "bob")
	require.ErrorIs(t, err, model.ErrAccountNotFound)

	require.NoError(t, store.MarkSynced(ctx, "alice"))
	found, err = store.FindAccount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, model.AccountSynced, found.Status)
	require.NotNil(t, found.SyncedAt)

	// synced accounts are not eligible for compensation
	require.ErrorIs(t, store.DeleteAccount(ctx, "alice"), model.ErrAccountNotFound)
	require.ErrorIs(t, store.MarkSynced(ctx, "bob"), model.ErrAccountNotFound)

	_, err = store.CreateAccount(ctx, "carol", "hash-3")
	require.NoError(t, err)
	require.NoError(t, store.DeleteAccount(ctx, "carol"))
	_, err = store.FindAccount(ctx, "carol")
	require.ErrorIs(t, err, model.ErrAccountNotFound)

	_, err = store.CreateAccount(ctx, "carol", "hash-4")
	require.NoError(t, err, "username is reusable after compensation")

	// usernames are case-sensitive, matching the identity authority
	_, err = store.CreateAccount(ctx, "Alice", "hash-5")
	require.NoError(t, err)
}

func TestConcurrentCreateHasSingleWinner(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := factory(t)
			var (
				wg         sync.WaitGroup
				winners    atomic.Int32
				duplicates atomic.Int32
			)

			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.CreateAccount(context.Background(), "racer", "hash")
					switch {
					case err == nil:
						winners.Add(1)
					case errors.Is(err, model.ErrDuplicateUsername):
						duplicates.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			require.Equal(t, int32(1), winners.Load())
			require.Equal(t, int32(15), duplicates.Load())
		})
	}
}
