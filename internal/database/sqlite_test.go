package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAppliesMigrationSets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	relayDB, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "relay", "users.db"), SetRelaySQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = relayDB.Close() })

	var count int
	require.NoError(t, relayDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	require.Zero(t, count)

	clientDB, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "state.db"), SetClientSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientDB.Close() })

	_, err = clientDB.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES ('token', x'01')`)
	require.NoError(t, err)
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	first, err := OpenSQLite(ctx, path, SetRelaySQLite)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path, SetRelaySQLite)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(context.Background(), "", SetRelaySQLite)
	require.Error(t, err)
}
