package variables

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	ctx := context.Background()
	_, err := store.GetAll(ctx)
	assert.Error(t, err)
	_, err = store.Add(ctx, "a", "b")
	assert.Error(t, err)
	assert.Error(t, store.Migrate())
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_MigrationVersion(t *testing.T) {
	store := setupTestStore(t)
	v, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// Running again is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_AddAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	v, err := store.Add(ctx, "  baseUrl ", " 'https://x.test' ")
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "baseUrl", v.Name)
	assert.Equal(t, "'https://x.test'", v.Value)

	got, err := store.GetByName(ctx, "baseUrl")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, v.Value, got.Value)
	assert.True(t, got.CreatedAt.Equal(fixed))
	assert.True(t, got.UpdatedAt.Equal(fixed))

	_, err = store.GetByName(ctx, "baseurl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Validation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "", "x")
	assert.ErrorIs(t, err, ErrInvalidVariable)
	_, err = store.Add(ctx, "x", "   ")
	assert.ErrorIs(t, err, ErrInvalidVariable)

	_, err = store.Add(ctx, "user", "admin")
	require.NoError(t, err)
	_, err = store.Add(ctx, "user", "other")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSQLiteStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }

	a, err := store.Add(ctx, "a", "1")
	require.NoError(t, err)
	_, err = store.Add(ctx, "b", "2")
	require.NoError(t, err)

	later := created.Add(time.Hour)
	store.now = func() time.Time { return later }

	u, err := store.Update(ctx, a.ID, "", "10")
	require.NoError(t, err)
	assert.Equal(t, "a", u.Name)
	assert.Equal(t, "10", u.Value)
	assert.True(t, u.CreatedAt.Equal(created))
	assert.True(t, u.UpdatedAt.Equal(later))

	_, err = store.Update(ctx, a.ID, "b", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = store.Update(ctx, "missing", "x", "y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Set(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	v, created, err := store.Set(ctx, "token", "abc")
	require.NoError(t, err)
	assert.True(t, created)

	v2, created, err := store.Set(ctx, "token", "def")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, v.ID, v2.ID)
	assert.Equal(t, "def", v2.Value)
}

func TestSQLiteStore_DeleteAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := store.Add(ctx, name, name+"-value")
		require.NoError(t, err)
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[2].Name)

	require.NoError(t, store.Delete(ctx, all[1].ID))
	assert.ErrorIs(t, store.Delete(ctx, all[1].ID), ErrNotFound)

	all, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")
	ctx := context.Background()

	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	require.NoError(t, store.Migrate())
	_, err := store.Add(ctx, "persisted", "yes")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore()
	require.NoError(t, reopened.Open(path))
	defer reopened.Close()
	require.NoError(t, reopened.Migrate())
	v, err := reopened.GetByName(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "yes", v.Value)
}
