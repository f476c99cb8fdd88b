package repostore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/reviewlens/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"}
	require.NoError(t, store.CreateRepository(ctx, repo))
	assert.Positive(t, repo.ID)
	assert.False(t, repo.CreatedAt.IsZero())

	got, err := store.GetRepository(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme/demo", got.FullName)
	assert.Equal(t, "acme", got.OwnerLogin)
	assert.Equal(t, "demo", got.Name)
	assert.True(t, got.LastSyncedAt.IsZero())

	byName, err := store.GetRepositoryByFullName(ctx, "acme/demo")
	require.NoError(t, err)
	assert.Equal(t, repo.ID, byName.ID)
}

func TestGetRepositoryNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetRepository(ctx, 12345)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = store.GetRepositoryByFullName(ctx, "nobody/nothing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCreateRepositoryDuplicateFullName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"}
	require.NoError(t, store.CreateRepository(ctx, repo))
	err := store.CreateRepository(ctx, &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"})
	assert.Error(t, err, "full_name is unique")
}

func TestUpdateSyncResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"}
	require.NoError(t, store.CreateRepository(ctx, repo))

	languages := map[string]int64{"Go": 120000, "Shell": 800}
	syncedAt := time.Now().Truncate(time.Second)
	require.NoError(t, store.UpdateSyncResult(ctx, repo.ID, languages, syncedAt))

	got, err := store.GetRepository(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, languages, got.Languages)
	assert.WithinDuration(t, syncedAt, got.LastSyncedAt, time.Second)

	err = store.UpdateSyncResult(ctx, 9999, languages, syncedAt)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFileHashLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"}
	require.NoError(t, store.CreateRepository(ctx, repo))

	require.NoError(t, store.PutFileHash(ctx, repo.ID, "a.go", "hash-a"))
	require.NoError(t, store.PutFileHash(ctx, repo.ID, "b.go", "hash-b"))

	hashes, err := store.FileHashes(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.go": "hash-a", "b.go": "hash-b"}, hashes)

	// Upsert replaces the hash for an existing path.
	require.NoError(t, store.PutFileHash(ctx, repo.ID, "a.go", "hash-a2"))
	hashes, err = store.FileHashes(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-a2", hashes["a.go"])
	assert.Len(t, hashes, 2)

	require.NoError(t, store.DeleteFileHash(ctx, repo.ID, "a.go"))
	hashes, err = store.FileHashes(ctx, repo.ID)
	require.NoError(t, err)
	assert.Len(t, hashes, 1)

	require.NoError(t, store.DeleteFileHashes(ctx, repo.ID))
	hashes, err = store.FileHashes(ctx, repo.ID)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestDeleteRepositoryCascadesFileHashes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	repo := &Repository{FullName: "acme/demo", OwnerLogin: "acme", Name: "demo"}
	require.NoError(t, store.CreateRepository(ctx, repo))
	require.NoError(t, store.PutFileHash(ctx, repo.ID, "a.go", "hash-a"))

	require.NoError(t, store.DeleteRepository(ctx, repo.ID))

	_, err := store.GetRepository(ctx, repo.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	hashes, err := store.FileHashes(ctx, repo.ID)
	require.NoError(t, err)
	assert.Empty(t, hashes, "foreign key cascade removes file hashes")
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(context.Background(), db))
	require.NoError(t, ApplyMigrations(context.Background(), db))

	var version string
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}
