package repostore

import (
	"context"
	"time"
)

// Store persists repository metadata and per-file content hashes. The
// indexing core reads a Repository's identity fields and writes its sync
// result; the file-hash table drives incremental reindexing.
type Store interface {
	// Repository operations
	CreateRepository(ctx context.Context, repo *Repository) error
	GetRepository(ctx context.Context, id int64) (*Repository, error)
	GetRepositoryByFullName(ctx context.Context, fullName string) (*Repository, error)
	UpdateSyncResult(ctx context.Context, id int64, languages map[string]int64, syncedAt time.Time) error
	DeleteRepository(ctx context.Context, id int64) error

	// File-hash operations
	FileHashes(ctx context.Context, repositoryID int64) (map[string]string, error)
	PutFileHash(ctx context.Context, repositoryID int64, path, hash string) error
	DeleteFileHash(ctx context.Context, repositoryID int64, path string) error
	DeleteFileHashes(ctx context.Context, repositoryID int64) error

	Close() error
}

// Repository is a tracked remote repository. Identity fields are owned by
// the surrounding application; the core writes only the sync fields.
type Repository struct {
	ID           int64
	FullName     string // "owner/name"
	OwnerLogin   string
	Name         string
	Languages    map[string]int64 // language -> byte count, written on sync
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
