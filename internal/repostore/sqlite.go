package repostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with appropriate settings. The returned
// handle is shared with the vector index, which keeps its own tables in
// the same file.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a Store over an open database handle, applying
// pending schema migrations.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if err := ApplyMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Repository operations

func (s *SQLiteStore) CreateRepository(ctx context.Context, repo *Repository) error {
	languages, err := marshalLanguages(repo.Languages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO repositories (full_name, owner_login, name, languages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		repo.FullName, repo.OwnerLogin, repo.Name, languages, now, now)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	repo.ID = id
	repo.CreatedAt = now
	repo.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetRepository(ctx context.Context, id int64) (*Repository, error) {
	return s.getRepository(ctx, "id = ?", id)
}

func (s *SQLiteStore) GetRepositoryByFullName(ctx context.Context, fullName string) (*Repository, error) {
	return s.getRepository(ctx, "full_name = ?", fullName)
}

func (s *SQLiteStore) getRepository(ctx context.Context, where string, arg interface{}) (*Repository, error) {
	query := `
		SELECT id, full_name, owner_login, name, languages, last_synced_at, created_at, updated_at
		FROM repositories
		WHERE ` + where
	var repo Repository
	var languages sql.NullString
	var lastSyncedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&repo.ID, &repo.FullName, &repo.OwnerLogin, &repo.Name,
		&languages, &lastSyncedAt, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastSyncedAt.Valid {
		repo.LastSyncedAt = lastSyncedAt.Time
	}
	if languages.Valid && languages.String != "" {
		if err := json.Unmarshal([]byte(languages.String), &repo.Languages); err != nil {
			return nil, fmt.Errorf("failed to decode languages: %w", err)
		}
	}
	return &repo, nil
}

func (s *SQLiteStore) UpdateSyncResult(ctx context.Context, id int64, languages map[string]int64, syncedAt time.Time) error {
	encoded, err := marshalLanguages(languages)
	if err != nil {
		return err
	}

	query := `
		UPDATE repositories
		SET languages = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, encoded, syncedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update sync result: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteRepository(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM repositories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}
	return nil
}

// File-hash operations

func (s *SQLiteStore) FileHashes(ctx context.Context, repositoryID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT file_path, file_hash FROM repository_files WHERE repository_id = ?", repositoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file hashes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		hashes[path] = hash
	}
	return hashes, rows.Err()
}

func (s *SQLiteStore) PutFileHash(ctx context.Context, repositoryID int64, path, hash string) error {
	query := `
		INSERT INTO repository_files (repository_id, file_path, file_hash, indexed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repository_id, file_path) DO UPDATE SET
			file_hash = excluded.file_hash,
			indexed_at = excluded.indexed_at
	`
	_, err := s.db.ExecContext(ctx, query, repositoryID, path, hash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store file hash: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFileHash(ctx context.Context, repositoryID int64, path string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM repository_files WHERE repository_id = ? AND file_path = ?", repositoryID, path)
	return err
}

func (s *SQLiteStore) DeleteFileHashes(ctx context.Context, repositoryID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM repository_files WHERE repository_id = ?", repositoryID)
	return err
}

func marshalLanguages(languages map[string]int64) (string, error) {
	if len(languages) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(languages)
	if err != nil {
		return "", fmt.Errorf("failed to encode languages: %w", err)
	}
	return string(encoded), nil
}
