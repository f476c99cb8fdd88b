package vectorindex

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// schema holds the vector index tables. One logical collection per
// repository id; point ids are globally unique (derived from the
// repository id) so the primary key is the id alone.
const schema = `
CREATE TABLE IF NOT EXISTS collections (
    repository_id INTEGER PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS points (
    id TEXT PRIMARY KEY,
    repository_id INTEGER NOT NULL,
    repository_name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    identifier TEXT,
    block_type TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    content TEXT NOT NULL,
    file_hash TEXT NOT NULL,
    segment_hash TEXT NOT NULL,
    vector BLOB NOT NULL,
    dimension INTEGER NOT NULL,
    indexed_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_points_repo ON points(repository_id);
CREATE INDEX IF NOT EXISTS idx_points_repo_file ON points(repository_id, file_path);
`

// SQLiteIndex implements Index over a SQLite database. Similarity is
// computed in Go over the repository's candidate set, the way small
// per-repository collections allow.
type SQLiteIndex struct {
	db *sql.DB
}

// NewSQLiteIndex creates the vector index tables if needed.
func NewSQLiteIndex(db *sql.DB) (*SQLiteIndex, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("%w: failed to create vector schema: %v", types.ErrIndexBackend, err)
	}
	return &SQLiteIndex{db: db}, nil
}

func (x *SQLiteIndex) Initialize(ctx context.Context, repositoryID int64) (bool, error) {
	var existing int64
	err := x.db.QueryRowContext(ctx,
		"SELECT repository_id FROM collections WHERE repository_id = ?", repositoryID).Scan(&existing)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}

	_, err = x.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO collections (repository_id) VALUES (?)", repositoryID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create collection: %v", types.ErrIndexBackend, err)
	}
	return false, nil
}

func (x *SQLiteIndex) UpsertPoints(ctx context.Context, repositoryID int64, points []types.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO points (id, repository_id, repository_name, file_path, identifier,
		                    block_type, start_line, end_line, content, file_hash,
		                    segment_hash, vector, dimension, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repository_name = excluded.repository_name,
			identifier = excluded.identifier,
			block_type = excluded.block_type,
			start_line = excluded.start_line,
			end_line = excluded.end_line,
			content = excluded.content,
			file_hash = excluded.file_hash,
			vector = excluded.vector,
			dimension = excluded.dimension,
			indexed_at = excluded.indexed_at
	`
	now := time.Now().UnixNano()
	for _, p := range points {
		pl := p.Payload
		_, err := tx.ExecContext(ctx, query,
			p.ID, repositoryID, pl.RepositoryName, pl.FilePath, pl.Identifier,
			pl.BlockType, pl.StartLine, pl.EndLine, pl.Content, pl.FileHash,
			pl.SegmentHash, serializeVector(p.Vector), len(p.Vector), now)
		if err != nil {
			return fmt.Errorf("%w: failed to upsert point %s: %v", types.ErrIndexBackend, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return nil
}

// candidate is a scored point during search ranking.
type candidate struct {
	match     Match
	indexedAt int64
}

func (x *SQLiteIndex) Search(ctx context.Context, repositoryID int64, vector []float32, minScore float64, limit int) ([]Match, error) {
	if limit <= 0 {
		return []Match{}, nil
	}

	query := `
		SELECT id, repository_id, repository_name, file_path, identifier, block_type,
		       start_line, end_line, content, file_hash, segment_hash, vector, indexed_at
		FROM points
		WHERE repository_id = ?
	`
	rows, err := x.db.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: search query failed: %v", types.ErrIndexBackend, err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]candidate, 0, 256)
	for rows.Next() {
		var p types.IndexPoint
		var identifier sql.NullString
		var blob []byte
		var indexedAt int64
		if err := rows.Scan(
			&p.ID, &p.Payload.RepositoryID, &p.Payload.RepositoryName, &p.Payload.FilePath,
			&identifier, &p.Payload.BlockType, &p.Payload.StartLine, &p.Payload.EndLine,
			&p.Payload.Content, &p.Payload.FileHash, &p.Payload.SegmentHash, &blob, &indexedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
		}
		p.Payload.Identifier = identifier.String

		stored := deserializeVector(blob)
		if len(stored) != len(vector) {
			continue // dimension mismatch, skip
		}

		score := cosineSimilarity(vector, stored)
		if score < minScore {
			continue
		}

		p.Vector = stored
		candidates = append(candidates, candidate{
			match:     Match{Point: p, Score: score},
			indexedAt: indexedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}

	// Descending score; ties break by insertion recency, then id.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].match.Score != candidates[j].match.Score {
			return candidates[i].match.Score > candidates[j].match.Score
		}
		if candidates[i].indexedAt != candidates[j].indexedAt {
			return candidates[i].indexedAt > candidates[j].indexedAt
		}
		return candidates[i].match.Point.ID < candidates[j].match.Point.ID
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	matches := make([]Match, limit)
	for i := 0; i < limit; i++ {
		matches[i] = candidates[i].match
	}
	return matches, nil
}

func (x *SQLiteIndex) DeletePointsByFile(ctx context.Context, repositoryID int64, filePath string) error {
	_, err := x.db.ExecContext(ctx,
		"DELETE FROM points WHERE repository_id = ? AND file_path = ?", repositoryID, filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return nil
}

func (x *SQLiteIndex) DeletePointsByRepository(ctx context.Context, repositoryID int64) error {
	_, err := x.db.ExecContext(ctx, "DELETE FROM points WHERE repository_id = ?", repositoryID)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return nil
}

func (x *SQLiteIndex) ClearCollection(ctx context.Context, repositoryID int64) error {
	return x.DeletePointsByRepository(ctx, repositoryID)
}

func (x *SQLiteIndex) DeleteCollection(ctx context.Context, repositoryID int64) error {
	if err := x.DeletePointsByRepository(ctx, repositoryID); err != nil {
		return err
	}
	_, err := x.db.ExecContext(ctx, "DELETE FROM collections WHERE repository_id = ?", repositoryID)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return nil
}

func (x *SQLiteIndex) CountPoints(ctx context.Context, repositoryID int64) (int, error) {
	var count int
	err := x.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM points WHERE repository_id = ?", repositoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return count, nil
}

func (x *SQLiteIndex) Ping(ctx context.Context) error {
	if err := x.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexBackend, err)
	}
	return nil
}

// Close is a no-op: the shared database handle is owned by the caller.
func (x *SQLiteIndex) Close() error {
	return nil
}
