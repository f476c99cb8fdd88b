package vectorindex

import (
	"context"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// Match is one ranked similarity-search result.
type Match struct {
	Point types.IndexPoint
	Score float64
}

// Index is the vector index boundary: per-repository collection
// lifecycle plus point-level upsert and similarity search. Backend
// unavailability is fatal to the calling job; implementations never drop
// points silently.
type Index interface {
	// Initialize creates the repository's collection if absent and
	// reports whether it already existed. Idempotent.
	Initialize(ctx context.Context, repositoryID int64) (existed bool, err error)

	// UpsertPoints inserts or replaces points by id. Safe to call
	// concurrently for disjoint id sets within one collection.
	UpsertPoints(ctx context.Context, repositoryID int64, points []types.IndexPoint) error

	// Search returns up to limit matches with score >= minScore, ordered
	// by descending similarity. Ties break by insertion recency, then by
	// id for determinism.
	Search(ctx context.Context, repositoryID int64, vector []float32, minScore float64, limit int) ([]Match, error)

	// DeletePointsByFile removes all points of one file within the
	// repository's collection.
	DeletePointsByFile(ctx context.Context, repositoryID int64, filePath string) error

	// DeletePointsByRepository removes all points of the repository but
	// keeps the collection.
	DeletePointsByRepository(ctx context.Context, repositoryID int64) error

	// ClearCollection removes all points, keeping the collection record.
	ClearCollection(ctx context.Context, repositoryID int64) error

	// DeleteCollection removes the collection and its points entirely.
	DeleteCollection(ctx context.Context, repositoryID int64) error

	// CountPoints reports the number of points in the collection.
	CountPoints(ctx context.Context, repositoryID int64) (int, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
