package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reviewlens/reviewlens/internal/embedder"
	"github.com/reviewlens/reviewlens/internal/vectorindex"
	"github.com/reviewlens/reviewlens/pkg/types"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Searcher answers natural-language queries against a repository's
// vector index: embed the query, rank by cosine similarity, return code
// blocks.
type Searcher struct {
	embedder embedder.Embedder
	index    vectorindex.Index
	log      *slog.Logger
}

func New(emb embedder.Embedder, index vectorindex.Index, log *slog.Logger) *Searcher {
	if log == nil {
		log = slog.Default()
	}
	return &Searcher{embedder: emb, index: index, log: log}
}

// Search returns the top matches for a query. limit <= 0 falls back to
// DefaultLimit and is capped at MaxLimit; minScore filters low-relevance
// matches before ranking.
func (s *Searcher) Search(ctx context.Context, repositoryID int64, query string, minScore float64, limit int) ([]types.SearchMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minScore < 0 {
		minScore = 0
	}

	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Search(ctx, repositoryID, vectors[0], minScore, limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchMatch, len(matches))
	for i, m := range matches {
		results[i] = types.SearchMatch{
			Block: m.Point.Payload.Block(),
			Score: m.Score,
		}
	}

	s.log.Debug("search completed",
		"repository_id", repositoryID, "query_len", len(query),
		"matches", len(results), "min_score", minScore)
	return results, nil
}
