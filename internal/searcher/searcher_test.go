package searcher

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/reviewlens/internal/embedder"
	"github.com/reviewlens/reviewlens/internal/vectorindex"
	"github.com/reviewlens/reviewlens/pkg/types"
)

// recordingIndex captures the arguments of the last Search call and
// returns canned matches.
type recordingIndex struct {
	mu           sync.Mutex
	lastRepoID   int64
	lastVector   []float32
	lastMinScore float64
	lastLimit    int
	matches      []vectorindex.Match
	searchErr    error
}

func (r *recordingIndex) Initialize(ctx context.Context, repositoryID int64) (bool, error) {
	return false, nil
}
func (r *recordingIndex) UpsertPoints(ctx context.Context, repositoryID int64, points []types.IndexPoint) error {
	return nil
}
func (r *recordingIndex) Search(ctx context.Context, repositoryID int64, vector []float32, minScore float64, limit int) ([]vectorindex.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRepoID = repositoryID
	r.lastVector = vector
	r.lastMinScore = minScore
	r.lastLimit = limit
	return r.matches, r.searchErr
}
func (r *recordingIndex) DeletePointsByFile(ctx context.Context, repositoryID int64, filePath string) error {
	return nil
}
func (r *recordingIndex) DeletePointsByRepository(ctx context.Context, repositoryID int64) error {
	return nil
}
func (r *recordingIndex) ClearCollection(ctx context.Context, repositoryID int64) error  { return nil }
func (r *recordingIndex) DeleteCollection(ctx context.Context, repositoryID int64) error { return nil }
func (r *recordingIndex) CountPoints(ctx context.Context, repositoryID int64) (int, error) {
	return 0, nil
}
func (r *recordingIndex) Ping(ctx context.Context) error { return nil }
func (r *recordingIndex) Close() error                   { return nil }

func newTestSearcher(index vectorindex.Index) *Searcher {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(embedder.NewLocalProvider(nil), index, log)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	s := newTestSearcher(&recordingIndex{})

	_, err := s.Search(context.Background(), 1, "", 0, 10)
	assert.Error(t, err)

	_, err = s.Search(context.Background(), 1, "   \t\n", 0, 10)
	assert.Error(t, err, "whitespace-only queries are empty")
}

func TestSearchNormalizesLimitAndMinScore(t *testing.T) {
	tests := []struct {
		name         string
		limit        int
		minScore     float64
		wantLimit    int
		wantMinScore float64
	}{
		{"zero limit falls back to default", 0, 0.5, DefaultLimit, 0.5},
		{"negative limit falls back to default", -3, 0, DefaultLimit, 0},
		{"oversized limit is capped", 500, 0, MaxLimit, 0},
		{"in-range limit passes through", 25, 0.2, 25, 0.2},
		{"negative min score floors at zero", 10, -0.4, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &recordingIndex{}
			s := newTestSearcher(index)

			_, err := s.Search(context.Background(), 42, "error handling", tt.minScore, tt.limit)
			require.NoError(t, err)

			assert.Equal(t, int64(42), index.lastRepoID)
			assert.Equal(t, tt.wantLimit, index.lastLimit)
			assert.Equal(t, tt.wantMinScore, index.lastMinScore)
			assert.Len(t, index.lastVector, embedder.LocalDimension)
		})
	}
}

func TestSearchMapsMatchesToBlocks(t *testing.T) {
	block := types.CodeBlock{
		FilePath:    "pkg/math/add.go",
		Identifier:  "Add",
		Type:        types.BlockFunction,
		StartLine:   10,
		EndLine:     14,
		Content:     "func Add(a, b int) int { return a + b }",
		FileHash:    "fh",
		SegmentHash: "sh",
	}
	index := &recordingIndex{
		matches: []vectorindex.Match{
			{Point: types.PointFromBlock(1, "acme/demo", block, []float32{1, 0}), Score: 0.91},
		},
	}
	s := newTestSearcher(index)

	results, err := s.Search(context.Background(), 1, "add two numbers", 0, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, block, results[0].Block)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
}

func TestSearchPropagatesIndexError(t *testing.T) {
	index := &recordingIndex{searchErr: types.ErrIndexBackend}
	s := newTestSearcher(index)

	_, err := s.Search(context.Background(), 1, "anything", 0, 10)
	assert.ErrorIs(t, err, types.ErrIndexBackend)
}

func TestSearchQueryVectorIsDeterministic(t *testing.T) {
	index := &recordingIndex{}
	s := newTestSearcher(index)

	_, err := s.Search(context.Background(), 1, "retry with backoff", 0, 10)
	require.NoError(t, err)
	first := index.lastVector

	_, err = s.Search(context.Background(), 1, "retry with backoff", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, first, index.lastVector)
}
