package vectorindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/reviewlens/internal/repostore"
	"github.com/reviewlens/reviewlens/pkg/types"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	db, err := repostore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	idx, err := NewSQLiteIndex(db)
	require.NoError(t, err)
	return idx
}

func testPoint(repoID int64, filePath, content string, vector []float32) types.IndexPoint {
	block := types.CodeBlock{
		FilePath:  filePath,
		Type:      types.BlockFunction,
		StartLine: 1,
		EndLine:   3,
		Content:   content,
		FileHash:  types.HashText(content + "-file"),
	}
	block.ComputeSegmentHash()
	return types.PointFromBlock(repoID, "acme/demo", block, vector)
}

func TestInitializeReportsExistence(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	existed, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = idx.Initialize(ctx, 1)
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestUpsertPointsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)

	p := testPoint(1, "a.go", "func A() {}", []float32{1, 0})
	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{p}))
	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{p}))

	count, err := idx.CountPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same point id must overwrite, not duplicate")
}

func TestSearchRanksByScore(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)

	points := []types.IndexPoint{
		testPoint(1, "a.go", "close match", []float32{1, 0.1}),
		testPoint(1, "b.go", "exact match", []float32{1, 0}),
		testPoint(1, "c.go", "far away", []float32{0, 1}),
	}
	require.NoError(t, idx.UpsertPoints(ctx, 1, points))

	matches, err := idx.Search(ctx, 1, []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "b.go", matches[0].Point.Payload.FilePath)
	assert.Equal(t, "a.go", matches[1].Point.Payload.FilePath)
	assert.Equal(t, "c.go", matches[2].Point.Payload.FilePath)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestSearchAppliesMinScoreAndLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)

	points := []types.IndexPoint{
		testPoint(1, "a.go", "one", []float32{1, 0}),
		testPoint(1, "b.go", "two", []float32{0.9, 0.1}),
		testPoint(1, "c.go", "three", []float32{0, 1}),
	}
	require.NoError(t, idx.UpsertPoints(ctx, 1, points))

	matches, err := idx.Search(ctx, 1, []float32{1, 0}, 0.5, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2, "orthogonal point falls below min score")

	matches, err = idx.Search(ctx, 1, []float32{1, 0}, 0, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.go", matches[0].Point.Payload.FilePath)
}

func TestSearchScopedToRepository(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		_, err := idx.Initialize(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{testPoint(1, "a.go", "alpha", []float32{1, 0})}))
	require.NoError(t, idx.UpsertPoints(ctx, 2, []types.IndexPoint{testPoint(2, "b.go", "beta", []float32{1, 0})}))

	matches, err := idx.Search(ctx, 1, []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.go", matches[0].Point.Payload.FilePath)
}

func TestSearchSkipsDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{testPoint(1, "a.go", "alpha", []float32{1, 0, 0})}))

	matches, err := idx.Search(ctx, 1, []float32{1, 0}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeletePointsByFile(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{
		testPoint(1, "a.go", "keep me around", []float32{1, 0}),
		testPoint(1, "b.go", "delete me", []float32{0, 1}),
	}))

	require.NoError(t, idx.DeletePointsByFile(ctx, 1, "b.go"))

	count, err := idx.CountPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := idx.Search(ctx, 1, []float32{0, 1}, 0, 10)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "b.go", m.Point.Payload.FilePath)
	}
}

func TestClearAndDeleteCollection(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, idx.UpsertPoints(ctx, 1, []types.IndexPoint{testPoint(1, "a.go", "x", []float32{1})}))

	require.NoError(t, idx.ClearCollection(ctx, 1))
	count, err := idx.CountPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	existed, err := idx.Initialize(ctx, 1)
	require.NoError(t, err)
	assert.True(t, existed, "clear keeps the collection record")

	require.NoError(t, idx.DeleteCollection(ctx, 1))
	existed, err = idx.Initialize(ctx, 1)
	require.NoError(t, err)
	assert.False(t, existed, "delete drops the collection record")
}

func TestPayloadSurvivesRoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_, err := idx.Initialize(ctx, 7)
	require.NoError(t, err)

	block := types.CodeBlock{
		FilePath:   "internal/auth/login.go",
		Identifier: "Service.Login",
		Type:       types.BlockMethod,
		StartLine:  42,
		EndLine:    61,
		Content:    "func (s *Service) Login() {}",
		FileHash:   "fh",
	}
	block.ComputeSegmentHash()
	point := types.PointFromBlock(7, "acme/demo", block, []float32{0.5, 0.5})
	require.NoError(t, idx.UpsertPoints(ctx, 7, []types.IndexPoint{point}))

	matches, err := idx.Search(ctx, 7, []float32{0.5, 0.5}, 0, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	got := matches[0].Point.Payload
	assert.Equal(t, block, got.Block())
	assert.Equal(t, "acme/demo", got.RepositoryName)
	assert.Equal(t, int64(7), got.RepositoryID)
}

func TestPing(t *testing.T) {
	idx := newTestIndex(t)
	assert.NoError(t, idx.Ping(context.Background()))
}
