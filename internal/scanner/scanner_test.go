package scanner

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/internal/githubapi"
)

// mockProvider is a canned-listing Provider for scanner tests.
type mockProvider struct {
	mu        sync.Mutex
	files     []githubapi.RemoteFile
	listCalls int
}

func (m *mockProvider) ListFiles(ctx context.Context, owner, repo string) ([]githubapi.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.files, nil
}

func (m *mockProvider) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	return nil, nil
}

func (m *mockProvider) GetLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScanner(t *testing.T, provider githubapi.Provider, maxSize int64, ignore []string) *Scanner {
	t.Helper()
	s, err := New(provider, config.ScannerSettings{
		MaxFileSize:    maxSize,
		IgnorePatterns: ignore,
	}, testLogger())
	require.NoError(t, err)
	return s
}

func TestScanFiltersUnsupportedAndOversize(t *testing.T) {
	provider := &mockProvider{files: []githubapi.RemoteFile{
		{Path: "a.py", Size: 100},
		{Path: "docs/b.md", Size: 50},
		{Path: "src/c.py", Size: 200},
		{Path: "big.go", Size: 2048},
		{Path: "image.png", Size: 10},
	}}
	s := newTestScanner(t, provider, 1024, nil)

	files, stats, err := s.ScanWithStats(context.Background(), "acme", "demo")
	require.NoError(t, err)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"a.py", "src/c.py"}, paths)

	assert.Equal(t, 5, stats.TotalFiles)
	assert.Equal(t, 2, stats.SupportedFiles)
	assert.Equal(t, 1, stats.SkippedOversize)
	assert.Equal(t, 2, stats.Languages["Python"])
}

func TestScanAppliesIgnorePatterns(t *testing.T) {
	provider := &mockProvider{files: []githubapi.RemoteFile{
		{Path: "main.go", Size: 100},
		{Path: "vendor/lib/dep.go", Size: 100},
		{Path: "web/node_modules/x/index.js", Size: 100},
		{Path: "dist/app.min.js", Size: 100},
	}}
	s := newTestScanner(t, provider, 0, []string{"vendor", "node_modules", "*.min.js"})

	files, stats, err := s.ScanWithStats(context.Background(), "acme", "demo")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
	assert.Equal(t, 3, stats.IgnoredFiles)
}

func TestScanWithStatsUsesOneListing(t *testing.T) {
	provider := &mockProvider{files: []githubapi.RemoteFile{{Path: "a.go", Size: 1}}}
	s := newTestScanner(t, provider, 0, nil)

	_, _, err := s.ScanWithStats(context.Background(), "acme", "demo")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.listCalls)
}

func TestScanDeterministicOrder(t *testing.T) {
	provider := &mockProvider{files: []githubapi.RemoteFile{
		{Path: "z.go", Size: 1},
		{Path: "a.go", Size: 1},
		{Path: "m/b.go", Size: 1},
	}}
	s := newTestScanner(t, provider, 0, nil)

	files, err := s.Scan(context.Background(), "acme", "demo")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, "m/b.go", files[1].Path)
	assert.Equal(t, "z.go", files[2].Path)
}

func TestNewRejectsInvalidIgnorePattern(t *testing.T) {
	_, err := New(&mockProvider{}, config.ScannerSettings{
		IgnorePatterns: []string{"a*b*c"},
	}, testLogger())
	require.Error(t, err)
}
