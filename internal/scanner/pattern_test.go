package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{name: "exact", pattern: "node_modules"},
		{name: "suffix wildcard", pattern: "*.min.js"},
		{name: "prefix wildcard", pattern: "generated_*"},
		{name: "middle wildcard", pattern: "test_*_fixture"},
		{name: "empty", pattern: "", wantErr: true},
		{name: "two wildcards", pattern: "*.min.*", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, p.String())
		})
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"node_modules", "node_modules/react/index.js", true},
		{"node_modules", "web/node_modules/react/index.js", true},
		{"node_modules", "src/node_modules_backup/a.js", false},
		{".git", ".git/config", true},
		{"*.min.js", "dist/app.min.js", true},
		{"*.min.js", "dist/app.js", false},
		{"*.lock", "yarn.lock", true},
		{"*.lock", "pkg/Cargo.lock", true},
		{"*.generated.go", "api/types.generated.go", true},
		{"*.generated.go", "api/types.go", false},
		{"vendor", "vendor/github.com/x/y.go", true},
		{"vendor", "internal/vendored.go", false},
		{"test_*_fixture", "a/test_big_fixture/f.py", true},
		{"test_*_fixture", "a/test_fixture/f.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.path, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Match(tt.path))
		})
	}
}

func TestCompilePatternsFailsFast(t *testing.T) {
	_, err := CompilePatterns([]string{"node_modules", "*.*.bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most one")
}
