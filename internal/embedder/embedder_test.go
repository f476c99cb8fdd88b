package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchTexts(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		maxItems int
		maxChars int
		want     [][]string
	}{
		{
			name:     "fits in one batch",
			texts:    []string{"a", "b", "c"},
			maxItems: 10,
			maxChars: 100,
			want:     [][]string{{"a", "b", "c"}},
		},
		{
			name:     "split by item count",
			texts:    []string{"a", "b", "c"},
			maxItems: 2,
			maxChars: 100,
			want:     [][]string{{"a", "b"}, {"c"}},
		},
		{
			name:     "split by char budget",
			texts:    []string{"aaaa", "bbbb", "cc"},
			maxItems: 10,
			maxChars: 8,
			want:     [][]string{{"aaaa", "bbbb"}, {"cc"}},
		},
		{
			name:     "oversized text gets own batch",
			texts:    []string{"aaaaaaaaaa", "b"},
			maxItems: 10,
			maxChars: 4,
			want:     [][]string{{"aaaaaaaaaa"}, {"b"}},
		},
		{
			name:     "empty input",
			texts:    nil,
			maxItems: 10,
			maxChars: 100,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batchTexts(tt.texts, tt.maxItems, tt.maxChars)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatchTextsPreservesOrder(t *testing.T) {
	texts := []string{"one", "two", "three", "four", "five"}
	var flat []string
	for _, g := range batchTexts(texts, 2, 1000) {
		flat = append(flat, g...)
	}
	assert.Equal(t, texts, flat)
}

func TestValidateTexts(t *testing.T) {
	assert.ErrorIs(t, validateTexts(nil), ErrEmptyInput)
	assert.ErrorIs(t, validateTexts([]string{"ok", ""}), ErrEmptyText)
	assert.NoError(t, validateTexts([]string{"ok"}))
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(10)
	c.Set("k", []float32{1, 2, 3})

	got, ok := c.Get("k")
	require.True(t, ok)
	got[0] = 99

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, float32(1), again[0], "cached vector must not be mutated through reads")
}

func TestCacheEvicts(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestCacheKeyQualifiesByModel(t *testing.T) {
	assert.NotEqual(t, cacheKey("model-a", "text"), cacheKey("model-b", "text"))
	assert.Equal(t, cacheKey("m", "text"), cacheKey("m", "text"))
}
