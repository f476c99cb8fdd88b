package embedder

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// Package-level errors. Batch-level provider failures are additionally
// wrapped with types.ErrEmbeddingBatch so callers can classify them.
var (
	ErrEmptyInput      = errors.New("no texts provided")
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrMissingAPIKey   = errors.New("api key not configured")
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// Embedder turns text segments into vectors. Implementations preserve
// input order: result[i] is the embedding of texts[i], and a non-nil
// error means the whole call failed and no partial result is returned.
type Embedder interface {
	// EmbedTexts embeds a batch of texts in one logical call. The
	// implementation may split the work into provider-sized requests
	// internally.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// ValidateConfiguration verifies the provider is usable before a job
	// commits to it. Remote providers perform a minimal probe request.
	ValidateConfiguration(ctx context.Context) error

	// Dimension returns the vector width this provider produces.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Model returns the model identifier.
	Model() string

	// Close releases held resources.
	Close() error
}

// Cache is an LRU of embeddings keyed by model-qualified content hash.
// Stored vectors are copied on read so callers cannot mutate cached
// entries.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache builds a cache holding up to maxEntries vectors.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := lru.New[string, []float32](maxEntries)
	if err != nil {
		c, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: c}
}

func (c *Cache) Get(key string) ([]float32, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

func (c *Cache) Set(key string, vector []float32) {
	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.cache.Add(key, stored)
}

func (c *Cache) Len() int {
	return c.cache.Len()
}

func (c *Cache) Purge() {
	c.cache.Purge()
}

// cacheKey qualifies the content hash by model so switching models never
// serves stale vectors.
func cacheKey(model, text string) string {
	return model + ":" + types.HashText(text)
}

// validateTexts rejects empty batches and empty elements up front, before
// any provider traffic.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyInput
	}
	for i, t := range texts {
		if t == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyText, i)
		}
	}
	return nil
}

// batchTexts splits texts into consecutive request-sized groups, capped
// by item count and by total characters. A single oversized text still
// gets its own group rather than being dropped.
func batchTexts(texts []string, maxItems, maxChars int) [][]string {
	if maxItems <= 0 {
		maxItems = 50
	}
	if maxChars <= 0 {
		maxChars = 64 * 1024
	}

	var groups [][]string
	var current []string
	chars := 0
	for _, t := range texts {
		if len(current) > 0 && (len(current) >= maxItems || chars+len(t) > maxChars) {
			groups = append(groups, current)
			current = nil
			chars = 0
		}
		current = append(current, t)
		chars += len(t)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
