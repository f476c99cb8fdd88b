package embedder

import (
	"fmt"
	"strings"

	"github.com/reviewlens/reviewlens/internal/config"
)

// New builds an Embedder from resolved settings. All providers share one
// LRU cache sized by settings; a zero cache size disables caching.
func New(cfg config.EmbedderSettings) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache, cfg.MaxBatchItems, cfg.MaxBatchChars)
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cfg.Model, cache, cfg.MaxBatchItems, cfg.MaxBatchChars)
	case ProviderLocal, "":
		return NewLocalProvider(cache), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
