// Package embedder converts code blocks and queries into vector embeddings.
//
// Three providers are supported behind one interface:
//   - openai: OpenAI embeddings API (text-embedding-3-small, 1536 dims)
//   - jina: Jina AI embeddings API (jina-embeddings-v3, 1024 dims)
//   - local: deterministic hash vectors for offline use (256 dims)
//
// # Basic Usage
//
//	cache := embedder.NewCache(10000)
//	emb, err := embedder.NewOpenAIProvider(apiKey, "", cache, 50, 64*1024)
//
//	vectors, err := emb.EmbedTexts(ctx, []string{"func Add(a, b int) int"})
//
// EmbedTexts preserves input order and is all-or-nothing: a failed batch
// fails the whole call. Remote calls retry transient failures (429 and
// 5xx) with exponential backoff; 4xx errors fail immediately.
//
// # Caching
//
// The LRU cache is keyed by model and text hash, so switching models
// never serves stale vectors. Cache hits are served before any API
// traffic; only misses travel to the provider.
//
// # Batching
//
// Texts are grouped into consecutive batches bounded by both item count
// and total character budget. A single oversized text gets a batch of
// its own rather than being rejected.
package embedder
