package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// Provider names and defaults.
const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderLocal  = "local"

	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultJinaModel   = "jina-embeddings-v3"

	OpenAIDimension = 1536
	JinaDimension   = 1024
	LocalDimension  = 256

	openAIEndpoint = "https://api.openai.com/v1/embeddings"
	jinaEndpoint   = "https://api.jina.ai/v1/embeddings"
)

// remoteProvider implements Embedder over an OpenAI-compatible embeddings
// endpoint. Both OpenAI and Jina speak this shape.
type remoteProvider struct {
	name          string
	model         string
	endpoint      string
	apiKey        string
	dimension     int
	maxBatchItems int
	maxBatchChars int
	httpClient    *http.Client
	cache         *Cache
	retry         RetryConfig
}

// NewOpenAIProvider builds an OpenAI embedder. Model defaults to
// text-embedding-3-small when empty.
func NewOpenAIProvider(apiKey, model string, cache *Cache, maxBatchItems, maxBatchChars int) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &remoteProvider{
		name:          ProviderOpenAI,
		model:         model,
		endpoint:      openAIEndpoint,
		apiKey:        apiKey,
		dimension:     OpenAIDimension,
		maxBatchItems: maxBatchItems,
		maxBatchChars: maxBatchChars,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		cache:         cache,
		retry:         DefaultRetryConfig(),
	}, nil
}

// NewJinaProvider builds a Jina AI embedder. Model defaults to
// jina-embeddings-v3 when empty.
func NewJinaProvider(apiKey, model string, cache *Cache, maxBatchItems, maxBatchChars int) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: jina", ErrMissingAPIKey)
	}
	if model == "" {
		model = DefaultJinaModel
	}
	return &remoteProvider{
		name:          ProviderJina,
		model:         model,
		endpoint:      jinaEndpoint,
		apiKey:        apiKey,
		dimension:     JinaDimension,
		maxBatchItems: maxBatchItems,
		maxBatchChars: maxBatchChars,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		cache:         cache,
		retry:         DefaultRetryConfig(),
	}, nil
}

func (r *remoteProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))

	// Serve cache hits first; only misses travel to the API.
	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		if r.cache != nil {
			if v, ok := r.cache.Get(cacheKey(r.model, t)); ok {
				results[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	offset := 0
	for _, group := range batchTexts(missTexts, r.maxBatchItems, r.maxBatchChars) {
		vectors, err := retryWithBackoff(ctx, r.retry, func() ([][]float32, error) {
			return r.callAPI(ctx, group)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrEmbeddingBatch, r.name, err)
		}
		for j, v := range vectors {
			idx := missIdx[offset+j]
			results[idx] = v
			if r.cache != nil {
				r.cache.Set(cacheKey(r.model, texts[idx]), v)
			}
		}
		offset += len(group)
	}

	return results, nil
}

func (r *remoteProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"input": texts,
		"model": r.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &apiError{status: resp.StatusCode, body: string(b)}
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data))
	}

	// The API may return entries out of order; the index field is
	// authoritative.
	sort.Slice(apiResp.Data, func(i, j int) bool {
		return apiResp.Data[i].Index < apiResp.Data[j].Index
	})

	vectors := make([][]float32, len(apiResp.Data))
	for i, d := range apiResp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (r *remoteProvider) ValidateConfiguration(ctx context.Context) error {
	if r.apiKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingAPIKey, r.name)
	}
	// One tiny probe request confirms the key and model work before a
	// full job commits to them.
	if _, err := r.callAPI(ctx, []string{"ok"}); err != nil {
		return fmt.Errorf("%w: %s configuration probe failed: %v", types.ErrConfiguration, r.name, err)
	}
	return nil
}

func (r *remoteProvider) Dimension() int { return r.dimension }
func (r *remoteProvider) Provider() string {
	return r.name
}
func (r *remoteProvider) Model() string { return r.model }

func (r *remoteProvider) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider produces deterministic hash-derived vectors. It exists
// for offline development and tests: equal texts map to equal vectors
// and the output is unit-normalized, so cosine ranking behaves sanely
// even though the vectors carry no semantics.
type LocalProvider struct {
	model string
	cache *Cache
}

func NewLocalProvider(cache *Cache) *LocalProvider {
	return &LocalProvider{
		model: "hash-embeddings-v1",
		cache: cache,
	}
}

func (l *LocalProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	results := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if l.cache != nil {
			if v, ok := l.cache.Get(cacheKey(l.model, t)); ok {
				results[i] = v
				continue
			}
		}
		v := hashVector(t, LocalDimension)
		results[i] = v
		if l.cache != nil {
			l.cache.Set(cacheKey(l.model, t), v)
		}
	}
	return results, nil
}

// hashVector fills the requested dimension from iterated SHA-256 digests
// of the text, then normalizes to unit length.
func hashVector(text string, dimension int) []float32 {
	vector := make([]float32, dimension)
	filled := 0
	for round := 0; filled < dimension; round++ {
		digest := sha256.Sum256([]byte(text + "#" + strconv.Itoa(round)))
		for _, b := range digest {
			if filled >= dimension {
				break
			}
			vector[filled] = float32(b)/127.5 - 1.0
			filled++
		}
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v * v)
	}
	if sum == 0 {
		return vector
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

func (l *LocalProvider) ValidateConfiguration(ctx context.Context) error { return nil }
func (l *LocalProvider) Dimension() int                                  { return LocalDimension }
func (l *LocalProvider) Provider() string                                { return ProviderLocal }
func (l *LocalProvider) Model() string                                   { return l.model }
func (l *LocalProvider) Close() error                                    { return nil }
