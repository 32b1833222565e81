// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vecindex

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/pkg/types"
)

// InputType distinguishes corpus text from query text for embedding models
// that condition on it. Models that do not may ignore it; both kinds still
// share one model so the vector spaces stay comparable.
type InputType string

const (
	InputPassage InputType = "passage"
	InputQuery   InputType = "query"
)

// Embedder converts text into a fixed-dimension vector. One Embedder
// instance serves both corpus and query text.
type Embedder interface {
	Embed(ctx context.Context, text string, input InputType) ([]float32, error)
}

// defaultEmbeddingsURL is the OpenAI-compatible embeddings endpoint used
// when the config gives none. Overridable per-config for local servers.
const defaultEmbeddingsURL = "https://api.openai.com/v1/embeddings"

// HTTPEmbedder calls an OpenAI-compatible embeddings API and caches
// results by content hash so repeated inserts and queries of identical
// text cost one network call.
type HTTPEmbedder struct {
	cfg    types.EmbeddingConfig
	client *http.Client
	cache  *lru.Cache[string, []float32]
}

// NewHTTPEmbedder builds an embedder from config. The embedding cache is
// LRU-bounded to cfg.CacheSize entries (default 10000).
func NewHTTPEmbedder(cfg types.EmbeddingConfig, client *http.Client) (*HTTPEmbedder, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 10000
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPEmbedder{cfg: cfg, client: client, cache: cache}, nil
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the vector for text, consulting the cache first.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string, input InputType) ([]float32, error) {
	key := contentHash(e.cfg.Model, string(input), text)
	if vec, ok := e.cache.Get(key); ok {
		return append([]float32(nil), vec...), nil
	}

	body, err := json.Marshal(embeddingsRequest{Model: e.cfg.Model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshaling embeddings request: %w", err)
	}

	baseURL := e.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultEmbeddingsURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, e.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embeddings API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	var er embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned no vector")
	}

	vec := er.Data[0].Embedding
	e.cache.Add(key, append([]float32(nil), vec...))
	return vec, nil
}

// contentHash keys the embedding cache by model, input type, and text.
func contentHash(model, input, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + input + "\x00" + text))
	return hex.EncodeToString(h[:])
}
