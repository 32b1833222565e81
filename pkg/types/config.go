// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litreview/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the remote bibliographic search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// RequestsPerSecond caps the request rate against the remote source.
	// Zero disables rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// EmbeddingConfig holds settings for the embedding capability.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the embedding model identifier. Corpus and query text must
	// use the same model so distances are comparable.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the embeddings API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the embeddings endpoint (OpenAI-compatible).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// CacheSize bounds the embedding cache (default 10000 entries).
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// RerankConfig holds settings for the external reranking capability.
type RerankConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the reranking model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the reranking API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the rerank endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AnalysisConfig holds settings for the comparative analysis engine.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	// CacheCapacity bounds the analysis cache (default 1000 entries).
	CacheCapacity int `json:"cache_capacity" yaml:"cache_capacity"`

	// MaxPeers caps how many peer papers are included as comparison
	// context in a batch analysis prompt (default 5).
	MaxPeers int `json:"max_peers" yaml:"max_peers"`

	// Concurrency bounds parallel single-paper analyses (default 4).
	// The comparative batch path is always serialized.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// RetrievalPolicy selects how the orchestrator treats an empty local index.
type RetrievalPolicy string

const (
	// PolicyStrict returns an empty candidate set when the local corpus
	// has nothing, without touching the remote source.
	PolicyStrict RetrievalPolicy = "strict"

	// PolicyBestEffort falls back to the remote source when the local
	// corpus has nothing.
	PolicyBestEffort RetrievalPolicy = "best-effort"
)

// RetrievalConfig holds settings for the hybrid retrieval orchestrator.
type RetrievalConfig struct {
	// MaxResults is the default result cap per retrieval (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Policy selects strict or best-effort handling of an empty local index.
	Policy RetrievalPolicy `json:"policy" yaml:"policy"`
}

// StoreConfig holds settings for the persisted paper database.
type StoreConfig struct {
	// Path is the SQLite database file (default "litreview.db").
	Path string `json:"path" yaml:"path"`
}

// Config groups all stage configurations.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Rerank    RerankConfig    `json:"rerank" yaml:"rerank"`
	Analysis  AnalysisConfig  `json:"analysis" yaml:"analysis"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}
