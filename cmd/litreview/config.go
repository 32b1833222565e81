// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/analysis"
	"github.com/pdiddy/litreview/internal/arxiv"
	"github.com/pdiddy/litreview/internal/cache"
	"github.com/pdiddy/litreview/internal/citations"
	"github.com/pdiddy/litreview/internal/rerank"
	"github.com/pdiddy/litreview/internal/retrieval"
	"github.com/pdiddy/litreview/internal/secrets"
	"github.com/pdiddy/litreview/internal/store"
	"github.com/pdiddy/litreview/internal/vecindex"
	"github.com/pdiddy/litreview/pkg/types"
)

func init() {
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.requests_per_second", 1.0)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.user_agent", "litreview/"+version)
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.timeout", "30s")
	viper.SetDefault("embedding.cache_size", 10000)
	viper.SetDefault("rerank.model", "rerank-v3.5")
	viper.SetDefault("rerank.timeout", "30s")
	viper.SetDefault("analysis.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("analysis.cache_capacity", 1000)
	viper.SetDefault("analysis.max_peers", 5)
	viper.SetDefault("analysis.concurrency", 4)
	viper.SetDefault("retrieval.max_results", 5)
	viper.SetDefault("retrieval.policy", string(types.PolicyBestEffort))
	viper.SetDefault("store.path", "litreview.db")
}

// loadConfig assembles the stage configuration from the config file,
// environment, and secret files.
func loadConfig(cmd *cobra.Command) types.Config {
	cfg := types.Config{
		Search: types.SearchConfig{
			HTTPConfig:        httpConfig("search"),
			MaxResults:        viper.GetInt("search.max_results"),
			RequestsPerSecond: viper.GetFloat64("search.requests_per_second"),
		},
		Embedding: types.EmbeddingConfig{
			HTTPConfig: httpConfig("embedding"),
			Model:      viper.GetString("embedding.model"),
			APIKey:     secrets.Get(loadedSecrets, "openai-api-key"),
			BaseURL:    viper.GetString("embedding.base_url"),
			CacheSize:  viper.GetInt("embedding.cache_size"),
		},
		Rerank: types.RerankConfig{
			HTTPConfig: httpConfig("rerank"),
			Model:      viper.GetString("rerank.model"),
			APIKey:     secrets.Get(loadedSecrets, "rerank-api-key"),
			BaseURL:    viper.GetString("rerank.base_url"),
		},
		Analysis: types.AnalysisConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("analysis.model"),
				APIKey:     secrets.Get(loadedSecrets, "anthropic-api-key"),
				MaxRetries: viper.GetInt("analysis.max_retries"),
			},
			CacheCapacity: viper.GetInt("analysis.cache_capacity"),
			MaxPeers:      viper.GetInt("analysis.max_peers"),
			Concurrency:   viper.GetInt("analysis.concurrency"),
		},
		Retrieval: types.RetrievalConfig{
			MaxResults: viper.GetInt("retrieval.max_results"),
			Policy:     types.RetrievalPolicy(viper.GetString("retrieval.policy")),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}

	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	return cfg
}

func httpConfig(section string) types.HTTPConfig {
	timeout := viper.GetDuration(section + ".timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := viper.GetString(section + ".user_agent")
	if ua == "" {
		ua = "litreview/" + version
	}
	return types.HTTPConfig{Timeout: timeout, UserAgent: ua}
}

// pipeline bundles the stages a command may need. Stages are built
// lazily by the openX helpers so a command only pays for what it uses.
type pipeline struct {
	cfg   types.Config
	store *store.Store
}

// openPipeline opens the paper database and loads configuration.
func openPipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg := loadConfig(cmd)
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	return &pipeline{cfg: cfg, store: s}, nil
}

func (p *pipeline) Close() error {
	return p.store.Close()
}

// openOrchestrator builds the hybrid retrieval stack: an embedding index
// seeded from the stored library, the arXiv client, and the paper store
// for metadata resolution and persistence.
func (p *pipeline) openOrchestrator(ctx context.Context) (*retrieval.Orchestrator, error) {
	index, err := p.openIndex(ctx)
	if err != nil {
		return nil, err
	}
	remote := arxiv.NewClient(p.cfg.Search, &http.Client{Timeout: p.cfg.Search.Timeout})
	orch := retrieval.New(index, remote, p.store, p.store, p.cfg.Retrieval)
	orch.Progress = os.Stderr
	return orch, nil
}

// openIndex builds the embedding index seeded from the stored library so
// local retrieval covers papers fetched in earlier runs.
func (p *pipeline) openIndex(ctx context.Context) (*vecindex.Index, error) {
	embedder, err := vecindex.NewHTTPEmbedder(p.cfg.Embedding, &http.Client{Timeout: p.cfg.Embedding.Timeout})
	if err != nil {
		return nil, err
	}
	index := vecindex.New(embedder)

	papers, err := p.store.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, paper := range papers {
		if err := index.Insert(ctx, paper); err != nil {
			return nil, fmt.Errorf("indexing stored paper %s: %w", paper.ID, err)
		}
	}
	return index, nil
}

func (p *pipeline) openReranker() *rerank.Reranker {
	scorer := rerank.NewHTTPScorer(p.cfg.Rerank, &http.Client{Timeout: p.cfg.Rerank.Timeout})
	return rerank.New(scorer)
}

func (p *pipeline) openEngine() *analysis.Engine {
	gen := analysis.NewClaudeGenerator(p.cfg.Analysis.AIConfig, &http.Client{Timeout: 120 * time.Second})
	capacity := p.cfg.Analysis.CacheCapacity
	if capacity <= 0 {
		capacity = cache.DefaultCapacity
	}
	return analysis.NewEngine(gen, cache.New[types.AnalysisRecord](capacity), p.cfg.Analysis)
}

func (p *pipeline) openCitations() *citations.Client {
	return citations.NewClient(p.cfg.Search.HTTPConfig, secrets.Get(loadedSecrets, "semantic-scholar-api-key"))
}
