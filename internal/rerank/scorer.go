// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/pkg/types"
)

// defaultRerankURL is the scoring endpoint used when the config gives
// none. The wire shape follows the common cross-encoder rerank API:
// {model, query, documents, top_n} in, {results: [{index,
// relevance_score}]} out.
const defaultRerankURL = "https://api.cohere.com/v2/rerank"

// HTTPScorer calls an external cross-encoder rerank API.
type HTTPScorer struct {
	cfg    types.RerankConfig
	client *http.Client
}

// NewHTTPScorer builds a scorer from config.
func NewHTTPScorer(cfg types.RerankConfig, client *http.Client) *HTTPScorer {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPScorer{cfg: cfg, client: client}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []ScoredDoc `json:"results"`
}

// Score sends the full batch to the rerank API and returns its ordering.
// Results are sorted most-relevant-first before returning, in case the
// remote ever answers unsorted.
func (s *HTTPScorer) Score(ctx context.Context, query string, docs []string) ([]ScoredDoc, error) {
	body, err := json.Marshal(rerankRequest{
		Model:     s.cfg.Model,
		Query:     query,
		Documents: docs,
		TopN:      len(docs),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling rerank request: %w", err)
	}

	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultRerankURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("rerank API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank API returned HTTP %d", resp.StatusCode)
	}

	var rr rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("parsing rerank response: %w", err)
	}

	sort.SliceStable(rr.Results, func(i, j int) bool {
		return rr.Results[i].Score > rr.Results[j].Score
	})
	return rr.Results, nil
}
