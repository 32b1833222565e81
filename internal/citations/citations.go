// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citations enriches papers with citation counts and publication
// dates from the Semantic Scholar API. Enrichment is best effort: a
// lookup failure leaves the paper's citation count unknown rather than
// failing the batch.
package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litreview/internal/cache"
	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/paper"
	"github.com/pdiddy/litreview/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,citationCount,year,publicationDate"

// Info holds the enrichment fields looked up for one paper.
type Info struct {
	CitationCount int
	Published     time.Time
}

// Client looks up citation metadata by paper title.
type Client struct {
	client *http.Client
	apiKey string
	ua     string
	cache  *cache.Cache[Info]
}

// NewClient builds a citations client. Lookups are cached by content
// fingerprint so repeated enrichment of the same paper hits the API once.
func NewClient(cfg types.HTTPConfig, apiKey string) *Client {
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		apiKey: apiKey,
		ua:     cfg.UserAgent,
		cache:  cache.New[Info](cache.DefaultCapacity),
	}
}

// Lookup finds citation metadata for a paper by title match.
func (c *Client) Lookup(ctx context.Context, p types.Paper) (Info, error) {
	key := paper.FingerprintPaper(p)
	if info, ok := c.cache.Get(key); ok {
		return info, nil
	}

	params := url.Values{
		"query":  {p.Title},
		"limit":  {"5"},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Info{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return Info{}, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Info{}, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	match, ok := bestMatch(sr.Data, p.Title)
	if !ok {
		return Info{}, fmt.Errorf("no Semantic Scholar match for %q", p.Title)
	}

	info := Info{CitationCount: match.CitationCount}
	if match.PublicationDate != "" {
		if t, parseErr := time.Parse("2006-01-02", match.PublicationDate); parseErr == nil {
			info.Published = t
		}
	} else if match.Year > 0 {
		info.Published = time.Date(match.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	c.cache.Put(key, info)
	return info, nil
}

// Enrich returns copies of papers with citation counts and, where the
// paper lacked one, publication dates filled in. Lookup failures leave
// the affected paper unchanged; the inputs are never mutated.
func (c *Client) Enrich(ctx context.Context, papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	for i, p := range papers {
		out[i] = p
		info, err := c.Lookup(ctx, p)
		if err != nil {
			continue
		}
		out[i] = out[i].WithCitations(info.CitationCount)
		if out[i].Published.IsZero() && !info.Published.IsZero() {
			out[i] = out[i].WithPublished(info.Published)
		}
	}
	return out
}

// bestMatch picks the first result whose title matches case-insensitively,
// falling back to the top-ranked result.
func bestMatch(candidates []semanticPaper, title string) (semanticPaper, bool) {
	if len(candidates) == 0 {
		return semanticPaper{}, false
	}
	want := strings.ToLower(strings.TrimSpace(title))
	for _, cand := range candidates {
		if strings.ToLower(strings.TrimSpace(cand.Title)) == want {
			return cand, true
		}
	}
	return candidates[0], true
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string `json:"paperId"`
	Title           string `json:"title"`
	CitationCount   int    `json:"citationCount"`
	Year            int    `json:"year"`
	PublicationDate string `json:"publicationDate"`
}
