// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches candidate papers from the arXiv Atom API by
// keyword. The client is read-only against the remote source and carries
// no local state beyond a politeness rate limiter; results come back as
// canonical Papers in the source's own relevance order.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/paper"
	"github.com/pdiddy/litreview/pkg/types"
)

// ErrUnavailable reports a transport-level failure against the arXiv API.
// Callers decide whether to degrade to local-only results.
var ErrUnavailable = errors.New("arxiv unavailable")

// apiBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Client queries the arXiv API.
type Client struct {
	cfg     types.SearchConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds an arXiv client from config. When
// cfg.RequestsPerSecond is positive, requests are rate limited; arXiv
// asks for no more than one request every three seconds.
func NewClient(cfg types.SearchConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// Search queries arXiv for papers matching query, sorted by the source's
// relevance ranking, and returns at most maxResults normalized Papers.
// Transport failures wrap ErrUnavailable.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		apiBase, buildQuery(query), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: arXiv API returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.Paper
	for _, entry := range feed.Entries {
		r := types.SearchResult{
			Title:   strings.TrimSpace(entry.Title),
			Summary: strings.TrimSpace(entry.Summary),
			URL:     strings.TrimSpace(entry.ID),
		}
		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Published = t
		}

		p, err := paper.FromSearchResult(r)
		if err != nil {
			// An entry with no URL cannot be identified; skip it rather
			// than failing the whole result set.
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// buildQuery constructs the search_query parameter from free text.
func buildQuery(query string) string {
	terms := strings.Fields(query)
	for i, term := range terms {
		terms[i] = url.QueryEscape(term)
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}
