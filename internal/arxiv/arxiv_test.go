// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litreview/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All You Need</title>
    <summary>We propose the Transformer, a model architecture based on attention.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>2023-01-17T00:00:00Z</published>
    <author><name>Alice Chen</name></author>
  </entry>
</feed>`

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		MaxResults: 5,
	}
}

func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	return NewClient(testCfg(), ts.Client())
}

func TestSearch(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("search_query")
		if !strings.HasPrefix(q, "all:") {
			t.Errorf("search_query = %q, want all: prefix", q)
		}
		fmt.Fprint(w, sampleFeed)
	})

	papers, err := client.Search(context.Background(), "transformer attention", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	// Source relevance order is preserved.
	if papers[0].ID != "1706.03762v7" || papers[1].ID != "2301.07041v1" {
		t.Errorf("order = [%s %s], want source order", papers[0].ID, papers[1].ID)
	}
	if papers[0].Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", papers[0].Title)
	}
	if len(papers[0].Authors) != 2 || papers[0].Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", papers[0].Authors)
	}
	if papers[0].Published.Year() != 2017 {
		t.Errorf("Published = %v", papers[0].Published)
	}
	if papers[0].CitationCount != types.CitationUnknown {
		t.Errorf("CitationCount = %d, want unfetched", papers[0].CitationCount)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(testCfg(), nil)
	if _, err := client.Search(context.Background(), "   ", 5); err == nil {
		t.Error("Search() with blank query should fail")
	}
}

func TestSearchHTTPErrorWrapsUnavailable(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything", 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestSearchTransportErrorWrapsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused from here on

	old := apiBase
	apiBase = ts.URL
	defer func() { apiBase = old }()

	client := NewClient(testCfg(), &http.Client{Timeout: time.Second})
	_, err := client.Search(context.Background(), "anything", 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestSearchSkipsEntriesWithoutID(t *testing.T) {
	feed := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry><title>No ID</title><summary>orphan</summary></entry>
  <entry><id>http://arxiv.org/abs/2301.07041v1</id><title>Good</title><summary>ok</summary></entry>
</feed>`
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feed)
	})

	papers, err := client.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(papers) != 1 || papers[0].ID != "2301.07041v1" {
		t.Errorf("papers = %v, want only the identifiable entry", papers)
	}
}

func TestBuildQuery(t *testing.T) {
	got := buildQuery("transformer attention models")
	want := "all:transformer+attention+models"
	if got != want {
		t.Errorf("buildQuery = %q, want %q", got, want)
	}
}
