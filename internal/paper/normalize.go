// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paper converts heterogeneous source records into the canonical
// Paper entity. Records arrive from three shapes: remote search results,
// vector-store metadata maps, and user-selected paper maps. Normalization
// tolerates missing optional fields and fails only when no identifier can
// be derived.
package paper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/litreview/pkg/types"
)

// ErrMissingIdentifier reports a source record with no URL to derive a
// paper identity from. Such records are unusable.
var ErrMissingIdentifier = errors.New("source record has no URL")

// DefaultTitle substitutes for a missing title.
const DefaultTitle = "Untitled"

// ID derives the stable paper identifier from a source URL: the trailing
// path segment, with any trailing slashes ignored
// (e.g. "http://arxiv.org/abs/2301.07041v1" yields "2301.07041v1").
func ID(url string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if trimmed == "" {
		return "", ErrMissingIdentifier
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "", fmt.Errorf("deriving id from %q: %w", url, ErrMissingIdentifier)
	}
	return trimmed, nil
}

// FromSearchResult normalizes a remote search record.
func FromSearchResult(r types.SearchResult) (types.Paper, error) {
	id, err := ID(r.URL)
	if err != nil {
		return types.Paper{}, err
	}
	return types.Paper{
		ID:            id,
		URL:           strings.TrimSpace(r.URL),
		Title:         orDefault(r.Title),
		Summary:       strings.TrimSpace(r.Summary),
		Authors:       trimAll(r.Authors),
		Published:     r.Published,
		CitationCount: types.CitationUnknown,
	}, nil
}

// FromMetadata normalizes a vector-store metadata map. The store keeps
// the paper's fields as loosely typed values keyed by field name; authors
// may appear as a list or as a comma-joined string.
func FromMetadata(id string, meta map[string]any) (types.Paper, error) {
	url := stringField(meta, "url")
	if url == "" && id == "" {
		return types.Paper{}, ErrMissingIdentifier
	}
	if id == "" {
		derived, err := ID(url)
		if err != nil {
			return types.Paper{}, err
		}
		id = derived
	}
	p := types.Paper{
		ID:            id,
		URL:           url,
		Title:         orDefault(stringField(meta, "title")),
		Summary:       stringField(meta, "summary"),
		Authors:       authorsField(meta["authors"]),
		CitationCount: types.CitationUnknown,
	}
	if t, ok := dateField(meta["published"]); ok {
		p.Published = t
	}
	if n, ok := intField(meta["citation_count"]); ok {
		p.CitationCount = n
	}
	return p, nil
}

// FromSelection normalizes a user-selected paper map as submitted by the
// frontend. Selection maps use display-oriented keys ("name", "author",
// "date", "citation") that differ from the search record shape.
func FromSelection(sel map[string]any) (types.Paper, error) {
	url := stringField(sel, "url")
	id, err := ID(url)
	if err != nil {
		return types.Paper{}, err
	}
	title := stringField(sel, "name")
	if title == "" {
		title = stringField(sel, "title")
	}
	p := types.Paper{
		ID:            id,
		URL:           url,
		Title:         orDefault(title),
		Summary:       stringField(sel, "summary"),
		Authors:       authorsField(firstPresent(sel, "author", "authors")),
		CitationCount: types.CitationUnknown,
	}
	if t, ok := dateField(firstPresent(sel, "date", "published")); ok {
		p.Published = t
	}
	if n, ok := intField(sel["citation"]); ok {
		p.CitationCount = n
	}
	return p, nil
}

func orDefault(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

func trimAll(ss []string) []string {
	var out []string
	for _, s := range ss {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// authorsField accepts either an ordered list of names or a comma-joined
// string, which is how the original vector store serialized authors.
func authorsField(v any) []string {
	switch a := v.(type) {
	case []string:
		return trimAll(a)
	case []any:
		var out []string
		for _, e := range a {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return trimAll(out)
	case string:
		if strings.TrimSpace(a) == "" {
			return nil
		}
		return trimAll(strings.Split(a, ","))
	default:
		return nil
	}
}

// dateFormats lists the date layouts seen across source records.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	time.ANSIC,
}

func dateField(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case string:
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func intField(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
