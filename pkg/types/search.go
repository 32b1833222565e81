// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litreview retrieval
// and analysis pipeline: the canonical Paper record, raw source records,
// analysis results, and per-stage configuration.
package types

import "time"

// SearchResult is the raw record shape returned by a bibliographic search
// backend, before normalization into a Paper. Field presence depends on the
// source; the normalizer tolerates missing optionals.
type SearchResult struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract or summary text.
	Summary string `json:"summary" yaml:"summary"`

	// URL is the source URL (e.g. an arXiv entry ID). The paper identity
	// is derived from it.
	URL string `json:"url" yaml:"url"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Published is the publication or preprint date, if the source knows it.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`
}
