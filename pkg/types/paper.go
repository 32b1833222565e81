// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CitationUnknown marks a paper whose citation count has not been fetched.
const CitationUnknown = -1

// Paper is the canonical record for an academic paper, regardless of which
// source produced it. Two Paper values with the same ID describe the same
// paper; equality is defined solely by ID.
type Paper struct {
	// ID is a stable identifier derived from the trailing path segment of
	// the source URL (e.g. "2301.07041v1" for an arXiv abstract URL).
	ID string `json:"id" yaml:"id"`

	// URL is the source URL the paper was found at.
	URL string `json:"url" yaml:"url"`

	// Title is the paper title. Normalization substitutes "Untitled" when
	// the source record carries none.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Published is the publication or preprint date. Zero means unknown.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// CitationCount is the number of citations, or CitationUnknown (-1)
	// when it has not been fetched.
	CitationCount int `json:"citation_count" yaml:"citation_count"`
}

// SameAs reports whether p and other identify the same paper.
func (p Paper) SameAs(other Paper) bool {
	return p.ID == other.ID
}

// WithCitations returns a copy of p carrying the given citation count.
// Enrichment returns copies; it never mutates the original record.
func (p Paper) WithCitations(count int) Paper {
	p.CitationCount = count
	return p
}

// WithPublished returns a copy of p carrying the given publication date.
func (p Paper) WithPublished(t time.Time) Paper {
	p.Published = t
	return p
}
