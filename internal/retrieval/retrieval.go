// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval composes the vector index, the remote search client,
// and the paper store into one search operation with a locality-first
// policy. Local results are preferred because they are free; the remote
// source is consulted only when the local corpus has nothing to offer,
// and everything it returns is folded back into the local corpus so the
// index grows monotonically.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/litreview/internal/vecindex"
	"github.com/pdiddy/litreview/pkg/types"
)

// Mode selects which sources a retrieval consults.
type Mode string

const (
	// ModeLocal queries the vector index only.
	ModeLocal Mode = "local"

	// ModeRemote queries the remote source and grows the local corpus.
	ModeRemote Mode = "remote"

	// ModeHybrid queries local first and falls back to remote only when
	// local comes up empty. Non-empty local results suppress the remote
	// call entirely; this is a cost-saving policy, not maximal recall.
	ModeHybrid Mode = "hybrid"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeRemote, ModeHybrid:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown retrieval mode %q (want local, remote, or hybrid)", s)
	}
}

// DegradedError reports a retrieval that could not reach the remote
// source but still has a usable local-only answer. Callers can show
// Partial instead of failing outright, and can distinguish "zero matches"
// from "search degraded" by the error's presence.
type DegradedError struct {
	// Partial is the local-only candidate set.
	Partial []types.Paper

	// Err is the underlying remote failure.
	Err error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("retrieval degraded to %d local result(s): %v", len(e.Partial), e.Err)
}

func (e *DegradedError) Unwrap() error { return e.Err }

// VectorIndex is the local nearest-neighbor capability the orchestrator
// consumes.
type VectorIndex interface {
	Insert(ctx context.Context, p types.Paper) error
	Query(ctx context.Context, text string, k int) ([]vecindex.Match, error)
}

// RemoteSource fetches candidate papers from the external bibliographic
// source in its own relevance order.
type RemoteSource interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error)
}

// PaperLookup resolves a paper ID from the index back to its metadata.
type PaperLookup interface {
	Get(ctx context.Context, id string) (types.Paper, bool, error)
}

// PaperSink persists papers fetched from the remote source.
type PaperSink interface {
	Upsert(ctx context.Context, p types.Paper) error
}

// Orchestrator runs hybrid retrieval over an index, a remote source, and
// the paper store.
type Orchestrator struct {
	index  VectorIndex
	remote RemoteSource
	lookup PaperLookup
	sink   PaperSink
	cfg    types.RetrievalConfig

	// Progress receives human-readable progress lines. Defaults to discard.
	Progress io.Writer
}

// New builds an orchestrator. sink may equal lookup (the store implements
// both); either may be nil, disabling persistence or metadata resolution.
func New(index VectorIndex, remote RemoteSource, lookup PaperLookup, sink PaperSink, cfg types.RetrievalConfig) *Orchestrator {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Policy == "" {
		cfg.Policy = types.PolicyStrict
	}
	return &Orchestrator{
		index:    index,
		remote:   remote,
		lookup:   lookup,
		sink:     sink,
		cfg:      cfg,
		Progress: io.Discard,
	}
}

// Retrieve runs one search and returns an ordered, deduplicated candidate
// set of at most maxResults papers. A *DegradedError return still carries
// the usable local-only set in its Partial field.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, mode Mode, maxResults int) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = o.cfg.MaxResults
	}

	switch mode {
	case ModeLocal:
		return o.retrieveLocal(ctx, query, maxResults)
	case ModeRemote:
		return o.retrieveRemote(ctx, query, maxResults)
	case ModeHybrid:
		return o.retrieveHybrid(ctx, query, maxResults)
	default:
		return nil, fmt.Errorf("unknown retrieval mode %q", mode)
	}
}

func (o *Orchestrator) retrieveLocal(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	local, err := o.queryLocal(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		return local, nil
	}

	// Empty local corpus: strict policy answers "no matches"; best-effort
	// falls back to the remote source.
	if o.cfg.Policy != types.PolicyBestEffort {
		return []types.Paper{}, nil
	}

	fmt.Fprintln(o.Progress, "no local matches, falling back to remote search")
	remote, err := o.retrieveRemote(ctx, query, maxResults)
	if err != nil {
		return nil, &DegradedError{Partial: []types.Paper{}, Err: err}
	}
	return remote, nil
}

func (o *Orchestrator) retrieveRemote(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	papers, err := o.remote.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("remote search: %w", err)
	}

	papers = Dedupe(papers)
	fmt.Fprintf(o.Progress, "remote search returned %d paper(s)\n", len(papers))

	// Fold fetched papers into the local corpus so it grows monotonically.
	for _, p := range papers {
		if err := o.index.Insert(ctx, p); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", p.ID, err)
		}
		if o.sink != nil {
			if err := o.sink.Upsert(ctx, p); err != nil {
				return nil, fmt.Errorf("storing %s: %w", p.ID, err)
			}
		}
	}

	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}
	return papers, nil
}

func (o *Orchestrator) retrieveHybrid(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	local, err := o.queryLocal(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		// Deliberate cost saver: non-empty local results suppress the
		// remote call.
		return local, nil
	}

	fmt.Fprintln(o.Progress, "no local matches, searching remote source")
	remote, err := o.retrieveRemote(ctx, query, maxResults)
	if err != nil {
		return nil, &DegradedError{Partial: []types.Paper{}, Err: err}
	}
	return remote, nil
}

// queryLocal searches the vector index and resolves matches to Papers.
// An empty index is "no local matches", never an error.
func (o *Orchestrator) queryLocal(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	matches, err := o.index.Query(ctx, query, maxResults)
	if err != nil {
		if errors.Is(err, vecindex.ErrEmptyIndex) {
			return nil, nil
		}
		return nil, fmt.Errorf("local search: %w", err)
	}

	var papers []types.Paper
	for _, m := range matches {
		if o.lookup == nil {
			papers = append(papers, types.Paper{ID: m.ID, CitationCount: types.CitationUnknown})
			continue
		}
		p, ok, err := o.lookup.Get(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", m.ID, err)
		}
		if !ok {
			fmt.Fprintf(o.Progress, "warning: index entry %s has no stored metadata\n", m.ID)
			continue
		}
		papers = append(papers, p)
	}
	return Dedupe(papers), nil
}

// Dedupe removes papers sharing an ID, keeping the first-encountered
// representation and preserving first-appearance order.
func Dedupe(papers []types.Paper) []types.Paper {
	seen := make(map[string]bool, len(papers))
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// Merge concatenates candidate sets in order and deduplicates across
// them: when two sets share an ID, the set appearing earlier in the
// merge wins.
func Merge(sets ...[]types.Paper) []types.Paper {
	var all []types.Paper
	for _, s := range sets {
		all = append(all, s...)
	}
	return Dedupe(all)
}
