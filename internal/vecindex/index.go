// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vecindex maintains a semantic nearest-neighbor index over paper
// abstracts. It owns embedding computation: callers hand it Papers and
// query text, never vectors. The index is in-memory and brute-force over
// L2 distance, which is the right shape for a per-session corpus of at
// most a few thousand abstracts.
package vecindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pdiddy/litreview/pkg/types"
)

// ErrEmptyIndex reports a query against an index with no stored vectors.
// Callers treat it as "no local matches", not a hard failure.
var ErrEmptyIndex = errors.New("vector index is empty")

// Match is one nearest-neighbor result: a paper ID and its L2 distance
// from the query vector. Lower distance means more similar.
type Match struct {
	ID       string
	Distance float64
}

type indexEntry struct {
	vector []float32
	rank   int // insertion order, for tie-breaking
}

// Index stores one embedding per paper ID. Inserts and deletes are
// serialized by a writer lock; queries share a read lock, so reads
// proceed concurrently with each other.
type Index struct {
	embedder Embedder

	mu       sync.RWMutex
	entries  map[string]*indexEntry
	nextRank int
}

// New returns an empty index that embeds with the given embedder.
func New(embedder Embedder) *Index {
	return &Index{
		embedder: embedder,
		entries:  make(map[string]*indexEntry),
	}
}

// Insert embeds paper.Summary and stores the vector keyed by paper.ID.
// Inserting an ID that is already present replaces the stored vector but
// keeps the original insertion rank, so repeated inserts of the same
// paper leave query results unchanged.
func (ix *Index) Insert(ctx context.Context, p types.Paper) error {
	if p.ID == "" {
		return fmt.Errorf("inserting paper: empty ID")
	}

	vec, err := ix.embedder.Embed(ctx, p.Summary, InputPassage)
	if err != nil {
		return fmt.Errorf("embedding paper %s: %w", p.ID, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if e, ok := ix.entries[p.ID]; ok {
		e.vector = vec
		return nil
	}
	ix.entries[p.ID] = &indexEntry{vector: vec, rank: ix.nextRank}
	ix.nextRank++
	return nil
}

// Delete removes the vector stored under id. Missing IDs are a no-op.
func (ix *Index) Delete(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
}

// Contains reports whether a vector is stored under id.
func (ix *Index) Contains(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.entries[id]
	return ok
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query embeds text and returns the k nearest stored vectors by L2
// distance, ascending. Distance ties go to the earlier-inserted paper.
// Returns ErrEmptyIndex when nothing is stored.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if ix.Len() == 0 {
		return nil, ErrEmptyIndex
	}

	qvec, err := ix.embedder.Embed(ctx, text, InputQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return nil, ErrEmptyIndex
	}

	type scored struct {
		Match
		rank int
	}
	candidates := make([]scored, 0, len(ix.entries))
	for id, e := range ix.entries {
		candidates = append(candidates, scored{
			Match: Match{ID: id, Distance: l2Distance(qvec, e.vector)},
			rank:  e.rank,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].rank < candidates[j].rank
	})

	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}

	matches := make([]Match, k)
	for i := 0; i < k; i++ {
		matches[i] = candidates[i].Match
	}
	return matches, nil
}

// l2Distance returns the squared Euclidean distance between a and b.
// Vectors of unequal dimension compare over the shorter prefix; with one
// embedding model that case does not arise in practice.
func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
