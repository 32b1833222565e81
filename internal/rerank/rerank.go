// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rerank reorders a candidate set by a query-conditioned
// relevance score from an external scoring capability. The scorer sees
// (query, document text) pairs and answers with a permutation plus
// per-document scores; the permutation is trusted as-is since the scorer
// imposes a total order over the batch.
package rerank

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/litreview/pkg/types"
)

// ErrEmptyInput reports a rerank call with no papers to score.
var ErrEmptyInput = errors.New("no papers to rerank")

// ScoredDoc is one scorer result: the index of a document in the request
// batch and its relevance score (higher = more relevant).
type ScoredDoc struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

// Scorer is the external relevance-scoring capability. Implementations
// must return results ordered most-relevant-first, covering each input
// document index at most once.
type Scorer interface {
	Score(ctx context.Context, query string, docs []string) ([]ScoredDoc, error)
}

// Reranker applies an external scorer's ordering to Paper candidate sets.
type Reranker struct {
	scorer Scorer
}

// New builds a Reranker around a scorer.
func New(scorer Scorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Rerank reorders papers by the scorer's query-conditioned relevance and
// truncates to topN. topN values outside (0, len(papers)] mean "all".
// The input slice is not modified.
func (r *Reranker) Rerank(ctx context.Context, query string, papers []types.Paper, topN int) ([]types.Paper, error) {
	if len(papers) == 0 {
		return nil, ErrEmptyInput
	}
	if topN <= 0 || topN > len(papers) {
		topN = len(papers)
	}

	docs := make([]string, len(papers))
	for i, p := range papers {
		docs[i] = documentText(p)
	}

	scored, err := r.scorer.Score(ctx, query, docs)
	if err != nil {
		return nil, fmt.Errorf("scoring %d papers: %w", len(papers), err)
	}

	out := make([]types.Paper, 0, topN)
	seen := make(map[int]bool, len(scored))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(papers) {
			return nil, fmt.Errorf("scorer returned out-of-range index %d for batch of %d", s.Index, len(papers))
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("scorer returned duplicate index %d", s.Index)
		}
		seen[s.Index] = true
		out = append(out, papers[s.Index])
		if len(out) == topN {
			break
		}
	}

	if len(out) < topN {
		return nil, fmt.Errorf("scorer covered %d of %d papers", len(seen), len(papers))
	}
	return out, nil
}

// documentText builds the text the scorer sees for one paper: title plus
// abstract, which is what the relevance judgement should condition on.
func documentText(p types.Paper) string {
	if p.Summary == "" {
		return p.Title
	}
	return p.Title + "\n\n" + p.Summary
}
