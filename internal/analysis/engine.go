// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis rates papers with an AI backend and synthesizes
// cross-paper comparisons. Single-paper analysis works in isolation;
// batch analysis feeds each call the sibling papers so the ratings
// differentiate instead of clustering around the same score.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litreview/internal/cache"
	"github.com/pdiddy/litreview/internal/paper"
	"github.com/pdiddy/litreview/pkg/types"
)

// ErrBadResponse reports a backend reply that could not be parsed into
// the expected structured shape. The paper it was generated for is still
// analyzable on a later attempt.
var ErrBadResponse = errors.New("analysis: unparseable backend response")

// ErrNoValidAnalyses reports a synthesis request where no paper carried
// a usable analysis record.
var ErrNoValidAnalyses = errors.New("analysis: no valid analyses to synthesize")

// defaultMaxPeers bounds the sibling context included in each batch
// analysis prompt.
const defaultMaxPeers = 5

// Engine runs paper analysis through a Generator, caching query-agnostic
// results by content fingerprint.
type Engine struct {
	gen      Generator
	cache    *cache.Cache[types.AnalysisRecord]
	maxPeers int
	workers  int
}

// NewEngine builds an analysis engine. A nil cache disables caching.
func NewEngine(gen Generator, c *cache.Cache[types.AnalysisRecord], cfg types.AnalysisConfig) *Engine {
	maxPeers := cfg.MaxPeers
	if maxPeers <= 0 {
		maxPeers = defaultMaxPeers
	}
	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 1
	}
	return &Engine{gen: gen, cache: c, maxPeers: maxPeers, workers: workers}
}

// Analyze rates a single paper in isolation. When query is empty the
// result is cached by content fingerprint and later calls for the same
// title and authors reuse it; query-scoped analyses are never cached
// because the relevance judgement is tied to the query.
func (e *Engine) Analyze(ctx context.Context, p types.Paper, query string) (types.AnalysisRecord, error) {
	cacheable := query == "" && e.cache != nil
	key := paper.FingerprintPaper(p)
	if cacheable {
		if rec, ok := e.cache.Get(key); ok {
			return rec, nil
		}
	}

	prompt, err := renderSingle(p, query)
	if err != nil {
		return types.AnalysisRecord{}, err
	}
	rec, err := e.generateRecord(ctx, prompt)
	if err != nil {
		return types.AnalysisRecord{}, err
	}
	if cacheable {
		e.cache.Put(key, rec)
	}
	return rec, nil
}

// AnalyzeBatch rates each paper with its siblings as comparison context,
// sequentially so later calls cannot skew earlier ones. At most maxPeers
// siblings accompany each prompt. A failure on one paper is recorded in
// that paper's record and does not abort the batch. The returned map is
// keyed by paper ID and holds an entry for every input paper.
func (e *Engine) AnalyzeBatch(ctx context.Context, papers []types.Paper, query string) (map[string]types.AnalysisRecord, error) {
	records := make(map[string]types.AnalysisRecord, len(papers))
	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		cacheable := query == "" && e.cache != nil
		key := paper.FingerprintPaper(p)
		if cacheable {
			if rec, ok := e.cache.Get(key); ok {
				records[p.ID] = rec
				continue
			}
		}

		peers := peersFor(papers, i, e.maxPeers)
		prompt, err := renderComparative(p, peers, query)
		if err != nil {
			records[p.ID] = types.AnalysisRecord{Err: err.Error()}
			continue
		}
		rec, err := e.generateRecord(ctx, prompt)
		if err != nil {
			records[p.ID] = types.AnalysisRecord{Err: err.Error()}
			continue
		}
		records[p.ID] = rec
		if cacheable {
			e.cache.Put(key, rec)
		}
	}
	return records, nil
}

// AnalyzeEach rates papers independently and concurrently, without peer
// context. Per-paper failures land in that paper's record. Useful when
// comparative differentiation is not needed and latency matters.
func (e *Engine) AnalyzeEach(ctx context.Context, papers []types.Paper, query string) (map[string]types.AnalysisRecord, error) {
	results := make([]types.AnalysisRecord, len(papers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range papers {
		i, p := i, p
		g.Go(func() error {
			rec, err := e.Analyze(gctx, p, query)
			if err != nil {
				rec = types.AnalysisRecord{Err: err.Error()}
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make(map[string]types.AnalysisRecord, len(papers))
	for i, p := range papers {
		records[p.ID] = results[i]
	}
	return records, nil
}

// Synthesize compares already-rated papers and produces a cross-paper
// synthesis. Papers without a usable record are excluded; if none remain
// it returns ErrNoValidAnalyses. Synthesis output depends on the paper
// set and is never cached.
func (e *Engine) Synthesize(ctx context.Context, papers []types.Paper, records map[string]types.AnalysisRecord, query string) (types.Synthesis, error) {
	var rated []types.Paper
	for _, p := range papers {
		if rec, ok := records[p.ID]; ok && rec.OK() {
			rated = append(rated, p)
		}
	}
	if len(rated) == 0 {
		return types.Synthesis{}, ErrNoValidAnalyses
	}

	prompt, err := renderSynthesis(rated, records, query)
	if err != nil {
		return types.Synthesis{}, err
	}
	raw, err := e.gen.Complete(ctx, []Message{{Role: "user", Content: prompt}}, true)
	if err != nil {
		return types.Synthesis{}, fmt.Errorf("generating synthesis: %w", err)
	}

	var syn types.Synthesis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &syn); err != nil {
		return types.Synthesis{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return syn, nil
}

// Survey drafts a short literature survey over the given papers. The
// output is free prose, not structured.
func (e *Engine) Survey(ctx context.Context, papers []types.Paper, query string) (string, error) {
	if len(papers) == 0 {
		return "", ErrNoValidAnalyses
	}
	prompt, err := renderSurvey(papers, query)
	if err != nil {
		return "", err
	}
	text, err := e.gen.Complete(ctx, []Message{{Role: "user", Content: prompt}}, false)
	if err != nil {
		return "", fmt.Errorf("generating survey: %w", err)
	}
	return text, nil
}

// Chat answers a free-form question about the given papers. Earlier
// conversation turns are replayed ahead of the question so follow-ups
// resolve against what was already said; the paper context rides with
// the question itself, keeping the turn roles alternating regardless of
// history length. Chat output is conversational and never cached.
func (e *Engine) Chat(ctx context.Context, papers []types.Paper, history []Message, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("analysis: empty chat question")
	}
	prompt, err := renderChat(papers, question)
	if err != nil {
		return "", err
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	text, err := e.gen.Complete(ctx, messages, false)
	if err != nil {
		return "", fmt.Errorf("generating chat reply: %w", err)
	}
	return text, nil
}

// generateRecord runs one structured analysis call and validates the
// reply. Out-of-range ratings are treated the same as unparseable JSON.
func (e *Engine) generateRecord(ctx context.Context, prompt string) (types.AnalysisRecord, error) {
	raw, err := e.gen.Complete(ctx, []Message{{Role: "user", Content: prompt}}, true)
	if err != nil {
		return types.AnalysisRecord{}, fmt.Errorf("generating analysis: %w", err)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return types.AnalysisRecord{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	rec := payload.record()
	if !rec.OK() {
		return types.AnalysisRecord{}, fmt.Errorf("%w: rating out of range", ErrBadResponse)
	}
	return rec, nil
}

// analysisPayload is the wire shape of a structured analysis reply. The
// backend emits "rating"; internally the field is called Score.
type analysisPayload struct {
	Relevance           ratingPayload `json:"relevance"`
	TechnicalInnovation ratingPayload `json:"technical_innovation"`
	Feasibility         ratingPayload `json:"feasibility"`
	Summary             string        `json:"summary"`
	KeyContributions    []string      `json:"key_contributions"`
	Strengths           []string      `json:"strengths"`
	Weaknesses          []string      `json:"weaknesses"`
}

type ratingPayload struct {
	Rating      int    `json:"rating"`
	Explanation string `json:"explanation"`
}

func (p analysisPayload) record() types.AnalysisRecord {
	return types.AnalysisRecord{
		Relevance:           types.Rating{Score: p.Relevance.Rating, Explanation: p.Relevance.Explanation},
		TechnicalInnovation: types.Rating{Score: p.TechnicalInnovation.Rating, Explanation: p.TechnicalInnovation.Explanation},
		Feasibility:         types.Rating{Score: p.Feasibility.Rating, Explanation: p.Feasibility.Explanation},
		Summary:             p.Summary,
		KeyContributions:    p.KeyContributions,
		Strengths:           p.Strengths,
		Weaknesses:          p.Weaknesses,
	}
}

// peersFor returns up to max siblings of papers[i], in input order.
func peersFor(papers []types.Paper, i, max int) []types.Paper {
	peers := make([]types.Paper, 0, max)
	for j, p := range papers {
		if j == i {
			continue
		}
		peers = append(peers, p)
		if len(peers) == max {
			break
		}
	}
	return peers
}

// extractJSON strips markdown code fences and surrounding prose that
// backends sometimes wrap around a JSON object.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
