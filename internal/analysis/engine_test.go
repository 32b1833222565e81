// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/internal/cache"
	"github.com/pdiddy/litreview/pkg/types"
)

// mockGenerator returns a canned reply per target paper title, matched
// against the prompt text. It records every prompt it sees.
type mockGenerator struct {
	mu           sync.Mutex
	replies      map[string]string // substring of prompt -> reply
	errOn        string            // substring of prompt that triggers an error
	prompts      []string
	lastMessages []Message
}

func (m *mockGenerator) Complete(_ context.Context, messages []Message, _ bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompt := messages[len(messages)-1].Content
	m.prompts = append(m.prompts, prompt)
	m.lastMessages = messages
	if m.errOn != "" && strings.Contains(prompt, m.errOn) {
		return "", errors.New("backend unavailable")
	}
	for marker, reply := range m.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "", errors.New("no canned reply for prompt")
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func analysisReply(rel, inn, feas int) string {
	return fmt.Sprintf(`{
		"relevance": {"rating": %d, "explanation": "rel"},
		"technical_innovation": {"rating": %d, "explanation": "inn"},
		"feasibility": {"rating": %d, "explanation": "feas"},
		"summary": "a summary",
		"key_contributions": ["c1"],
		"strengths": ["s1"],
		"weaknesses": ["w1"]
	}`, rel, inn, feas)
}

func testPaper(id, title string) types.Paper {
	return types.Paper{
		ID:      id,
		URL:     "https://arxiv.org/abs/" + id,
		Title:   title,
		Summary: "About " + title,
		Authors: []string{"Author " + id},
	}
}

func TestAnalyzeParsesStructuredReply(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{
		"Paper One": analysisReply(8, 6, 7),
	}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	rec, err := eng.Analyze(context.Background(), testPaper("1111.0001", "Paper One"), "")
	require.NoError(t, err)
	assert.Equal(t, 8, rec.Relevance.Score)
	assert.Equal(t, 6, rec.TechnicalInnovation.Score)
	assert.Equal(t, 7, rec.Feasibility.Score)
	assert.Equal(t, "a summary", rec.Summary)
	assert.Equal(t, []string{"c1"}, rec.KeyContributions)
	assert.True(t, rec.OK())
}

func TestAnalyzeStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + analysisReply(5, 5, 5) + "\n```"
	gen := &mockGenerator{replies: map[string]string{"Paper One": fenced}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	rec, err := eng.Analyze(context.Background(), testPaper("1111.0001", "Paper One"), "")
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Relevance.Score)
}

func TestAnalyzeBadResponseIsRecoverable(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"Paper One": "I cannot rate this paper."}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	_, err := eng.Analyze(context.Background(), testPaper("1111.0001", "Paper One"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadResponse)

	// The same paper succeeds once the backend behaves.
	gen.replies["Paper One"] = analysisReply(4, 4, 4)
	rec, err := eng.Analyze(context.Background(), testPaper("1111.0001", "Paper One"), "")
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Relevance.Score)
}

func TestAnalyzeRejectsOutOfRangeRating(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"Paper One": analysisReply(11, 5, 5)}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	_, err := eng.Analyze(context.Background(), testPaper("1111.0001", "Paper One"), "")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestAnalyzeCachesQueryAgnosticResults(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"Paper One": analysisReply(7, 7, 7)}}
	c := cache.New[types.AnalysisRecord](10)
	eng := NewEngine(gen, c, types.AnalysisConfig{})

	p := testPaper("1111.0001", "Paper One")
	first, err := eng.Analyze(context.Background(), p, "")
	require.NoError(t, err)
	second, err := eng.Analyze(context.Background(), p, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls(), "second call should be served from cache")

	// Same title and authors under a different URL shares the entry.
	mirrored := p
	mirrored.ID = "mirror.0001"
	mirrored.URL = "https://mirror.example/mirror.0001"
	_, err = eng.Analyze(context.Background(), mirrored, "")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
}

func TestAnalyzeQueryScopedNeverCached(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"Paper One": analysisReply(7, 7, 7)}}
	c := cache.New[types.AnalysisRecord](10)
	eng := NewEngine(gen, c, types.AnalysisConfig{})

	p := testPaper("1111.0001", "Paper One")
	_, err := eng.Analyze(context.Background(), p, "quantum routing")
	require.NoError(t, err)
	_, err = eng.Analyze(context.Background(), p, "quantum routing")
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, 0, c.Len())
}

func TestAnalyzeBatchKeepsRatingsAttachedToPapers(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{
		"TARGET paper:\nTitle: Paper One":   analysisReply(9, 1, 2),
		"TARGET paper:\nTitle: Paper Two":   analysisReply(3, 8, 4),
		"TARGET paper:\nTitle: Paper Three": analysisReply(5, 5, 9),
	}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{
		testPaper("1111.0001", "Paper One"),
		testPaper("1111.0002", "Paper Two"),
		testPaper("1111.0003", "Paper Three"),
	}
	records, err := eng.AnalyzeBatch(context.Background(), papers, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 9, records["1111.0001"].Relevance.Score)
	assert.Equal(t, 8, records["1111.0002"].TechnicalInnovation.Score)
	assert.Equal(t, 9, records["1111.0003"].Feasibility.Score)
}

func TestAnalyzeBatchIncludesPeerContext(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"TARGET": analysisReply(5, 5, 5)}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{
		testPaper("1111.0001", "Paper One"),
		testPaper("1111.0002", "Paper Two"),
		testPaper("1111.0003", "Paper Three"),
	}
	_, err := eng.AnalyzeBatch(context.Background(), papers, "")
	require.NoError(t, err)

	// The prompt for Paper One names its siblings, not itself, as peers.
	first := gen.prompts[0]
	assert.Contains(t, first, "TARGET paper:\nTitle: Paper One")
	assert.Contains(t, first, "1. Paper Two")
	assert.Contains(t, first, "2. Paper Three")
}

func TestAnalyzeBatchCapsPeers(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{"TARGET": analysisReply(5, 5, 5)}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{MaxPeers: 2})

	papers := make([]types.Paper, 6)
	for i := range papers {
		papers[i] = testPaper(fmt.Sprintf("1111.%04d", i), fmt.Sprintf("Paper %d", i))
	}
	_, err := eng.AnalyzeBatch(context.Background(), papers, "")
	require.NoError(t, err)

	first := gen.prompts[0]
	assert.Contains(t, first, "1. Paper 1")
	assert.Contains(t, first, "2. Paper 2")
	assert.NotContains(t, first, "Paper 3")
}

func TestAnalyzeBatchIsolatesPerPaperFailures(t *testing.T) {
	gen := &mockGenerator{
		replies: map[string]string{
			"TARGET paper:\nTitle: Paper One":   analysisReply(7, 7, 7),
			"TARGET paper:\nTitle: Paper Three": analysisReply(6, 6, 6),
		},
		errOn: "TARGET paper:\nTitle: Paper Two",
	}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{
		testPaper("1111.0001", "Paper One"),
		testPaper("1111.0002", "Paper Two"),
		testPaper("1111.0003", "Paper Three"),
	}
	records, err := eng.AnalyzeBatch(context.Background(), papers, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records["1111.0001"].OK())
	assert.False(t, records["1111.0002"].OK())
	assert.NotEmpty(t, records["1111.0002"].Err)
	assert.True(t, records["1111.0003"].OK())
}

func TestAnalyzeEachCoversAllPapers(t *testing.T) {
	gen := &mockGenerator{
		replies: map[string]string{
			"Paper One":   analysisReply(7, 7, 7),
			"Paper Three": analysisReply(6, 6, 6),
		},
		errOn: "Paper Two",
	}
	eng := NewEngine(gen, nil, types.AnalysisConfig{Concurrency: 3})

	papers := []types.Paper{
		testPaper("1111.0001", "Paper One"),
		testPaper("1111.0002", "Paper Two"),
		testPaper("1111.0003", "Paper Three"),
	}
	records, err := eng.AnalyzeEach(context.Background(), papers, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records["1111.0001"].OK())
	assert.False(t, records["1111.0002"].OK())
	assert.True(t, records["1111.0003"].OK())
}

func TestSynthesizeRequiresAtLeastOneValidRecord(t *testing.T) {
	gen := &mockGenerator{}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{testPaper("1111.0001", "Paper One")}
	records := map[string]types.AnalysisRecord{
		"1111.0001": {Err: "backend unavailable"},
	}
	_, err := eng.Synthesize(context.Background(), papers, records, "")
	assert.ErrorIs(t, err, ErrNoValidAnalyses)
	assert.Equal(t, 0, gen.calls())
}

func TestSynthesizeProceedsWithPartialFailures(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{
		"synthesize": `{
			"overall_comparison": "C stands alone.",
			"strengths_weaknesses": [
				{"paper_title": "Paper C", "strengths": ["thorough"], "weaknesses": ["narrow"]}
			],
			"synthesis": "Only one paper could be assessed."
		}`,
	}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{
		testPaper("a", "Paper A"),
		testPaper("b", "Paper B"),
		testPaper("c", "Paper C"),
	}
	records := map[string]types.AnalysisRecord{
		"a": {Err: "backend unavailable"},
		"b": {Err: "unparseable response"},
		"c": {
			Relevance:           types.Rating{Score: 7},
			TechnicalInnovation: types.Rating{Score: 6},
			Feasibility:         types.Rating{Score: 8},
		},
	}

	syn, err := eng.Synthesize(context.Background(), papers, records, "")
	require.NoError(t, err)
	assert.Equal(t, "C stands alone.", syn.OverallComparison)
	require.Len(t, syn.Verdicts, 1)
	assert.Equal(t, "Paper C", syn.Verdicts[0].PaperTitle)

	// Only the valid paper made it into the prompt.
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Paper C")
	assert.NotContains(t, prompt, "Paper A")
	assert.NotContains(t, prompt, "Paper B")
}

func TestChatReplaysHistoryBeforeQuestion(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{
		"research assistant": "They differ on routing depth.",
	}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{testPaper("1111.0001", "Paper One")}
	history := []Message{
		{Role: "user", Content: "What does Paper One propose?"},
		{Role: "assistant", Content: "A routing scheme."},
	}
	text, err := eng.Chat(context.Background(), papers, history, "How does it compare to prior work?")
	require.NoError(t, err)
	assert.Equal(t, "They differ on routing depth.", text)

	// History turns precede the question; the paper context rides with it.
	require.Len(t, gen.lastMessages, 3)
	assert.Equal(t, "user", gen.lastMessages[0].Role)
	assert.Equal(t, "What does Paper One propose?", gen.lastMessages[0].Content)
	assert.Equal(t, "assistant", gen.lastMessages[1].Role)
	last := gen.lastMessages[2]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "Paper One")
	assert.Contains(t, last.Content, "How does it compare to prior work?")
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	eng := NewEngine(&mockGenerator{}, nil, types.AnalysisConfig{})
	_, err := eng.Chat(context.Background(), nil, nil, "   ")
	assert.Error(t, err)
}

func TestSurveyRequiresPapers(t *testing.T) {
	eng := NewEngine(&mockGenerator{}, nil, types.AnalysisConfig{})
	_, err := eng.Survey(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoValidAnalyses)
}

func TestSurveyReturnsProse(t *testing.T) {
	gen := &mockGenerator{replies: map[string]string{
		"literature survey": "The field has converged on three themes.",
	}}
	eng := NewEngine(gen, nil, types.AnalysisConfig{})

	papers := []types.Paper{testPaper("1111.0001", "Paper One")}
	text, err := eng.Survey(context.Background(), papers, "routing")
	require.NoError(t, err)
	assert.Contains(t, text, "three themes")
}
