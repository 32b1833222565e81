// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/litreview/pkg/types"
)

// singlePrompt rates one paper in isolation, optionally against a query.
const singlePrompt = `You are an expert reviewer of research papers.
Analyze the following paper and rate it on three dimensions, each on a
scale of 0 to 10.

Title: {{.Title}}
Authors: {{.Authors}}
Abstract: {{.Summary}}
{{- if .Query}}

The user is researching: "{{.Query}}". Judge relevance against that topic.
{{- else}}

Judge relevance against the paper's own stated research area.
{{- end}}

Respond with a JSON object and nothing else, using exactly this shape:
{
  "relevance": {"rating": <0-10>, "explanation": "<one sentence>"},
  "technical_innovation": {"rating": <0-10>, "explanation": "<one sentence>"},
  "feasibility": {"rating": <0-10>, "explanation": "<one sentence>"},
  "summary": "<two to three sentences>",
  "key_contributions": ["<contribution>", ...],
  "strengths": ["<strength>", ...],
  "weaknesses": ["<weakness>", ...]
}`

// comparativePrompt rates one paper in the context of its peers so that
// ratings differentiate rather than cluster.
const comparativePrompt = `You are an expert reviewer of research papers.
Analyze the TARGET paper below and rate it on three dimensions, each on
a scale of 0 to 10. Rate it relative to the peer papers listed after it:
use the full scale and differentiate. Do not give every paper similar
scores.

TARGET paper:
Title: {{.Title}}
Authors: {{.Authors}}
Abstract: {{.Summary}}
{{- if .Query}}

The user is researching: "{{.Query}}". Judge relevance against that topic.
{{- end}}

Peer papers for comparison:
{{- range $i, $p := .Peers}}
{{inc $i}}. {{$p.Title}} — {{$p.Summary}}
{{- end}}

Respond with a JSON object and nothing else, using exactly this shape:
{
  "relevance": {"rating": <0-10>, "explanation": "<one sentence>"},
  "technical_innovation": {"rating": <0-10>, "explanation": "<one sentence>"},
  "feasibility": {"rating": <0-10>, "explanation": "<one sentence>"},
  "summary": "<two to three sentences>",
  "key_contributions": ["<contribution>", ...],
  "strengths": ["<strength>", ...],
  "weaknesses": ["<weakness>", ...]
}`

// synthesisPrompt compares a set of already-rated papers and asks for a
// cross-paper synthesis.
const synthesisPrompt = `You are an expert reviewer of research papers.
Below are {{len .Papers}} papers with their ratings. Compare them and
synthesize the findings.
{{- if .Query}}

The user is researching: "{{.Query}}".
{{- end}}

{{range $i, $p := .Papers}}
Paper {{inc $i}}: {{$p.Title}}
Authors: {{$p.Authors}}
Relevance: {{$p.Relevance}}/10, Innovation: {{$p.Innovation}}/10, Feasibility: {{$p.Feasibility}}/10
Abstract: {{$p.Summary}}
{{end}}
Respond with a JSON object and nothing else, using exactly this shape:
{
  "overall_comparison": "<two to four sentences comparing the papers>",
  "strengths_weaknesses": [
    {"paper_title": "<title>", "strengths": ["..."], "weaknesses": ["..."]}
  ],
  "synthesis": "<a paragraph synthesizing the combined findings>"
}`

// surveyPrompt drafts a short literature survey from rated papers.
const surveyPrompt = `You are an expert academic writer. Draft a short
literature survey covering the papers below. Organize by theme, cite
papers by title, and close with open problems.
{{- if .Query}}

The survey topic is: "{{.Query}}".
{{- end}}

{{range $i, $p := .Papers}}
Paper {{inc $i}}: {{$p.Title}}
Authors: {{$p.Authors}}
Abstract: {{$p.Summary}}
{{end}}
Respond with the survey text in plain prose. No JSON.`

// chatPrompt answers a free-form question grounded in the given papers.
const chatPrompt = `You are a research assistant discussing academic
papers with a user. Ground your answer in the papers below; say so when
they do not cover the question.

{{range $i, $p := .Papers}}
Paper {{inc $i}}: {{$p.Title}}
Authors: {{$p.Authors}}
Abstract: {{$p.Summary}}
{{end}}
Question: {{.Query}}

Answer in plain prose. No JSON.`

var tmplFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var (
	singleTmpl      = template.Must(template.New("single").Funcs(tmplFuncs).Parse(singlePrompt))
	comparativeTmpl = template.Must(template.New("comparative").Funcs(tmplFuncs).Parse(comparativePrompt))
	synthesisTmpl   = template.Must(template.New("synthesis").Funcs(tmplFuncs).Parse(synthesisPrompt))
	surveyTmpl      = template.Must(template.New("survey").Funcs(tmplFuncs).Parse(surveyPrompt))
	chatTmpl        = template.Must(template.New("chat").Funcs(tmplFuncs).Parse(chatPrompt))
)

type paperPromptData struct {
	Title   string
	Authors string
	Summary string
	Query   string
	Peers   []peerPromptData
}

type peerPromptData struct {
	Title   string
	Summary string
}

type ratedPromptData struct {
	ID          string
	Title       string
	Authors     string
	Summary     string
	Relevance   int
	Innovation  int
	Feasibility int
}

type multiPromptData struct {
	Query  string
	Papers []ratedPromptData
}

func renderSingle(p types.Paper, query string) (string, error) {
	return render(singleTmpl, paperPromptData{
		Title:   p.Title,
		Authors: strings.Join(p.Authors, ", "),
		Summary: p.Summary,
		Query:   query,
	})
}

func renderComparative(p types.Paper, peers []types.Paper, query string) (string, error) {
	data := paperPromptData{
		Title:   p.Title,
		Authors: strings.Join(p.Authors, ", "),
		Summary: p.Summary,
		Query:   query,
	}
	for _, peer := range peers {
		data.Peers = append(data.Peers, peerPromptData{Title: peer.Title, Summary: peer.Summary})
	}
	return render(comparativeTmpl, data)
}

func renderSynthesis(papers []types.Paper, records map[string]types.AnalysisRecord, query string) (string, error) {
	data := multiPromptData{Query: query}
	for _, p := range papers {
		rec := records[p.ID]
		data.Papers = append(data.Papers, ratedPromptData{
			ID:          p.ID,
			Title:       p.Title,
			Authors:     strings.Join(p.Authors, ", "),
			Summary:     p.Summary,
			Relevance:   rec.Relevance.Score,
			Innovation:  rec.TechnicalInnovation.Score,
			Feasibility: rec.Feasibility.Score,
		})
	}
	return render(synthesisTmpl, data)
}

func renderChat(papers []types.Paper, question string) (string, error) {
	data := multiPromptData{Query: question}
	for _, p := range papers {
		data.Papers = append(data.Papers, ratedPromptData{
			Title:   p.Title,
			Authors: strings.Join(p.Authors, ", "),
			Summary: p.Summary,
		})
	}
	return render(chatTmpl, data)
}

func renderSurvey(papers []types.Paper, query string) (string, error) {
	data := multiPromptData{Query: query}
	for _, p := range papers {
		data.Papers = append(data.Papers, ratedPromptData{
			Title:   p.Title,
			Authors: strings.Join(p.Authors, ", "),
			Summary: p.Summary,
		})
	}
	return render(surveyTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return sb.String(), nil
}
