// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Rating is one scored dimension of a paper assessment: an integer score
// on a 0-10 scale plus a free-text explanation.
type Rating struct {
	// Score is the rating on a 0 (worst) to 10 (best) scale.
	Score int `json:"score" yaml:"score"`

	// Explanation justifies the score, comparatively when the rating was
	// produced with peer papers in context.
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Valid reports whether the score lies on the 0-10 scale.
func (r Rating) Valid() bool {
	return r.Score >= 0 && r.Score <= 10
}

// AnalysisRecord is the structured assessment of one paper: three rated
// dimensions plus optional descriptive fields. Records are cached by a
// content fingerprint of (title, authors), not by Paper.ID, so the same
// textual paper fetched from different URLs shares one cache entry.
type AnalysisRecord struct {
	// Relevance rates the paper against the search query when one was
	// supplied, or against general field importance otherwise.
	Relevance Rating `json:"relevance" yaml:"relevance"`

	// TechnicalInnovation rates the novelty of the paper's contributions.
	TechnicalInnovation Rating `json:"technical_innovation" yaml:"technical_innovation"`

	// Feasibility rates how practical the proposed methods are.
	Feasibility Rating `json:"feasibility" yaml:"feasibility"`

	// Summary is an optional one-paragraph assessment summary.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// KeyContributions lists the paper's main contributions.
	KeyContributions []string `json:"key_contributions,omitempty" yaml:"key_contributions,omitempty"`

	// Strengths and Weaknesses hold comparative observations from batch analysis.
	Strengths  []string `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`

	// Err records a per-paper analysis failure. A record with a non-empty
	// Err has no usable ratings; sibling papers in the batch are unaffected.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the record holds usable ratings.
func (a AnalysisRecord) OK() bool {
	return a.Err == "" && a.Relevance.Valid() && a.TechnicalInnovation.Valid() && a.Feasibility.Valid()
}

// PaperVerdict holds the per-paper strengths and weaknesses produced by a
// cross-paper synthesis.
type PaperVerdict struct {
	// PaperTitle names the paper the verdict applies to.
	PaperTitle string `json:"paper_title" yaml:"paper_title"`

	Strengths  []string `json:"strengths,omitempty" yaml:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`
}

// Synthesis is the output of a cross-paper synthesis call: an overall
// comparison, per-paper verdicts, and a closing synthesis text.
type Synthesis struct {
	// OverallComparison compares the papers across the rated dimensions.
	OverallComparison string `json:"overall_comparison" yaml:"overall_comparison"`

	// Verdicts holds per-paper strengths and weaknesses.
	Verdicts []PaperVerdict `json:"strengths_weaknesses,omitempty" yaml:"strengths_weaknesses,omitempty"`

	// SynthesisText identifies common themes, gaps, and future directions.
	SynthesisText string `json:"synthesis" yaml:"synthesis"`
}
