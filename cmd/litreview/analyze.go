// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paper-ids...]",
	Short: "Rate library papers with the AI backend",
	Long: `Analyze rates papers on relevance, technical innovation, and
feasibility, each on a 0-10 scale. By default papers are rated
comparatively: every paper's prompt carries its siblings as context so
the scores differentiate. With --independent, papers are rated in
isolation and concurrently.

With --query, relevance is judged against the given topic instead of
general field importance; such analyses are never cached.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	independent, _ := cmd.Flags().GetBool("independent")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	papers, err := lookupPapers(ctx, p, args)
	if err != nil {
		return err
	}

	engine := p.openEngine()
	var records map[string]types.AnalysisRecord
	if independent {
		records, err = engine.AnalyzeEach(ctx, papers, query)
	} else {
		records, err = engine.AnalyzeBatch(ctx, papers, query)
	}
	if err != nil {
		return err
	}

	return printAnalyses(papers, records, jsonOutput)
}

// lookupPapers resolves paper IDs against the library, failing on the
// first unknown ID.
func lookupPapers(ctx context.Context, p *pipeline, ids []string) ([]types.Paper, error) {
	papers := make([]types.Paper, 0, len(ids))
	for _, id := range ids {
		paper, found, err := p.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("paper %s is not in the library", id)
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

func printAnalyses(papers []types.Paper, records map[string]types.AnalysisRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	for _, paper := range papers {
		rec := records[paper.ID]
		fmt.Fprintf(os.Stdout, "%s  %s\n", paper.ID, paper.Title)
		if !rec.OK() {
			fmt.Fprintf(os.Stdout, "  analysis failed: %s\n\n", rec.Err)
			continue
		}
		fmt.Fprintf(os.Stdout, "  relevance: %d/10  innovation: %d/10  feasibility: %d/10\n",
			rec.Relevance.Score, rec.TechnicalInnovation.Score, rec.Feasibility.Score)
		if rec.Summary != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", rec.Summary)
		}
		if len(rec.KeyContributions) > 0 {
			fmt.Fprintf(os.Stdout, "  contributions: %s\n", strings.Join(rec.KeyContributions, "; "))
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().String("query", "", "judge relevance against this research topic")
	analyzeCmd.Flags().Bool("independent", false, "rate papers in isolation, concurrently")
	analyzeCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(analyzeCmd)
}
