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

var compareCmd = &cobra.Command{
	Use:   "compare [paper-ids...]",
	Short: "Compare papers and synthesize the findings",
	Long: `Compare rates each paper comparatively, then asks the AI backend for a
cross-paper synthesis: an overall comparison, per-paper strengths and
weaknesses, and a closing synthesis of the combined findings.

Papers whose individual analysis fails are excluded from the synthesis;
the synthesis proceeds as long as at least one analysis succeeded.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
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
	records, err := engine.AnalyzeBatch(ctx, papers, query)
	if err != nil {
		return err
	}
	for _, paper := range papers {
		if rec := records[paper.ID]; !rec.OK() {
			fmt.Fprintf(os.Stderr, "warning: %s excluded from synthesis: %s\n", paper.ID, rec.Err)
		}
	}

	synthesis, err := engine.Synthesize(ctx, papers, records, query)
	if err != nil {
		return err
	}

	return printSynthesis(synthesis, jsonOutput)
}

func printSynthesis(syn types.Synthesis, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(syn)
	}

	fmt.Fprintln(os.Stdout, "Overall comparison:")
	fmt.Fprintf(os.Stdout, "  %s\n\n", syn.OverallComparison)

	for _, v := range syn.Verdicts {
		fmt.Fprintln(os.Stdout, v.PaperTitle)
		if len(v.Strengths) > 0 {
			fmt.Fprintf(os.Stdout, "  strengths:  %s\n", strings.Join(v.Strengths, "; "))
		}
		if len(v.Weaknesses) > 0 {
			fmt.Fprintf(os.Stdout, "  weaknesses: %s\n", strings.Join(v.Weaknesses, "; "))
		}
	}

	fmt.Fprintln(os.Stdout, "\nSynthesis:")
	fmt.Fprintf(os.Stdout, "  %s\n", syn.SynthesisText)
	return nil
}

func init() {
	compareCmd.Flags().String("query", "", "judge relevance against this research topic")
	compareCmd.Flags().Bool("json", false, "output the synthesis as JSON")

	rootCmd.AddCommand(compareCmd)
}
