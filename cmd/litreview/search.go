// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/retrieval"
	"github.com/pdiddy/litreview/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the paper library and arXiv",
	Long: `Search finds papers matching a research topic. Mode selects the source:
"local" queries the embedding index over the stored library, "remote"
queries arXiv and adds the results to the library, and "hybrid" tries
the library first and falls back to arXiv when it has nothing.

With --rerank, results are reordered by an external relevance model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := retrieval.ParseMode(modeStr)
	if err != nil {
		return err
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	doRerank, _ := cmd.Flags().GetBool("rerank")
	doCitations, _ := cmd.Flags().GetBool("citations")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	orch, err := p.openOrchestrator(ctx)
	if err != nil {
		return err
	}

	papers, err := orch.Retrieve(ctx, query, mode, maxResults)
	if err != nil {
		var degraded *retrieval.DegradedError
		if !errors.As(err, &degraded) {
			return err
		}
		fmt.Fprintf(os.Stderr, "warning: %v; showing partial results\n", degraded.Err)
		papers = degraded.Partial
	}

	if doRerank && len(papers) > 0 {
		reranked, err := p.openReranker().Rerank(ctx, query, papers, maxResults)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: rerank failed: %v; keeping retrieval order\n", err)
		} else {
			papers = reranked
		}
	}

	if doCitations && len(papers) > 0 {
		papers = p.openCitations().Enrich(ctx, papers)
	}

	return printPapers(papers, jsonOutput)
}

func printPapers(papers []types.Paper, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-18s  %-56s  %-10s  %s\n",
		"Rank", "ID", "Title", "Published", "Citations")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, paper := range papers {
		title := paper.Title
		if len(title) > 56 {
			title = title[:53] + "..."
		}
		id := paper.ID
		if len(id) > 18 {
			id = id[:15] + "..."
		}
		published := ""
		if !paper.Published.IsZero() {
			published = paper.Published.Format("2006-01-02")
		}
		citations := "?"
		if paper.CitationCount != types.CitationUnknown {
			citations = fmt.Sprintf("%d", paper.CitationCount)
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-18s  %-56s  %-10s  %s\n", i+1, id, title, published, citations)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(papers))
	return nil
}

func init() {
	searchCmd.Flags().String("mode", "hybrid", "search mode: local, remote, or hybrid")
	searchCmd.Flags().Int("max-results", 5, "maximum number of results to return")
	searchCmd.Flags().Bool("rerank", false, "reorder results with the reranking model")
	searchCmd.Flags().Bool("citations", false, "fetch citation counts for results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
