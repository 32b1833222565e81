// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/pkg/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar [paper-id]",
	Short: "Find library papers similar to a given paper",
	Long: `Similar queries the embedding index with a stored paper's title and
abstract and returns the nearest library papers, excluding the paper
itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id := args[0]
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	target, found, err := p.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("paper %s is not in the library", id)
	}

	index, err := p.openIndex(ctx)
	if err != nil {
		return err
	}

	// Ask for one extra hit since the target itself will be the nearest.
	matches, err := index.Query(ctx, target.Title+"\n\n"+target.Summary, maxResults+1)
	if err != nil {
		return err
	}

	var papers []types.Paper
	for _, m := range matches {
		if m.ID == target.ID {
			continue
		}
		paper, ok, err := p.store.Get(ctx, m.ID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		papers = append(papers, paper)
		if len(papers) == maxResults {
			break
		}
	}

	return printPapers(papers, jsonOutput)
}

func init() {
	similarCmd.Flags().Int("max-results", 5, "maximum number of similar papers")
	similarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(similarCmd)
}
