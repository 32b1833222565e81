// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/pkg/types"
)

var surveyCmd = &cobra.Command{
	Use:   "survey [topic]",
	Short: "Draft a literature survey from the library",
	Long: `Survey retrieves the library papers most relevant to a topic and asks
the AI backend to draft a short literature survey over them. With
--papers, the survey covers the given paper IDs instead of retrieving.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSurvey,
}

func runSurvey(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	ids, _ := cmd.Flags().GetStringSlice("papers")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	outPath, _ := cmd.Flags().GetString("out")

	if topic == "" && len(ids) == 0 {
		return fmt.Errorf("a topic or --papers is required")
	}

	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	var papers []types.Paper
	if len(ids) > 0 {
		papers, err = lookupPapers(ctx, p, ids)
		if err != nil {
			return err
		}
	} else {
		index, err := p.openIndex(ctx)
		if err != nil {
			return err
		}
		matches, err := index.Query(ctx, topic, maxResults)
		if err != nil {
			return err
		}
		for _, m := range matches {
			paper, found, err := p.store.Get(ctx, m.ID)
			if err != nil {
				return err
			}
			if found {
				papers = append(papers, paper)
			}
		}
	}

	text, err := p.openEngine().Survey(ctx, papers, topic)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing survey: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote survey to %s\n", outPath)
		return nil
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}

func init() {
	surveyCmd.Flags().StringSlice("papers", nil, "paper IDs to cover (skips retrieval)")
	surveyCmd.Flags().Int("max-results", 10, "papers to retrieve for the survey")
	surveyCmd.Flags().String("out", "", "write the survey to a file instead of stdout")

	rootCmd.AddCommand(surveyCmd)
}
