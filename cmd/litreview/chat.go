// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/analysis"
	"github.com/pdiddy/litreview/pkg/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Discuss library papers with the AI backend",
	Long: `Chat answers free-form questions grounded in library papers. Papers
come from --papers, or are retrieved from the embedding index using the
first question as the topic.

With a question argument, chat answers once and exits. Without one, it
reads questions from stdin and keeps the conversation history across
turns; an empty line or EOF ends the session.`,
	Args: cobra.ArbitraryArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ids, _ := cmd.Flags().GetStringSlice("papers")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	p, err := openPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()
	engine := p.openEngine()

	var papers []types.Paper
	if len(ids) > 0 {
		papers, err = lookupPapers(ctx, p, ids)
		if err != nil {
			return err
		}
	}

	// One-shot: answer the argument question and exit.
	if question != "" {
		if papers == nil {
			papers, err = retrieveChatContext(ctx, p, question, maxResults)
			if err != nil {
				return err
			}
		}
		answer, err := engine.Chat(ctx, papers, nil, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, answer)
		return nil
	}

	// Interactive: keep history across turns.
	var history []analysis.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			break
		}

		if papers == nil {
			papers, err = retrieveChatContext(ctx, p, q, maxResults)
			if err != nil {
				return err
			}
		}

		answer, err := engine.Chat(ctx, papers, history, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		fmt.Fprintln(os.Stdout, answer)
		history = append(history,
			analysis.Message{Role: "user", Content: q},
			analysis.Message{Role: "assistant", Content: answer},
		)
	}
	return scanner.Err()
}

// retrieveChatContext picks conversation papers from the embedding index
// using the question as the topic.
func retrieveChatContext(ctx context.Context, p *pipeline, topic string, maxResults int) ([]types.Paper, error) {
	index, err := p.openIndex(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := index.Query(ctx, topic, maxResults)
	if err != nil {
		return nil, err
	}

	var papers []types.Paper
	for _, m := range matches {
		paper, found, err := p.store.Get(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if found {
			papers = append(papers, paper)
		}
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("no library papers match the question; run search first or pass --papers")
	}
	return papers, nil
}

func init() {
	chatCmd.Flags().StringSlice("papers", nil, "paper IDs to discuss (skips retrieval)")
	chatCmd.Flags().Int("max-results", 5, "papers to retrieve as conversation context")

	rootCmd.AddCommand(chatCmd)
}
