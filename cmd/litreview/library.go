// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the paper library (list, export, load, enrich)",
	Long: `Library manages the local SQLite paper database that search results
are persisted to. Use subcommands to list stored papers, export them to
YAML or JSON, reload an export, or fetch citation counts.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		p, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		papers, err := p.store.All(context.Background())
		if err != nil {
			return err
		}
		return printPapers(papers, jsonOutput)
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the paper library to YAML or JSON",
	Long: `Export writes every stored paper to the given path. The format follows
the file extension: .json for JSON, anything else for YAML. An export
loaded back with "library load" restores the exact library contents.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, _ := cmd.Flags().GetString("format")

		p, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx := context.Background()
		switch format {
		case "json":
			err = p.store.ExportJSON(ctx, path)
		case "yaml", "":
			err = p.store.ExportYAML(ctx, path)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

var libraryLoadCmd = &cobra.Command{
	Use:   "load [path]",
	Short: "Load papers from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		n, err := p.store.Load(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d paper(s)\n", n)
		return nil
	},
}

var libraryEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch citation counts for stored papers",
	Long: `Enrich looks up every stored paper on Semantic Scholar and persists
citation counts and missing publication dates. Lookup failures leave the
affected paper unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openPipeline(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx := context.Background()
		papers, err := p.store.All(ctx)
		if err != nil {
			return err
		}

		enriched := p.openCitations().Enrich(ctx, papers)
		if err := p.store.UpsertAll(ctx, enriched); err != nil {
			return err
		}

		updated := 0
		for i := range papers {
			if papers[i].CitationCount != enriched[i].CitationCount ||
				!papers[i].Published.Equal(enriched[i].Published) {
				updated++
			}
		}
		fmt.Printf("Updated %d of %d paper(s)\n", updated, len(papers))
		return nil
	},
}

func init() {
	libraryListCmd.Flags().Bool("json", false, "output papers as JSON")
	libraryExportCmd.Flags().String("format", "", "export format: yaml or json (default: by extension)")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryExportCmd)
	libraryCmd.AddCommand(libraryLoadCmd)
	libraryCmd.AddCommand(libraryEnrichCmd)

	rootCmd.AddCommand(libraryCmd)
}
