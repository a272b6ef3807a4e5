package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/pkg/config"
)

// searchCmd runs a hybrid query from the terminal
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a creator's ingested content",
	Long: `Run a hybrid semantic and keyword search over one creator's chunks.

Example:
  persona-api search --creator creator-1 "what glue do you use"
  persona-api search --creator creator-1 --limit 10 dovetail jig`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("creator", "", "creator ID to search")
	searchCmd.Flags().IntP("limit", "n", 0, "maximum number of results (0 = configured default)")
	_ = searchCmd.MarkFlagRequired("creator")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	creatorID, _ := cmd.Flags().GetString("creator")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	a, err := newApp(cmd.Context(), cfg, appOptions{forceMemoryStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	results := a.search.Search(cmd.Context(), creatorID, query, limit)
	printResults(cmd.OutOrStdout(), query, results)
	return nil
}

func printResults(w io.Writer, query string, results []models.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results for %q\n", query)
		return
	}
	fmt.Fprintf(w, "%d result(s) for %q\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(w, "\n%d. [%s %.3f]", i+1, r.Source, r.Score)
		if title, ok := r.Metadata["videoTitle"].(string); ok && title != "" {
			fmt.Fprintf(w, " %s", title)
		}
		if start, ok := r.Metadata["startSeconds"]; ok {
			fmt.Fprintf(w, " @ %vs", start)
		}
		fmt.Fprintf(w, "\n   %s\n", truncate(r.Text, 300))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
