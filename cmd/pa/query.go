package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryTopK  int
	queryPaper int64
)

func init() {
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "Number of sections to retrieve (0 = configured default)")
	queryCmd.Flags().Int64Var(&queryPaper, "paper", 0, "Restrict retrieval to one paper id")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question, answered from the library",
	Long: `Answer a natural-language question by retrieving the most relevant
sections and asking the language model to answer strictly from them.

Examples:
  pa query "What optimizer does the transformer paper use?"
  pa query --paper 3 "What are the limitations discussed?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	result, err := m.Query(cmd.Context(), question, queryTopK, queryPaper)
	if err != nil {
		failWith(err, "querying")
	}

	if !humanOutput {
		return outputJSON(result)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range result.Sources {
			fmt.Printf("  %.3f  %s (p.%d)\n", s.Score, truncateString(s.Section.PaperTitle, 60), s.Section.Page)
		}
	}
	return nil
}
