package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <id>",
	Short: "Summarize a paper",
	Long: `Generate a summary of a paper from its stored sections. The summary is
saved with the paper; a second run returns the stored text without calling
the language model.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

type summaryResponse struct {
	ID      int64  `json:"id"`
	Summary string `json:"summary"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	id := parsePaperID(args[0])

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	summary, err := m.Summarize(cmd.Context(), id)
	if err != nil {
		failWith(err, fmt.Sprintf("summarizing paper %d", id))
	}

	if humanOutput {
		fmt.Println(summary)
		return nil
	}
	return outputJSON(summaryResponse{ID: id, Summary: summary})
}
