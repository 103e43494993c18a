package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperagent/internal/paper"
)

var listTag string

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only papers carrying this tag")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers in the library",
	Long: `List all papers, newest first.

Examples:
  pa list
  pa list --tag RAG`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	papers, err := m.List(listTag)
	if err != nil {
		failWith(err, "listing papers")
	}

	if humanOutput {
		if len(papers) == 0 {
			fmt.Println("No papers in library")
			return nil
		}
		fmt.Printf("%d papers:\n\n", len(papers))
		for _, p := range papers {
			title := truncateString(p.Title, ListTitleMaxLen)
			fmt.Printf("  %4d  %-63s %s\n", p.ID, title, strings.Join(p.Authors, ", "))
		}
	} else {
		if papers == nil {
			papers = []paper.Paper{}
		}
		outputJSON(papers)
	}
	return nil
}
