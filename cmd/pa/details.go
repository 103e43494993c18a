package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details <id>",
	Short: "Show a paper with its tags and references",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetails,
}

func runDetails(cmd *cobra.Command, args []string) error {
	id := parsePaperID(args[0])

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	details, err := m.Details(id)
	if err != nil {
		failWith(err, fmt.Sprintf("fetching paper %d", id))
	}

	if !humanOutput {
		return outputJSON(details)
	}

	fmt.Printf("%s\n", details.Title)
	if len(details.Authors) > 0 {
		fmt.Printf("  Authors: %s\n", strings.Join(details.Authors, ", "))
	}
	if details.Year > 0 {
		fmt.Printf("  Year:    %d\n", details.Year)
	}
	if details.DOI != "" {
		fmt.Printf("  DOI:     %s\n", details.DOI)
	}
	fmt.Printf("  File:    %s\n", details.FilePath)
	if len(details.Tags) > 0 {
		names := make([]string, len(details.Tags))
		for i, t := range details.Tags {
			names[i] = t.Name
		}
		fmt.Printf("  Tags:    %s\n", strings.Join(names, ", "))
	}
	if details.Summarized {
		fmt.Printf("\nSummary:\n%s\n", details.Summary)
	}
	if len(details.References) > 0 {
		fmt.Printf("\nReferences (%d):\n", len(details.References))
		for _, r := range details.References {
			marker := " "
			if r.InLibrary {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, truncateString(r.Title, 80))
		}
	}
	return nil
}

// parsePaperID parses a numeric paper id argument or exits.
func parsePaperID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		exitWithError(ExitError, "invalid paper id %q", arg)
	}
	return id
}
