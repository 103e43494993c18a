package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"paperagent/internal/paper"
)

func init() {
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <pdf> [<pdf>...]",
	Short: "Ingest PDF papers into the library",
	Long: `Ingest one or more PDF papers: extract text and metadata, chunk and
embed the content, and store everything. Each paper is committed atomically;
interrupting a batch between papers leaves the library consistent.

Examples:
  pa add paper.pdf
  pa add ~/papers/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var added []paper.Paper
	for _, path := range args {
		if ctx.Err() != nil {
			break
		}
		p, err := m.Ingest(ctx, path)
		if err != nil {
			// A single bad file fails alone in a batch; other errors abort.
			if len(args) > 1 && !paper.IsConfiguration(err) {
				fmt.Fprintf(os.Stderr, "error: adding %s: %v\n", path, err)
				continue
			}
			failWith(err, fmt.Sprintf("adding %s", path))
		}
		added = append(added, *p)
	}

	if humanOutput {
		for _, p := range added {
			fmt.Printf("Added %d: %s\n", p.ID, p.Title)
		}
	} else {
		if added == nil {
			added = []paper.Paper{}
		}
		outputJSON(added)
	}
	return nil
}
