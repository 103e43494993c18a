package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
}

var tagCmd = &cobra.Command{
	Use:   "tag <id> <name>",
	Short: "Attach a tag to a paper",
	Long: `Attach a tag to a paper, creating the tag if it does not exist yet.
Tagging a paper twice with the same tag is a no-op.

Examples:
  pa tag 3 RAG`,
	Args: cobra.ExactArgs(2),
	RunE: runTag,
}

var untagCmd = &cobra.Command{
	Use:   "untag <id> <name>",
	Short: "Remove a tag from a paper",
	Args:  cobra.ExactArgs(2),
	RunE:  runUntag,
}

func runTag(cmd *cobra.Command, args []string) error {
	id := parsePaperID(args[0])
	name := args[1]

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	if err := m.Tag(id, name); err != nil {
		failWith(err, fmt.Sprintf("tagging paper %d", id))
	}

	if humanOutput {
		fmt.Printf("Tagged %d with %q\n", id, name)
		return nil
	}
	return outputJSON(StatusResponse{Status: "tagged", ID: id})
}

func runUntag(cmd *cobra.Command, args []string) error {
	id := parsePaperID(args[0])
	name := args[1]

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	if err := m.Untag(id, name); err != nil {
		failWith(err, fmt.Sprintf("untagging paper %d", id))
	}

	if humanOutput {
		fmt.Printf("Removed %q from %d\n", name, id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "untagged", ID: id})
}
