package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a paper and everything attached to it",
	Long: `Delete a paper together with its sections, tag assignments, and
extracted references. Tags shared with other papers are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := parsePaperID(args[0])

	m, closeStore, err := newManager()
	if err != nil {
		failWith(err, "initializing")
	}
	defer closeStore()

	if err := m.Delete(id); err != nil {
		failWith(err, fmt.Sprintf("deleting paper %d", id))
	}

	if humanOutput {
		fmt.Printf("Deleted paper %d\n", id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted", ID: id})
}
