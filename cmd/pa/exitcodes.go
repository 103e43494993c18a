package main

import "paperagent/internal/paper"

// Exit codes.
const (
	ExitSuccess   = 0 // Success
	ExitError     = 1 // General error (invalid arguments, runtime failure)
	ExitConfig    = 2 // Configuration error (bad config, model mismatch)
	ExitNotFound  = 3 // Unknown paper or tag id
	ExitDuplicate = 4 // File path or DOI already in the library
)

// exitCodeFor maps a pipeline error onto an exit code.
func exitCodeFor(err error) int {
	switch {
	case paper.IsNotFound(err):
		return ExitNotFound
	case paper.IsDuplicate(err):
		return ExitDuplicate
	case paper.IsConfiguration(err):
		return ExitConfig
	default:
		return ExitError
	}
}
