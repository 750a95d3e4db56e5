package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var postToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "Record and validate a completed tool call",
	Long: `Reads one JSON hook payload from stdin describing a tool call the host has
already executed, together with its tool_response.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.PostToolUse)
	},
}

func init() {
	rootCmd.AddCommand(postToolUseCmd)
}
