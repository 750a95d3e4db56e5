package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var preToolUseCmd = &cobra.Command{
	Use:   "pre-tool-use",
	Short: "Validate a tool call before the host executes it",
	Long: `Reads one JSON hook payload from stdin describing a pending tool call and
validates it against the command and path security policy. Exit code 2
means the host must not proceed with the call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.PreToolUse)
	},
}

func init() {
	rootCmd.AddCommand(preToolUseCmd)
}
