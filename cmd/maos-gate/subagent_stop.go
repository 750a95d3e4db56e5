package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var subagentStopCmd = &cobra.Command{
	Use:   "subagent-stop",
	Short: "Acknowledge the end of a subagent run",
	Long:  `Reads one JSON hook payload from stdin signalling a subagent run has ended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.SubagentStop)
	},
}

func init() {
	rootCmd.AddCommand(subagentStopCmd)
}
