package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var sessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "Acknowledge the start of a new session",
	Long:  `Reads one JSON hook payload from stdin naming the session-start source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.SessionStart)
	},
}

func init() {
	rootCmd.AddCommand(sessionStartCmd)
}
