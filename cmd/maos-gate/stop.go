package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var stopChat bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Acknowledge the end of an agent run",
	Long:  `Reads one JSON hook payload from stdin signalling the agent run has ended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.Stop)
	},
}

func init() {
	stopCmd.Flags().BoolVar(&stopChat, "chat", false, "name the transcript path in advisory output")
	rootCmd.AddCommand(stopCmd)
}
