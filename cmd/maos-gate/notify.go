package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Acknowledge a host notification",
	Long:  `Reads one JSON hook payload from stdin carrying a notification message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.Notification)
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
