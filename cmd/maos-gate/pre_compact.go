package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var preCompactCmd = &cobra.Command{
	Use:   "pre-compact",
	Short: "Acknowledge an impending transcript compaction",
	Long:  `Reads one JSON hook payload from stdin naming the compaction trigger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.PreCompact)
	},
}

func init() {
	rootCmd.AddCommand(preCompactCmd)
}
