package main

import (
	"github.com/spf13/cobra"

	"github.com/maos-gate/gate/internal/hookevent"
)

var userPromptSubmitValidate bool

var userPromptSubmitCmd = &cobra.Command{
	Use:   "user-prompt-submit",
	Short: "Validate a user prompt before the host forwards it to the agent",
	Long:  `Reads one JSON hook payload from stdin carrying the submitted prompt text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHook(hookevent.UserPromptSubmit)
	},
}

func init() {
	userPromptSubmitCmd.Flags().BoolVar(&userPromptSubmitValidate, "validate", false, "check the prompt's session id against the session-state collaborator")
	rootCmd.AddCommand(userPromptSubmitCmd)
}
