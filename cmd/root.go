package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "substation-sim",
	Short: "Substation simulation service: rooms, scenario playback, WebSocket push",
	Long:  `HTTP + WebSocket API. Commands: api, scenario.`,
	RunE:  runAPI, // default: run API (same as "substation-sim api")
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// Execute runs the root command and returns the error (for main to log.Fatal).
func Execute() error {
	return rootCmd.Execute()
}
