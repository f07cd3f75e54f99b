// Package cmd wires the command-line interface: serve runs the HTTP API,
// ask answers a single question, reindex rebuilds the knowledge snapshot.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frontdesk",
	Short: "Frontdesk - AI front-desk assistant with scheduling tools",
	Long: `Frontdesk is an AI assistant for a business front desk. It answers
questions from a local knowledge base and manages appointments through
calendar tools the model can call.

Run "frontdesk serve" to start the HTTP API, or "frontdesk ask" for a
one-off question from the terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
