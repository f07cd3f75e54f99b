package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frontdesk-ai/frontdesk/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	if err := a.manager.Rebuild(ctx); err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	question := strings.Join(args, " ")
	sessionID := a.sessions.NewSessionID()

	fmt.Println(a.agent.Respond(ctx, sessionID, question))
	return nil
}
