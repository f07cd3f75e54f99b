package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frontdesk-ai/frontdesk/internal/config"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the knowledge base snapshot",
	Long: `Reindex loads every document in the knowledge directory, generates
embeddings for new or changed content, and writes a fresh snapshot so the
next server start skips the embedding calls.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runReindex(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	if err := a.manager.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding knowledge base: %w", err)
	}

	fmt.Printf("Indexed %d documents, snapshot written to %s\n", a.store.Len(), a.manager.SnapshotPath())
	return nil
}
