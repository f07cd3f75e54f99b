package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frontdesk-ai/frontdesk/api"
	"github.com/frontdesk-ai/frontdesk/internal/config"
	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve loads the knowledge base, starts watching the knowledge
directory for changes, and exposes the assistant over HTTP.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	// First load happens before the server accepts traffic so /ready flips
	// as soon as we listen.
	if err := a.manager.Rebuild(ctx); err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Watch {
		watcher, err := knowledge.NewWatcher(a.manager, cfg.KnowledgeDir, a.logger)
		if err != nil {
			return fmt.Errorf("starting knowledge watcher: %w", err)
		}
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	server := api.NewServer(a.agent, a.sessions, a.store, a.logger)
	g.Go(func() error {
		return server.Run(ctx, cfg.Addr)
	})

	a.logger.Info("frontdesk ready",
		"addr", cfg.Addr,
		"documents", a.store.Len(),
		"tools", a.registry.Len(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
