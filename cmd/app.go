package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/agent"
	"github.com/frontdesk-ai/frontdesk/internal/calendar"
	"github.com/frontdesk-ai/frontdesk/internal/config"
	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/log"
	"github.com/frontdesk-ai/frontdesk/internal/retrieval"
	"github.com/frontdesk-ai/frontdesk/internal/session"
	"github.com/frontdesk-ai/frontdesk/internal/tools"
)

// app bundles the assembled application components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   log.Logger
	client   *llm.OpenAI
	store    *knowledge.Store
	manager  *knowledge.Manager
	engine   *retrieval.Engine
	registry *tools.Registry
	sessions *session.Store
	agent    *agent.Agent
}

// newApp builds the full component graph from configuration. The knowledge
// base is not loaded yet; callers decide whether to rebuild synchronously.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := log.New(log.Config{
		Level: parseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	client := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		EmbedModel: cfg.EmbedModel,
	}, logger)

	store := knowledge.NewStore(logger)
	vectorizer := knowledge.NewVectorizer(client, cfg.EmbedBatchSize, cfg.EmbedBatchDelay, logger)
	manager := knowledge.NewManager(cfg.KnowledgeDir, store, vectorizer, logger)
	engine := retrieval.New(store, client, logger)

	registry := tools.NewRegistry(logger)
	if err := tools.RegisterKnowledge(registry, engine); err != nil {
		return nil, fmt.Errorf("registering knowledge tools: %w", err)
	}

	if cfg.CalendarID != "" {
		cal, err := calendar.New(ctx, cfg.CalendarID, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to calendar: %w", err)
		}
		if err := tools.RegisterCalendar(registry, cal); err != nil {
			return nil, fmt.Errorf("registering calendar tools: %w", err)
		}
	} else {
		logger.Warn("calendar_id not configured, scheduling tools disabled")
	}

	sessions := session.NewStore()
	ag := agent.New(client, registry, engine, store, sessions, cfg.SystemPrompt, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		store:    store,
		manager:  manager,
		engine:   engine,
		registry: registry,
		sessions: sessions,
		agent:    ag,
	}, nil
}

// parseLevel maps a config string to a slog level, defaulting to info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
