package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	pollregistry "agora/contexts/polling/poll-registry"
	postgresadapter "agora/contexts/polling/poll-registry/adapters/postgres"
	"agora/contexts/polling/poll-registry/ports"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	database *db.Database
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var events ports.EventPublisher
	if cfg.EnablePollEvents {
		events = messaging.NewBus(cfg.EventBufferSize, logger)
	}

	var (
		module   pollregistry.Module
		database *db.Database
	)
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		// Without a DSN the registry runs on the in-memory store; state lives
		// for the process lifetime only.
		module = pollregistry.NewInMemoryModule(logger, events)
		logger.Info("registry store selected",
			"event", "bootstrap_store_selected",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"store", "memory",
		)
	} else {
		database, err = db.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(database.DB, logger)
		if err := repo.AutoMigrate(); err != nil {
			_ = database.Close()
			return nil, err
		}
		module = pollregistry.NewModule(pollregistry.Dependencies{
			Polls:  repo,
			Ledger: repo,
			Clock:  postgresadapter.SystemClock{},
			Events: events,
			Logger: logger,
		})
		logger.Info("registry store selected",
			"event", "bootstrap_store_selected",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"store", cfg.DatabaseDriver,
		)
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		database: database,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
