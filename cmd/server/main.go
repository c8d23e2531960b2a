// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Command server runs the TowerAtlas API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thejerf/suture/v4"

	"github.com/toweratlas/toweratlas/internal/access"
	"github.com/toweratlas/toweratlas/internal/api"
	"github.com/toweratlas/toweratlas/internal/assets"
	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/auth"
	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/geo"
	"github.com/toweratlas/toweratlas/internal/logging"
	"github.com/toweratlas/toweratlas/internal/notify"
	"github.com/toweratlas/toweratlas/internal/scope"
	"github.com/toweratlas/toweratlas/internal/services"
	"github.com/toweratlas/toweratlas/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var (
		auditStore *audit.DuckDBStore
		recorder   *audit.Recorder
	)
	if cfg.Audit.Enabled {
		auditStore, err = audit.NewDuckDBStore(db.Conn())
		if err != nil {
			return fmt.Errorf("audit store: %w", err)
		}
		recorder = audit.NewRecorder(auditStore, cfg.Audit.BufferSize)
		defer recorder.Close()
	}

	var sink notify.Sink
	if cfg.Notify.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	}
	notifier := notify.New(db, sink, cfg.Notify.RatePerSecond, cfg.Notify.Burst, cfg.Access.NotifyDedupWindow)

	accessSvc := access.NewService(db, notifier, recorder, cfg.Access)
	assetSvc := assets.NewService(db, geo.NewRectangleMatcher(), recorder)
	resolver := scope.NewResolver(db)

	handler := api.NewHandler(db, resolver, accessSvc, assetSvc, storeOrNil(auditStore), recorder, cfg)
	router := api.NewRouter(handler, auth.NewMiddleware(cfg.Security.AuthMode, cfg.Security.JWTSecret))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tree := supervisor.New(
		[]suture.Service{services.NewHTTPService(addr, router)},
		[]suture.Service{services.NewSchedulerService(access.NewScheduler(accessSvc, cfg.Access))},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", addr).
		Str("environment", cfg.Server.Environment).
		Msg("TowerAtlas starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("TowerAtlas stopped")
	return nil
}

// storeOrNil avoids handing the API a typed-nil Store interface when
// auditing is disabled.
func storeOrNil(s *audit.DuckDBStore) audit.Store {
	if s == nil {
		return nil
	}
	return s
}
