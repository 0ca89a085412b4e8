// Package app assembles the service from its parts.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/api"
	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/controllers"
	"github.com/NeiruBugz/play-later/internal/metrics"
	"github.com/NeiruBugz/play-later/internal/models"
	"github.com/NeiruBugz/play-later/internal/reconcile"
	"github.com/NeiruBugz/play-later/internal/scheduler"
	"github.com/NeiruBugz/play-later/internal/utils"
)

// App holds the assembled service.
type App struct {
	cfg       *config.Config
	server    *api.Server
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

// NewApp creates the top-level application.
func NewApp(cfg *config.Config, server *api.Server, sched *scheduler.Scheduler, logger zerolog.Logger) *App {
	return &App{cfg: cfg, server: server, scheduler: sched, logger: logger}
}

// Run starts the metrics listener, the background sync scheduler and
// the HTTP server, and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := metrics.Serve(ctx, a.cfg.MetricsPort, a.logger); err != nil {
			a.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	return a.server.Start(ctx)
}

// Providers for wire.

func provideDatabase(cfg *config.Config) (*models.Database, func(), error) {
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

func provideDenylist(cfg *config.Config, logger zerolog.Logger) *utils.Denylist {
	denylist, err := utils.LoadDenylist(cfg.DenylistFile)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load denylist file, using defaults")
		return utils.NewDenylist()
	}
	return denylist
}

func provideMatcher(cfg *config.Config) *reconcile.Matcher {
	return reconcile.NewMatcher(cfg.MatchThreshold)
}

func provideScheduler(importCtrl *controllers.ImportController, cfg *config.Config, logger zerolog.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(importCtrl, cfg.SyncInterval, logger)
}
