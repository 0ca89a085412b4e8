//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/api"
	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/controllers"
	"github.com/NeiruBugz/play-later/internal/reconcile"
	"github.com/NeiruBugz/play-later/internal/services/igdb"
	"github.com/NeiruBugz/play-later/internal/services/steam"
)

// InitializeApp wires the full service graph.
func InitializeApp(cfg *config.Config, logger zerolog.Logger) (*App, func(), error) {
	wire.Build(
		provideDatabase,
		provideDenylist,
		provideMatcher,
		provideScheduler,
		reconcile.NewPlanner,
		steam.NewClient,
		igdb.NewClient,
		wire.Bind(new(controllers.CatalogProvider), new(*igdb.Client)),
		wire.Bind(new(controllers.SourceAdapter), new(*steam.Client)),
		controllers.NewImportController,
		controllers.NewLibraryController,
		api.NewServer,
		NewApp,
	)
	return nil, nil, nil
}
