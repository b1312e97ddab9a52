//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"aisd/internal"
	"aisd/internal/controllers"
	"aisd/internal/ingest"
	"aisd/internal/maintenance"
	"aisd/internal/providers"
	"aisd/internal/services"
	"aisd/internal/storage"
	"aisd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewZstdCompressor,
		providers.NewInstrumentedCacheProvider,
		providers.NewPublisherProvider,

		storage.NewStoreProvider,
		services.NewQueryService,
		ingest.NewIngesterProvider,
		maintenance.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
