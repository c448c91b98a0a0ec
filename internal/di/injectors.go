//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"translit/internal"
	"translit/internal/controllers"
	"translit/internal/models"
	"translit/internal/providers"
	"translit/internal/services"
	"translit/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewZstdCompressor,
		providers.NewInstrumentedCacheProvider,
		providers.NewResourceClient,
		providers.NewClipboardProvider,

		models.NewQueryStore,
		services.NewConversionService,
		services.NewHistoryService,
		controllers.NewHistoryController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
