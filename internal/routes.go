package internal

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"translit/internal/controllers"
	"translit/internal/providers"
	"translit/internal/structures"
)

func InitRoutes(healthController *controllers.HealthController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/health", http.HandlerFunc(healthController.Health))
	if conf.Metrics.Enabled {
		routers.Get("/metrics", promhttp.Handler())
	}
	return routers
}
