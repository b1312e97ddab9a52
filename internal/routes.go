package internal

import (
	"net/http"

	"aisd/internal/controllers"
	"aisd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/positions", http.HandlerFunc(apiController.GetPositions))
	routers.Post("/api/geofence", http.HandlerFunc(apiController.PostGeofence))
	routers.Get("/api/route/{id}", http.HandlerFunc(apiController.GetRoute))
	routers.Get("/api/vessels/{id}", http.HandlerFunc(apiController.GetVessel))
	return routers
}
