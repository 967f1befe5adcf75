package api

import (
	routes "ridetrace/internal/api/handlers"
	"ridetrace/internal/service/ride"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, config map[string]string, svc *ride.Service, log zerolog.Logger) {
	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), config)

	// Setup station lookup handlers
	routes.SetupStationHandlers(api, svc.Gazetteer(), svc.Locator())

	// Setup route reconstruction handlers
	routes.SetupRouteHandlers(api, svc, log)
}
