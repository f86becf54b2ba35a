package server

import (
	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Visualization routes
	apiRoutes.GET("/viz/themes", routes.GetThemesHandler, middleware.RequirePermission("viz.view"))
	apiRoutes.GET("/viz/entities", routes.GetEntitiesHandler, middleware.RequirePermission("viz.view"))
	apiRoutes.GET("/viz/connections", routes.GetConnectionsHandler, middleware.RequirePermission("viz.view"))
	apiRoutes.GET("/viz/frame", routes.GetFrameHandler, middleware.RequirePermission("viz.view"))
	apiRoutes.POST("/viz/snapshots", routes.PostSnapshotsHandler, middleware.RequirePermission("viz.snapshot"))

	// Aggregate administration routes
	adminRoutes := apiRoutes.Group("/admin/aggregates",
		middleware.RequireAnyPermission("aggregates.view", "aggregates.refresh"))
	adminRoutes.POST("/refresh", routes.PostRefreshHandler, middleware.RequirePermission("aggregates.refresh"))
	adminRoutes.GET("/history", routes.GetHistoryHandler, middleware.RequirePermission("aggregates.view"))
	adminRoutes.GET("/health", routes.GetAggregateHealthHandler, middleware.RequirePermission("aggregates.view"))
}
