package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/pkg/viz/refresh"
)

// GetAggregateHealthHandler reports per-relation staleness. The overall
// status degrades when any relation exceeds the threshold and turns
// unhealthy when staleness cannot be determined at all.
func GetAggregateHealthHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	reports, err := app.Refresh.CheckStaleness(c.Request().Context(), refresh.DefaultStaleThreshold)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	status := "healthy"
	for _, report := range reports {
		if report.Stale {
			status = "degraded"
			break
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    status,
		"relations": reports,
	})
}
