package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/pkg/store"
)

// GetFrameHandler returns a complete renderable scene: themed nodes and
// edges plus background, in one response.
func GetFrameHandler(c echo.Context) error {
	req, err := bindVizRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}

	app := c.(*middleware.AppContext).App
	envelope, err := app.Resolver.Frame(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrAggregateUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Aggregate data unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, envelope)
}
