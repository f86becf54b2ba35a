package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
)

// GetHistoryHandler lists recent refresh run summaries, newest first.
func GetHistoryHandler(c echo.Context) error {
	type historyParams struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	params := new(historyParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}
	if params.Limit == 0 {
		params.Limit = 20
	}

	app := c.(*middleware.AppContext).App
	runs, err := app.Refresh.History(c.Request().Context(), params.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]any{"runs": runs})
}
