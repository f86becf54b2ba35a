package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
)

// GetThemesHandler lists the available visualization themes. Only the
// identity fields go over the wire; channel mappings stay internal.
func GetThemesHandler(c echo.Context) error {
	type themeSummary struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	app := c.(*middleware.AppContext).App

	themes := app.Resolver.Themes()
	summaries := make([]themeSummary, 0, len(themes))
	for _, t := range themes {
		summaries = append(summaries, themeSummary{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"themes": summaries})
}
