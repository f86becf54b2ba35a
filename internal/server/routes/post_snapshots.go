package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/internal/storage"
	"github.com/lumenintel/orrery/backend/pkg/store"
)

// PostSnapshotsHandler resolves the requested frame, stores it as a JSON
// object and returns a time-limited download link. Snapshots let users
// share an exact view without re-running the pipeline.
func PostSnapshotsHandler(c echo.Context) error {
	req, err := bindVizRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid query parameters"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	envelope, err := app.Resolver.Frame(ctx, req)
	if err != nil {
		if errors.Is(err, store.ErrAggregateUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Aggregate data unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	id, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	key, err := storage.PutSnapshot(ctx, app.S3, id, body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store snapshot"})
	}

	link, err := storage.GenerateDownloadLink(ctx, app.S3, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate download link"})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"snapshot_id":  id,
		"download_url": link,
	})
}
