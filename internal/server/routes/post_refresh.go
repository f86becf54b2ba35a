package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/queue"
	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/pkg/leaselock"
	"github.com/lumenintel/orrery/backend/pkg/store"
	"github.com/lumenintel/orrery/backend/pkg/viz/refresh"
)

// RefreshLockKey serializes aggregate refresh runs across all processes.
const RefreshLockKey = "viz:refresh"

// PostRefreshHandler triggers an aggregate refresh. Async requests are
// queued for the worker and acknowledged immediately; sync requests run
// inline under the refresh lease. A run already in progress yields 409.
func PostRefreshHandler(c echo.Context) error {
	type refreshBody struct {
		Force bool `json:"force"`
		Async bool `json:"async"`
	}

	data := new(refreshBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	app := c.(*middleware.AppContext).App

	if data.Async {
		err := queue.PublishRefresh(app.Queue, queue.RefreshMessage{
			RequestedBy: user.UserID,
			Force:       data.Force,
			RequestedAt: time.Now(),
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to queue refresh"})
		}
		return c.JSON(http.StatusAccepted, map[string]string{"message": "Refresh queued"})
	}

	var run store.RefreshRun
	ran := true
	err := app.Locks.WithLease(c.Request().Context(), RefreshLockKey, leaselock.Options{Wait: false}, func(ctx context.Context) error {
		if data.Force {
			run = app.Refresh.RefreshAll(ctx)
			return nil
		}
		var err error
		run, ran, err = app.Refresh.SmartRefresh(ctx, refresh.DefaultStaleThreshold)
		return err
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Refresh already in progress"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if !ran {
		return c.JSON(http.StatusOK, map[string]any{"message": "Aggregates fresh, nothing to do"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Refresh finished", "run": run})
}
