package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/pkg/viz/resolve"
	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

func TestGetThemesHandlerReturnsSummaries(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/viz/themes", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	app := &middleware.App{
		Resolver: resolve.NewResolver(nil, nil, theme.NewCatalog()),
	}
	cc := &middleware.AppContext{Context: c, App: app}

	if err := GetThemesHandler(cc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Themes []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"themes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Themes) < 4 {
		t.Fatalf("expected at least 4 themes, got %d", len(body.Themes))
	}
	for _, summary := range body.Themes {
		if summary.ID == "" || summary.Name == "" || summary.Description == "" {
			t.Fatalf("incomplete theme summary: %+v", summary)
		}
	}

	// Channel mappings are internal configuration; the list endpoint must
	// not expose their parsed representation.
	raw := rec.Body.String()
	for _, leaked := range []string{"Domain", "PositionX", "Thickness"} {
		if strings.Contains(raw, leaked) {
			t.Fatalf("internal theme field %q leaked into the response", leaked)
		}
	}
}
