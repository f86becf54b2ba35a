package routes

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumenintel/orrery/backend/internal/server/middleware"
	"github.com/lumenintel/orrery/backend/pkg/viz/resolve"
)

type vizParams struct {
	Theme       string  `query:"theme"`
	Days        int     `query:"days" validate:"omitempty,min=1,max=365"`
	Industry    string  `query:"industry"`
	Segment     string  `query:"segment"`
	MinSignal   float64 `query:"min_signal" validate:"omitempty,min=0"`
	Sentiment   string  `query:"sentiment" validate:"omitempty,oneof=positive negative"`
	Kinds       string  `query:"kinds"`
	MinStrength float64 `query:"min_strength" validate:"omitempty,min=0,max=1"`
}

// bindVizRequest binds and validates the shared visualization query
// parameters into a resolver request for the authenticated user. Query
// params are bound explicitly so POST routes (snapshots) behave like the
// GET reads.
func bindVizRequest(c echo.Context) (resolve.Request, error) {
	params := new(vizParams)
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, params); err != nil {
		return resolve.Request{}, err
	}
	if err := c.Validate(params); err != nil {
		return resolve.Request{}, err
	}

	days := params.Days
	if days == 0 {
		days = 30
	}

	var kinds []string
	for _, kind := range strings.Split(params.Kinds, ",") {
		if kind = strings.TrimSpace(kind); kind != "" {
			kinds = append(kinds, kind)
		}
	}

	var userID int64
	if user := c.(*middleware.AppContext).User; user != nil {
		userID = user.UserID
	}

	return resolve.Request{
		ThemeID:       params.Theme,
		TimeRangeDays: days,
		UserID:        userID,
		Filters: resolve.Filters{
			Industry:        params.Industry,
			Segment:         params.Segment,
			MinSignal:       params.MinSignal,
			Sentiment:       params.Sentiment,
			ConnectionKinds: kinds,
			MinStrength:     params.MinStrength,
		},
	}, nil
}
