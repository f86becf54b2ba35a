package resolve

import (
	"context"
	"time"

	"github.com/lumenintel/orrery/backend/pkg/logger"
	"github.com/lumenintel/orrery/backend/pkg/store"
	"github.com/lumenintel/orrery/backend/pkg/viz/scene"
	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

// SchemaVersion tags every envelope so renderers can detect shape changes.
const SchemaVersion = "1"

// ConnectionCap bounds the connection result set. Under high density the
// strongest and most recent relationships win rather than failing the read.
const ConnectionCap = 500

// Filters narrows the visible entity and connection sets.
type Filters struct {
	Industry        string
	Segment         string
	MinSignal       float64
	Sentiment       string
	ConnectionKinds []string
	MinStrength     float64
}

// Request is one visualization read.
type Request struct {
	ThemeID       string
	TimeRangeDays int
	Filters       Filters
	UserID        int64
}

// Envelope wraps every visualization response with provenance: what theme
// and window produced it, when, and how stale the backing aggregates were.
type Envelope[T any] struct {
	SchemaVersion    string    `json:"schema_version"`
	ThemeID          string    `json:"theme_id"`
	TimeRangeDays    int       `json:"time_range_days"`
	Data             T         `json:"data"`
	ComputedAt       time.Time `json:"computed_at"`
	StalenessSeconds float64   `json:"staleness_seconds"`
}

// Resolver assembles per-entity and per-connection attribute bags from the
// base tables and the aggregate store. Store handles are injected
// explicitly; there is no process-wide client state.
type Resolver struct {
	entities   store.EntityStore
	aggregates store.AggregateStore
	themes     *theme.Catalog
	now        func() time.Time
}

func NewResolver(entities store.EntityStore, aggregates store.AggregateStore, themes *theme.Catalog) *Resolver {
	return &Resolver{
		entities:   entities,
		aggregates: aggregates,
		themes:     themes,
		now:        time.Now,
	}
}

// Theme resolves a theme id, substituting the default for unknown ids.
// The substitution is logged here, at the boundary, not buried in lookup.
func (r *Resolver) Theme(id string) theme.Theme {
	t, found := r.themes.Lookup(id)
	if !found {
		logger.Warn("Unknown theme id, using default", "theme", id, "default", t.ID)
	}
	return t
}

// Themes lists the available visualization lenses.
func (r *Resolver) Themes() []theme.Theme {
	return r.themes.List()
}

// Entities resolves the visible entity set and merges the profile, metric,
// index and signal domains into one attribute bag per entity.
func (r *Resolver) Entities(ctx context.Context, req Request) (Envelope[[]scene.EntityBag], error) {
	t := r.Theme(req.ThemeID)

	records, err := r.visible(ctx, req)
	if err != nil {
		return Envelope[[]scene.EntityBag]{}, err
	}

	bags, staleness, err := r.entityBags(ctx, t, req, records)
	if err != nil {
		return Envelope[[]scene.EntityBag]{}, err
	}
	return newEnvelope(t.ID, req, bags, r.now(), staleness), nil
}

// Connections resolves connections whose endpoints are both visible,
// filtered by kind and strength and capped at ConnectionCap.
func (r *Resolver) Connections(ctx context.Context, req Request) (Envelope[[]scene.ConnectionBag], error) {
	t := r.Theme(req.ThemeID)

	records, err := r.visible(ctx, req)
	if err != nil {
		return Envelope[[]scene.ConnectionBag]{}, err
	}

	bags, staleness, err := r.connectionBags(ctx, req, records)
	if err != nil {
		return Envelope[[]scene.ConnectionBag]{}, err
	}
	return newEnvelope(t.ID, req, bags, r.now(), staleness), nil
}

// Frame resolves both bag sets and applies the theme, returning a complete
// renderable scene. An empty visible set yields a valid empty frame.
func (r *Resolver) Frame(ctx context.Context, req Request) (Envelope[scene.Scene], error) {
	t := r.Theme(req.ThemeID)

	records, err := r.visible(ctx, req)
	if err != nil {
		return Envelope[scene.Scene]{}, err
	}

	entityBags, entityStaleness, err := r.entityBags(ctx, t, req, records)
	if err != nil {
		return Envelope[scene.Scene]{}, err
	}
	connectionBags, connectionStaleness, err := r.connectionBags(ctx, req, records)
	if err != nil {
		return Envelope[scene.Scene]{}, err
	}

	frame := scene.Apply(t, entityBags, connectionBags)
	return newEnvelope(t.ID, req, frame, r.now(), max(entityStaleness, connectionStaleness)), nil
}

func (r *Resolver) visible(ctx context.Context, req Request) ([]store.EntityRecord, error) {
	return r.entities.ListVisible(ctx, store.EntityFilter{
		Industry: req.Filters.Industry,
		Segment:  req.Filters.Segment,
	}, req.UserID)
}

func newEnvelope[T any](themeID string, req Request, data T, now time.Time, staleness float64) Envelope[T] {
	return Envelope[T]{
		SchemaVersion:    SchemaVersion,
		ThemeID:          themeID,
		TimeRangeDays:    req.TimeRangeDays,
		Data:             data,
		ComputedAt:       now,
		StalenessSeconds: staleness,
	}
}
