package store

import (
	"context"
	"time"
)

// Relation names one precomputed aggregate relation. The set is closed;
// every relation carries a computed_at column and a unique index so it can
// be refreshed without blocking readers.
type Relation string

const (
	RelationEntityMetrics    Relation = "viz_entity_metrics_latest"
	RelationEntityIndices    Relation = "viz_entity_indices_latest"
	RelationSignalRollup     Relation = "viz_entity_signal_rollup"
	RelationConnectionRollup Relation = "viz_connection_rollup"
)

// Relations returns the aggregate relations in their fixed refresh order.
func Relations() []Relation {
	return []Relation{
		RelationEntityMetrics,
		RelationEntityIndices,
		RelationSignalRollup,
		RelationConnectionRollup,
	}
}

// EntityRecord is a base entity row. IsOwn marks the requesting tenant's
// own entity and is computed against the caller, not stored globally.
type EntityRecord struct {
	ID       int64
	PublicID string
	Name     string
	Kind     string
	Industry string
	Segment  string
	Region   string
	IsOwn    bool
}

// EntityFilter narrows the visible entity set. Zero values mean "no filter".
type EntityFilter struct {
	Industry string
	Segment  string
	Kinds    []string
}

// ConnectionRecord is a directed typed relation between two entities.
type ConnectionRecord struct {
	ID         int64
	SourceID   int64
	TargetID   int64
	Kind       string
	Strength   float64
	Sentiment  float64
	Attributes map[string]float64
	UpdatedAt  time.Time
}

// ConnectionFilter narrows and bounds a connection query. Results are
// ordered strength descending, then recency, and capped at Limit.
type ConnectionFilter struct {
	EntityIDs   []int64
	Kinds       []string
	MinStrength float64
	Limit       int
}

// MetricValue is one latest-value aggregate row for an entity metric.
type MetricValue struct {
	EntityID int64
	Key      string
	Value    float64
}

// IndexValue is one latest-value aggregate row for a composite index.
type IndexValue struct {
	EntityID int64
	Key      string
	Value    float64
}

// SignalRollup aggregates discrete events impacting an entity over a
// rolling window. All fields are zero-valued when the entity had no events.
type SignalRollup struct {
	EntityID           int64
	WindowDays         int
	PositiveCount      int64
	NegativeCount      int64
	NeutralCount       int64
	NetSentiment       float64
	TotalMagnitude     float64
	CategoryMagnitudes map[string]float64
}

// ConnectionRollup aggregates discrete events attributed to a connection.
type ConnectionRollup struct {
	ConnectionID int64
	EventCount   int64
}

// RelationResult records one relation's outcome within a refresh run.
type RelationResult struct {
	Relation         Relation `json:"relation"`
	OK               bool     `json:"ok"`
	Error            string   `json:"error,omitempty"`
	DurationMs       int64    `json:"duration_ms"`
	RowCount         int64    `json:"row_count"`
	StalenessSeconds float64  `json:"staleness_seconds"`
}

// RefreshRun is the persisted summary of one refresh run. A run never
// carries a single pass/fail flag; failures are counted per relation.
type RefreshRun struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Results    []RelationResult `json:"results"`
}

// EntityStore reads live (non-aggregate) entity and connection rows.
type EntityStore interface {
	ListVisible(ctx context.Context, filter EntityFilter, userID int64) ([]EntityRecord, error)
	ListConnections(ctx context.Context, filter ConnectionFilter) ([]ConnectionRecord, error)
}

// AggregateStore reads the precomputed aggregate relations and refreshes
// them. It is written exclusively through Refresh; every other component
// treats it as read-only.
type AggregateStore interface {
	LatestMetrics(ctx context.Context, entityIDs []int64, keys []string) ([]MetricValue, error)
	LatestIndices(ctx context.Context, entityIDs []int64, keys []string) ([]IndexValue, error)
	SignalRollups(ctx context.Context, entityIDs []int64, windowDays int) ([]SignalRollup, error)
	ConnectionRollups(ctx context.Context, connectionIDs []int64) ([]ConnectionRollup, error)
	NewestComputedAt(ctx context.Context, rel Relation) (time.Time, error)
	Refresh(ctx context.Context, rel Relation, concurrent bool) (int64, error)
}

// AuditStore persists refresh run summaries for the history surface.
// LastSuccessfulRefresh distinguishes a relation that is empty (no rows,
// so no computed_at) but freshly refreshed from one never refreshed at all.
type AuditStore interface {
	InsertRefreshRun(ctx context.Context, run RefreshRun) error
	ListRefreshRuns(ctx context.Context, limit int) ([]RefreshRun, error)
	LastSuccessfulRefresh(ctx context.Context, rel Relation) (time.Time, error)
}
