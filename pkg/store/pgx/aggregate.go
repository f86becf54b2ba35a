package pgx

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lumenintel/orrery/backend/pkg/store"
)

const latestMetricsSQL = `
SELECT entity_id, metric_key, value
FROM viz_entity_metrics_latest
WHERE entity_id = ANY($1) AND metric_key = ANY($2)
ORDER BY entity_id, metric_key, bucket DESC;
`

func (s *Store) LatestMetrics(ctx context.Context, entityIDs []int64, keys []string) ([]store.MetricValue, error) {
	if len(entityIDs) == 0 || len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, latestMetricsSQL, entityIDs, keys)
	if err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationEntityMetrics, Err: err}
	}
	defer rows.Close()

	var values []store.MetricValue
	seen := make(map[[2]any]bool)
	for rows.Next() {
		var v store.MetricValue
		if err := rows.Scan(&v.EntityID, &v.Key, &v.Value); err != nil {
			return nil, &store.UnavailableError{Relation: store.RelationEntityMetrics, Err: err}
		}
		// Rows come newest-bucket-first; only the newest per key is authoritative.
		k := [2]any{v.EntityID, v.Key}
		if seen[k] {
			continue
		}
		seen[k] = true
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationEntityMetrics, Err: err}
	}
	return values, nil
}

const latestIndicesSQL = `
SELECT entity_id, index_key, value
FROM viz_entity_indices_latest
WHERE entity_id = ANY($1) AND index_key = ANY($2)
ORDER BY entity_id, index_key, as_of DESC;
`

func (s *Store) LatestIndices(ctx context.Context, entityIDs []int64, keys []string) ([]store.IndexValue, error) {
	if len(entityIDs) == 0 || len(keys) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, latestIndicesSQL, entityIDs, keys)
	if err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationEntityIndices, Err: err}
	}
	defer rows.Close()

	var values []store.IndexValue
	seen := make(map[[2]any]bool)
	for rows.Next() {
		var v store.IndexValue
		if err := rows.Scan(&v.EntityID, &v.Key, &v.Value); err != nil {
			return nil, &store.UnavailableError{Relation: store.RelationEntityIndices, Err: err}
		}
		k := [2]any{v.EntityID, v.Key}
		if seen[k] {
			continue
		}
		seen[k] = true
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationEntityIndices, Err: err}
	}
	return values, nil
}

const signalRollupsSQL = `
SELECT entity_id, window_days, positive_count, negative_count, neutral_count,
       net_sentiment, total_magnitude, COALESCE(category_magnitudes, '{}'::jsonb)
FROM viz_entity_signal_rollup
WHERE entity_id = ANY($1) AND window_days = $2
ORDER BY entity_id, computed_at DESC;
`

func (s *Store) SignalRollups(ctx context.Context, entityIDs []int64, windowDays int) ([]store.SignalRollup, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, signalRollupsSQL, entityIDs, windowDays)
	if err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationSignalRollup, Err: err}
	}
	defer rows.Close()

	var rollups []store.SignalRollup
	seen := make(map[int64]bool)
	for rows.Next() {
		var r store.SignalRollup
		if err := rows.Scan(&r.EntityID, &r.WindowDays, &r.PositiveCount, &r.NegativeCount, &r.NeutralCount,
			&r.NetSentiment, &r.TotalMagnitude, &r.CategoryMagnitudes); err != nil {
			return nil, &store.UnavailableError{Relation: store.RelationSignalRollup, Err: err}
		}
		if seen[r.EntityID] {
			continue
		}
		seen[r.EntityID] = true
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationSignalRollup, Err: err}
	}
	return rollups, nil
}

const connectionRollupsSQL = `
SELECT connection_id, event_count
FROM viz_connection_rollup
WHERE connection_id = ANY($1)
ORDER BY connection_id, computed_at DESC;
`

func (s *Store) ConnectionRollups(ctx context.Context, connectionIDs []int64) ([]store.ConnectionRollup, error) {
	if len(connectionIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, connectionRollupsSQL, connectionIDs)
	if err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationConnectionRollup, Err: err}
	}
	defer rows.Close()

	var rollups []store.ConnectionRollup
	seen := make(map[int64]bool)
	for rows.Next() {
		var r store.ConnectionRollup
		if err := rows.Scan(&r.ConnectionID, &r.EventCount); err != nil {
			return nil, &store.UnavailableError{Relation: store.RelationConnectionRollup, Err: err}
		}
		if seen[r.ConnectionID] {
			continue
		}
		seen[r.ConnectionID] = true
		rollups = append(rollups, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.UnavailableError{Relation: store.RelationConnectionRollup, Err: err}
	}
	return rollups, nil
}

func (s *Store) NewestComputedAt(ctx context.Context, rel store.Relation) (time.Time, error) {
	if err := validateRelation(rel); err != nil {
		return time.Time{}, err
	}

	var newest *time.Time
	err := s.conn.QueryRow(ctx, fmt.Sprintf(`SELECT max(computed_at) FROM %s;`, rel)).Scan(&newest)
	if err != nil {
		return time.Time{}, &store.UnavailableError{Relation: rel, Err: err}
	}
	if newest == nil {
		return time.Time{}, nil
	}
	return *newest, nil
}

// Refresh recomputes one aggregate relation. Concurrent mode never blocks
// readers but requires the relation to already hold data and a unique
// index; first population must pass concurrent=false.
func (s *Store) Refresh(ctx context.Context, rel store.Relation, concurrent bool) (int64, error) {
	if err := validateRelation(rel); err != nil {
		return 0, err
	}

	stmt := fmt.Sprintf(`REFRESH MATERIALIZED VIEW %s;`, rel)
	if concurrent {
		stmt = fmt.Sprintf(`REFRESH MATERIALIZED VIEW CONCURRENTLY %s;`, rel)
	}
	if _, err := s.conn.Exec(ctx, stmt); err != nil {
		return 0, err
	}

	var count int64
	if err := s.conn.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s;`, rel)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func validateRelation(rel store.Relation) error {
	if !slices.Contains(store.Relations(), rel) {
		return fmt.Errorf("unknown aggregate relation: %s", rel)
	}
	return nil
}
