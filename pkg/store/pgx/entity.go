package pgx

import (
	"context"

	"github.com/lumenintel/orrery/backend/pkg/store"
)

const listVisibleSQL = `
SELECT e.id, e.public_id, e.name, e.kind, e.industry, e.segment, e.region,
       (e.owner_user_id IS NOT NULL AND e.owner_user_id = $4) AS is_own
FROM entities e
WHERE ($1 = '' OR e.industry = $1)
  AND ($2 = '' OR e.segment = $2)
  AND (cardinality($3::text[]) = 0 OR e.kind = ANY($3))
ORDER BY e.id;
`

func (s *Store) ListVisible(ctx context.Context, filter store.EntityFilter, userID int64) ([]store.EntityRecord, error) {
	kinds := filter.Kinds
	if kinds == nil {
		kinds = []string{}
	}

	rows, err := s.conn.Query(ctx, listVisibleSQL, filter.Industry, filter.Segment, kinds, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.EntityRecord
	for rows.Next() {
		var r store.EntityRecord
		if err := rows.Scan(&r.ID, &r.PublicID, &r.Name, &r.Kind, &r.Industry, &r.Segment, &r.Region, &r.IsOwn); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

const listConnectionsSQL = `
SELECT c.id, c.source_id, c.target_id, c.kind, c.strength, c.sentiment,
       COALESCE(c.attributes, '{}'::jsonb), c.updated_at
FROM connections c
WHERE c.source_id = ANY($1)
  AND c.target_id = ANY($1)
  AND (cardinality($2::text[]) = 0 OR c.kind = ANY($2))
  AND c.strength >= $3
ORDER BY c.strength DESC, c.updated_at DESC
LIMIT $4;
`

func (s *Store) ListConnections(ctx context.Context, filter store.ConnectionFilter) ([]store.ConnectionRecord, error) {
	if len(filter.EntityIDs) == 0 {
		return nil, nil
	}
	kinds := filter.Kinds
	if kinds == nil {
		kinds = []string{}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.conn.Query(ctx, listConnectionsSQL, filter.EntityIDs, kinds, filter.MinStrength, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.ConnectionRecord
	for rows.Next() {
		var r store.ConnectionRecord
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Kind, &r.Strength, &r.Sentiment, &r.Attributes, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
