package pgx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lumenintel/orrery/backend/pkg/store"
)

const insertRefreshRunSQL = `
INSERT INTO viz_refresh_runs (run_id, started_at, finished_at, successful, failed, results)
VALUES ($1, $2, $3, $4, $5, $6);
`

func (s *Store) InsertRefreshRun(ctx context.Context, run store.RefreshRun) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return err
	}

	_, err = s.conn.Exec(ctx, insertRefreshRunSQL,
		run.RunID, run.StartedAt, run.FinishedAt, run.Successful, run.Failed, results)
	return err
}

const listRefreshRunsSQL = `
SELECT run_id, started_at, finished_at, successful, failed, results
FROM viz_refresh_runs
ORDER BY started_at DESC
LIMIT $1;
`

const lastSuccessfulRefreshSQL = `
SELECT max(r.finished_at)
FROM viz_refresh_runs r
CROSS JOIN LATERAL jsonb_array_elements(r.results) AS res
WHERE res->>'relation' = $1
  AND (res->>'ok')::boolean;
`

// LastSuccessfulRefresh returns when the relation last refreshed
// successfully, or the zero time if it never has.
func (s *Store) LastSuccessfulRefresh(ctx context.Context, rel store.Relation) (time.Time, error) {
	var last *time.Time
	if err := s.conn.QueryRow(ctx, lastSuccessfulRefreshSQL, string(rel)).Scan(&last); err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

func (s *Store) ListRefreshRuns(ctx context.Context, limit int) ([]store.RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(ctx, listRefreshRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.RefreshRun
	for rows.Next() {
		var run store.RefreshRun
		var results []byte
		if err := rows.Scan(&run.RunID, &run.StartedAt, &run.FinishedAt, &run.Successful, &run.Failed, &results); err != nil {
			return nil, err
		}
		if len(results) > 0 {
			if err := json.Unmarshal(results, &run.Results); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
