package refresh

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/lumenintel/orrery/backend/pkg/logger"
	"github.com/lumenintel/orrery/backend/pkg/store"
)

// DefaultRelationTimeout bounds one relation's refresh. A relation that
// overruns is recorded as failed and the run moves on.
const DefaultRelationTimeout = 2 * time.Minute

// DefaultStaleThreshold is the staleness above which SmartRefresh acts and
// the health surface reports a relation as degraded.
const DefaultStaleThreshold = time.Hour

// RelationStaleness is one relation's staleness report.
type RelationStaleness struct {
	Relation         store.Relation `json:"relation"`
	StalenessSeconds float64        `json:"staleness_seconds"`
	NeverComputed    bool           `json:"never_computed"`
	Stale            bool           `json:"stale"`
}

// Manager owns the aggregate relation lifecycle: refreshing, measuring,
// deciding whether a refresh is needed and recording history. It is the
// only writer of aggregate rows.
type Manager struct {
	aggregates      store.AggregateStore
	audit           store.AuditStore
	relations       []store.Relation
	relationTimeout time.Duration
	now             func() time.Time
}

// Params configures a Manager.
type Params struct {
	Aggregates      store.AggregateStore
	Audit           store.AuditStore
	RelationTimeout time.Duration
}

func NewManager(params Params) *Manager {
	timeout := params.RelationTimeout
	if timeout <= 0 {
		timeout = DefaultRelationTimeout
	}
	return &Manager{
		aggregates:      params.Aggregates,
		audit:           params.Audit,
		relations:       store.Relations(),
		relationTimeout: timeout,
		now:             time.Now,
	}
}

// RefreshAll refreshes every relation in fixed order using the
// non-blocking concurrent mode. One relation's failure never aborts the
// rest; the summary counts successes and failures per relation.
func (m *Manager) RefreshAll(ctx context.Context) store.RefreshRun {
	return m.refresh(ctx, true)
}

// Initialize performs the first-time population. Concurrent refresh
// requires existing data and a unique index, so this path blocks readers.
func (m *Manager) Initialize(ctx context.Context) store.RefreshRun {
	return m.refresh(ctx, false)
}

func (m *Manager) refresh(ctx context.Context, concurrent bool) store.RefreshRun {
	runID, err := gonanoid.New()
	if err != nil {
		runID = "run"
	}

	run := store.RefreshRun{
		RunID:     runID,
		StartedAt: m.now(),
		Results:   make([]store.RelationResult, 0, len(m.relations)),
	}

	for _, rel := range m.relations {
		run.Results = append(run.Results, m.refreshRelation(ctx, rel, concurrent))
	}
	for _, result := range run.Results {
		if result.OK {
			run.Successful++
		} else {
			run.Failed++
		}
	}
	run.FinishedAt = m.now()

	logger.Info("Aggregate refresh run finished",
		"run_id", run.RunID,
		"successful", run.Successful,
		"failed", run.Failed,
		"duration", run.FinishedAt.Sub(run.StartedAt).String(),
	)

	// Audit persistence is best-effort: a history write failure never
	// turns a successful refresh into a failed one.
	if m.audit != nil {
		if err := m.audit.InsertRefreshRun(ctx, run); err != nil {
			logger.Warn("Failed to persist refresh run summary", "run_id", run.RunID, "err", err)
		}
	}

	return run
}

func (m *Manager) refreshRelation(ctx context.Context, rel store.Relation, concurrent bool) store.RelationResult {
	relCtx, cancel := context.WithTimeout(ctx, m.relationTimeout)
	defer cancel()

	start := m.now()
	rowCount, err := m.aggregates.Refresh(relCtx, rel, concurrent)
	result := store.RelationResult{
		Relation:   rel,
		DurationMs: m.now().Sub(start).Milliseconds(),
		RowCount:   rowCount,
	}

	if err != nil {
		result.Error = err.Error()
		logger.Error("Aggregate relation refresh failed", "relation", rel, "err", err)
		return result
	}
	result.OK = true

	// Post-refresh staleness is informational; its failure does not undo
	// a successful refresh.
	if newest, err := m.aggregates.NewestComputedAt(ctx, rel); err == nil && !newest.IsZero() {
		result.StalenessSeconds = m.now().Sub(newest).Seconds()
	}
	return result
}

// CheckStaleness reports each relation's staleness against the threshold.
// A relation that has never been refreshed is always flagged.
func (m *Manager) CheckStaleness(ctx context.Context, threshold time.Duration) ([]RelationStaleness, error) {
	reports := make([]RelationStaleness, 0, len(m.relations))
	now := m.now()

	for _, rel := range m.relations {
		newest, err := m.aggregates.NewestComputedAt(ctx, rel)
		if err != nil {
			return nil, err
		}

		// An empty relation carries no computed_at rows even right after a
		// successful refresh. Fall back to the audit log so "empty but
		// refreshed" is not reported as never computed.
		if newest.IsZero() && m.audit != nil {
			if last, auditErr := m.audit.LastSuccessfulRefresh(ctx, rel); auditErr == nil {
				newest = last
			}
		}

		report := RelationStaleness{Relation: rel}
		if newest.IsZero() {
			report.NeverComputed = true
			report.Stale = true
		} else {
			report.StalenessSeconds = now.Sub(newest).Seconds()
			report.Stale = now.Sub(newest) > threshold
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SmartRefresh refreshes only when at least one relation exceeds the
// threshold. The second return reports whether a run happened.
func (m *Manager) SmartRefresh(ctx context.Context, threshold time.Duration) (store.RefreshRun, bool, error) {
	reports, err := m.CheckStaleness(ctx, threshold)
	if err != nil {
		return store.RefreshRun{}, false, err
	}

	stale := false
	for _, report := range reports {
		if report.Stale {
			stale = true
			break
		}
	}
	if !stale {
		logger.Debug("All aggregate relations fresh, skipping refresh", "threshold", threshold.String())
		return store.RefreshRun{}, false, nil
	}

	return m.RefreshAll(ctx), true, nil
}

// History returns the most recent refresh run summaries, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]store.RefreshRun, error) {
	return m.audit.ListRefreshRuns(ctx, limit)
}
