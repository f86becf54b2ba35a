package resolve

import (
	"context"

	"github.com/lumenintel/orrery/backend/pkg/store"
	"github.com/lumenintel/orrery/backend/pkg/viz/scene"
	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

// signalWindows are the rolling windows the signal rollup precomputes.
var signalWindows = []int{7, 30, 90}

// windowFor maps a requested range onto the smallest precomputed window
// that covers it.
func windowFor(days int) int {
	for _, w := range signalWindows {
		if days <= w {
			return w
		}
	}
	return signalWindows[len(signalWindows)-1]
}

// entityBags merges profile, metric, index and signal domains for the
// visible set. An empty visible set short-circuits with staleness 0 and no
// aggregate queries. Entities with no aggregate rows are kept as isolated
// nodes with empty numeric maps.
func (r *Resolver) entityBags(ctx context.Context, t theme.Theme, req Request, records []store.EntityRecord) ([]scene.EntityBag, float64, error) {
	if len(records) == 0 {
		return []scene.EntityBag{}, 0, nil
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}

	metricsByEntity, err := r.fetchMetrics(ctx, ids, t.MetricKeys())
	if err != nil {
		return nil, 0, err
	}
	indicesByEntity, err := r.fetchIndices(ctx, ids, t.IndexKeys())
	if err != nil {
		return nil, 0, err
	}

	rollups, err := r.aggregates.SignalRollups(ctx, ids, windowFor(req.TimeRangeDays))
	if err != nil {
		return nil, 0, err
	}
	rollupByEntity := make(map[int64]store.SignalRollup, len(rollups))
	for _, rollup := range rollups {
		rollupByEntity[rollup.EntityID] = rollup
	}

	bags := make([]scene.EntityBag, 0, len(records))
	for _, rec := range records {
		bag := scene.EntityBag{
			ID:       rec.PublicID,
			Name:     rec.Name,
			Kind:     rec.Kind,
			Industry: rec.Industry,
			Segment:  rec.Segment,
			Region:   rec.Region,
			IsOwn:    rec.IsOwn,
			Metrics:  metricsByEntity[rec.ID],
			Indices:  indicesByEntity[rec.ID],
			// Missing rollups flatten to all-zero fields, never nil: the
			// engine performs unguarded arithmetic on signal values.
			Signals: flattenSignals(rollupByEntity[rec.ID]),
		}
		if bag.Metrics == nil {
			bag.Metrics = map[string]float64{}
		}
		if bag.Indices == nil {
			bag.Indices = map[string]float64{}
		}
		if !keepBySignalFilters(bag.Signals, req.Filters) {
			continue
		}
		bags = append(bags, bag)
	}

	staleness, err := r.relationStaleness(ctx,
		store.RelationEntityMetrics, store.RelationEntityIndices, store.RelationSignalRollup)
	if err != nil {
		return nil, 0, err
	}
	return bags, staleness, nil
}

func (r *Resolver) fetchMetrics(ctx context.Context, ids []int64, keys []string) (map[int64]map[string]float64, error) {
	byEntity := make(map[int64]map[string]float64)
	if len(keys) == 0 {
		return byEntity, nil
	}

	values, err := r.aggregates.LatestMetrics(ctx, ids, keys)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if byEntity[v.EntityID] == nil {
			byEntity[v.EntityID] = make(map[string]float64)
		}
		// First row per key wins: the store returns newest-first.
		if _, ok := byEntity[v.EntityID][v.Key]; !ok {
			byEntity[v.EntityID][v.Key] = v.Value
		}
	}
	return byEntity, nil
}

func (r *Resolver) fetchIndices(ctx context.Context, ids []int64, keys []string) (map[int64]map[string]float64, error) {
	byEntity := make(map[int64]map[string]float64)
	if len(keys) == 0 {
		return byEntity, nil
	}

	values, err := r.aggregates.LatestIndices(ctx, ids, keys)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if byEntity[v.EntityID] == nil {
			byEntity[v.EntityID] = make(map[string]float64)
		}
		if _, ok := byEntity[v.EntityID][v.Key]; !ok {
			byEntity[v.EntityID][v.Key] = v.Value
		}
	}
	return byEntity, nil
}

// flattenSignals exposes the rollup as the signal domain's numeric map.
// Category magnitudes are addressable as "category.<name>".
func flattenSignals(rollup store.SignalRollup) map[string]float64 {
	signals := map[string]float64{
		"positive_count":  float64(rollup.PositiveCount),
		"negative_count":  float64(rollup.NegativeCount),
		"neutral_count":   float64(rollup.NeutralCount),
		"net_sentiment":   rollup.NetSentiment,
		"total_magnitude": rollup.TotalMagnitude,
	}
	for category, magnitude := range rollup.CategoryMagnitudes {
		signals["category."+category] = magnitude
	}
	return signals
}

func keepBySignalFilters(signals map[string]float64, f Filters) bool {
	if f.MinSignal > 0 && signals["total_magnitude"] < f.MinSignal {
		return false
	}
	switch f.Sentiment {
	case "positive":
		return signals["net_sentiment"] > 0
	case "negative":
		return signals["net_sentiment"] < 0
	}
	return true
}

func (r *Resolver) connectionBags(ctx context.Context, req Request, records []store.EntityRecord) ([]scene.ConnectionBag, float64, error) {
	if len(records) == 0 {
		return []scene.ConnectionBag{}, 0, nil
	}

	ids := make([]int64, len(records))
	publicIDs := make(map[int64]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		publicIDs[rec.ID] = rec.PublicID
	}

	connections, err := r.entities.ListConnections(ctx, store.ConnectionFilter{
		EntityIDs:   ids,
		Kinds:       req.Filters.ConnectionKinds,
		MinStrength: req.Filters.MinStrength,
		Limit:       ConnectionCap,
	})
	if err != nil {
		return nil, 0, err
	}

	eventCounts := make(map[int64]int64)
	if len(connections) > 0 {
		connectionIDs := make([]int64, len(connections))
		for i, conn := range connections {
			connectionIDs[i] = conn.ID
		}
		rollups, err := r.aggregates.ConnectionRollups(ctx, connectionIDs)
		if err != nil {
			return nil, 0, err
		}
		for _, rollup := range rollups {
			eventCounts[rollup.ConnectionID] = rollup.EventCount
		}
	}

	bags := make([]scene.ConnectionBag, 0, len(connections))
	for _, conn := range connections {
		values := map[string]float64{
			"strength":    conn.Strength,
			"sentiment":   conn.Sentiment,
			"event_count": float64(eventCounts[conn.ID]),
		}
		for field, v := range conn.Attributes {
			values[field] = v
		}
		bags = append(bags, scene.ConnectionBag{
			Source: publicIDs[conn.SourceID],
			Target: publicIDs[conn.TargetID],
			Kind:   conn.Kind,
			Values: values,
		})
	}

	staleness, err := r.relationStaleness(ctx, store.RelationConnectionRollup)
	if err != nil {
		return nil, 0, err
	}
	return bags, staleness, nil
}

// relationStaleness reports the most conservative bound: the max seconds
// since the newest computed_at across the touched relations. Relations
// that have never been computed contribute nothing; the refresh health
// surface reports those separately.
func (r *Resolver) relationStaleness(ctx context.Context, relations ...store.Relation) (float64, error) {
	var staleness float64
	now := r.now()
	for _, rel := range relations {
		newest, err := r.aggregates.NewestComputedAt(ctx, rel)
		if err != nil {
			return 0, err
		}
		if newest.IsZero() {
			continue
		}
		if s := now.Sub(newest).Seconds(); s > staleness {
			staleness = s
		}
	}
	return staleness, nil
}
