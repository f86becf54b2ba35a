package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumenintel/orrery/backend/pkg/store"
	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

type fakeEntityStore struct {
	entities    []store.EntityRecord
	connections []store.ConnectionRecord

	lastConnFilter store.ConnectionFilter
}

func (f *fakeEntityStore) ListVisible(ctx context.Context, filter store.EntityFilter, userID int64) ([]store.EntityRecord, error) {
	return f.entities, nil
}

func (f *fakeEntityStore) ListConnections(ctx context.Context, filter store.ConnectionFilter) ([]store.ConnectionRecord, error) {
	f.lastConnFilter = filter
	return f.connections, nil
}

type fakeAggregateStore struct {
	metrics     []store.MetricValue
	indices     []store.IndexValue
	rollups     []store.SignalRollup
	connRollups []store.ConnectionRollup
	newest      map[store.Relation]time.Time
	err         error

	calls      int
	lastWindow int
}

func (f *fakeAggregateStore) LatestMetrics(ctx context.Context, entityIDs []int64, keys []string) ([]store.MetricValue, error) {
	f.calls++
	return f.metrics, f.err
}

func (f *fakeAggregateStore) LatestIndices(ctx context.Context, entityIDs []int64, keys []string) ([]store.IndexValue, error) {
	f.calls++
	return f.indices, f.err
}

func (f *fakeAggregateStore) SignalRollups(ctx context.Context, entityIDs []int64, windowDays int) ([]store.SignalRollup, error) {
	f.calls++
	f.lastWindow = windowDays
	return f.rollups, f.err
}

func (f *fakeAggregateStore) ConnectionRollups(ctx context.Context, connectionIDs []int64) ([]store.ConnectionRollup, error) {
	f.calls++
	return f.connRollups, f.err
}

func (f *fakeAggregateStore) NewestComputedAt(ctx context.Context, rel store.Relation) (time.Time, error) {
	f.calls++
	return f.newest[rel], nil
}

func (f *fakeAggregateStore) Refresh(ctx context.Context, rel store.Relation, concurrent bool) (int64, error) {
	return 0, nil
}

func newTestResolver(entities *fakeEntityStore, aggregates *fakeAggregateStore) *Resolver {
	r := NewResolver(entities, aggregates, theme.NewCatalog())
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestFrameEmptyVisibleSet(t *testing.T) {
	entities := &fakeEntityStore{}
	aggregates := &fakeAggregateStore{}
	r := newTestResolver(entities, aggregates)

	envelope, err := r.Frame(context.Background(), Request{ThemeID: "market-landscape", TimeRangeDays: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(envelope.Data.Nodes) != 0 || len(envelope.Data.Edges) != 0 {
		t.Fatalf("expected empty scene, got %d nodes %d edges", len(envelope.Data.Nodes), len(envelope.Data.Edges))
	}
	if envelope.StalenessSeconds != 0 {
		t.Fatalf("empty set staleness = %v, want 0", envelope.StalenessSeconds)
	}
	if aggregates.calls != 0 {
		t.Fatalf("empty visible set should not query aggregates, got %d calls", aggregates.calls)
	}
}

func TestEntitiesMergesDomainsWithZeroSignalDefaults(t *testing.T) {
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{
			{ID: 1, PublicID: "ent-1", Name: "Acme", Kind: "company"},
			{ID: 2, PublicID: "ent-2", Name: "Globex", Kind: "company"},
		},
	}
	aggregates := &fakeAggregateStore{
		metrics: []store.MetricValue{
			{EntityID: 1, Key: "market_cap", Value: 5000},
		},
		rollups: []store.SignalRollup{
			{EntityID: 1, WindowDays: 30, PositiveCount: 3, NetSentiment: 0.4, TotalMagnitude: 12,
				CategoryMagnitudes: map[string]float64{"funding": 9}},
		},
	}
	r := newTestResolver(entities, aggregates)

	envelope, err := r.Entities(context.Background(), Request{ThemeID: "market-landscape", TimeRangeDays: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 bags, got %d", len(envelope.Data))
	}

	first := envelope.Data[0]
	if first.Metrics["market_cap"] != 5000 {
		t.Fatalf("metric not merged: %v", first.Metrics)
	}
	if first.Signals["net_sentiment"] != 0.4 || first.Signals["category.funding"] != 9 {
		t.Fatalf("signals not flattened: %v", first.Signals)
	}

	// An entity with no aggregate rows stays in the set as an isolated node
	// with zero-valued signals, never nil maps.
	second := envelope.Data[1]
	if second.Metrics == nil || second.Indices == nil || second.Signals == nil {
		t.Fatal("attribute maps must never be nil")
	}
	for _, key := range []string{"positive_count", "negative_count", "neutral_count", "net_sentiment", "total_magnitude"} {
		if v, ok := second.Signals[key]; !ok || v != 0 {
			t.Fatalf("missing zero default for %s: %v", key, second.Signals)
		}
	}
}

func TestEntitiesSignalFilters(t *testing.T) {
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{
			{ID: 1, PublicID: "loud-positive"},
			{ID: 2, PublicID: "quiet-negative"},
			{ID: 3, PublicID: "silent"},
		},
	}
	aggregates := &fakeAggregateStore{
		rollups: []store.SignalRollup{
			{EntityID: 1, TotalMagnitude: 50, NetSentiment: 0.6},
			{EntityID: 2, TotalMagnitude: 5, NetSentiment: -0.3},
		},
	}
	r := newTestResolver(entities, aggregates)

	envelope, err := r.Entities(context.Background(), Request{
		TimeRangeDays: 30,
		Filters:       Filters{MinSignal: 10},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "loud-positive" {
		t.Fatalf("min_signal filter failed: %+v", envelope.Data)
	}

	envelope, err = r.Entities(context.Background(), Request{
		TimeRangeDays: 30,
		Filters:       Filters{Sentiment: "negative"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "quiet-negative" {
		t.Fatalf("sentiment filter failed: %+v", envelope.Data)
	}
}

func TestUnknownThemeFallsBackToDefault(t *testing.T) {
	r := newTestResolver(&fakeEntityStore{}, &fakeAggregateStore{})

	envelope, err := r.Entities(context.Background(), Request{ThemeID: "no-such-lens", TimeRangeDays: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope.ThemeID != theme.DefaultThemeID {
		t.Fatalf("expected default theme, got %s", envelope.ThemeID)
	}
}

func TestEntitiesAggregateUnavailable(t *testing.T) {
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{{ID: 1, PublicID: "ent-1"}},
	}
	aggregates := &fakeAggregateStore{
		err: &store.UnavailableError{Relation: store.RelationEntityMetrics, Err: errors.New("relation does not exist")},
	}
	r := newTestResolver(entities, aggregates)

	_, err := r.Entities(context.Background(), Request{TimeRangeDays: 30})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, store.ErrAggregateUnavailable) {
		t.Fatalf("expected ErrAggregateUnavailable, got %v", err)
	}
}

func TestConnectionsAssembly(t *testing.T) {
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{
			{ID: 1, PublicID: "ent-1"},
			{ID: 2, PublicID: "ent-2"},
		},
		connections: []store.ConnectionRecord{
			{ID: 11, SourceID: 1, TargetID: 2, Kind: "partnership", Strength: 0.8, Sentiment: 0.2,
				Attributes: map[string]float64{"deal_value": 250}},
		},
	}
	aggregates := &fakeAggregateStore{
		connRollups: []store.ConnectionRollup{{ConnectionID: 11, EventCount: 7}},
	}
	r := newTestResolver(entities, aggregates)

	envelope, err := r.Connections(context.Background(), Request{
		TimeRangeDays: 30,
		Filters:       Filters{ConnectionKinds: []string{"partnership"}, MinStrength: 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(envelope.Data))
	}

	bag := envelope.Data[0]
	if bag.Source != "ent-1" || bag.Target != "ent-2" {
		t.Fatalf("endpoints not mapped to public ids: %+v", bag)
	}
	if bag.Values["strength"] != 0.8 || bag.Values["event_count"] != 7 || bag.Values["deal_value"] != 250 {
		t.Fatalf("values not assembled: %v", bag.Values)
	}

	if entities.lastConnFilter.Limit != ConnectionCap {
		t.Fatalf("connection query limit = %d, want %d", entities.lastConnFilter.Limit, ConnectionCap)
	}
	if entities.lastConnFilter.MinStrength != 0.5 {
		t.Fatalf("min strength not forwarded: %v", entities.lastConnFilter.MinStrength)
	}
}

func TestSignalWindowSelection(t *testing.T) {
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{{ID: 1, PublicID: "ent-1"}},
	}
	aggregates := &fakeAggregateStore{}
	r := newTestResolver(entities, aggregates)

	cases := []struct {
		days, window int
	}{
		{1, 7},
		{7, 7},
		{10, 30},
		{30, 30},
		{60, 90},
		{365, 90},
	}
	for _, c := range cases {
		_, err := r.Entities(context.Background(), Request{TimeRangeDays: c.days})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if aggregates.lastWindow != c.window {
			t.Fatalf("days=%d: window = %d, want %d", c.days, aggregates.lastWindow, c.window)
		}
	}
}

func TestFrameStalenessIsMaxOverRelations(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entities := &fakeEntityStore{
		entities: []store.EntityRecord{{ID: 1, PublicID: "ent-1"}},
	}
	aggregates := &fakeAggregateStore{
		newest: map[store.Relation]time.Time{
			store.RelationEntityMetrics:    now.Add(-10 * time.Minute),
			store.RelationEntityIndices:    now.Add(-5 * time.Minute),
			store.RelationSignalRollup:     now.Add(-2 * time.Minute),
			store.RelationConnectionRollup: now.Add(-45 * time.Minute),
		},
	}
	r := newTestResolver(entities, aggregates)

	envelope, err := r.Frame(context.Background(), Request{TimeRangeDays: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := (45 * time.Minute).Seconds(); envelope.StalenessSeconds != want {
		t.Fatalf("staleness = %v, want %v", envelope.StalenessSeconds, want)
	}
}
