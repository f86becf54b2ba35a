package scene

import (
	"math"
	"testing"
)

func TestResolveCompoundSkipsNonFiniteValues(t *testing.T) {
	key := mustKey(t, "metric.a|metric.b")

	bag := EntityBag{
		Metrics: map[string]float64{"a": math.NaN(), "b": 5},
		Indices: map[string]float64{},
		Signals: map[string]float64{},
	}
	v, ok := resolveCompound(bag, key)
	if !ok || v != 5 {
		t.Fatalf("NaN primary should fall through to 5, got %v ok=%v", v, ok)
	}

	bag.Metrics["a"] = math.Inf(1)
	v, ok = resolveCompound(bag, key)
	if !ok || v != 5 {
		t.Fatalf("+Inf primary should fall through to 5, got %v ok=%v", v, ok)
	}
}

func TestResolveCompoundAllNonFiniteIsAbsent(t *testing.T) {
	key := mustKey(t, "metric.a|metric.b")

	bag := EntityBag{
		Metrics: map[string]float64{"a": math.NaN(), "b": math.Inf(-1)},
		Indices: map[string]float64{},
		Signals: map[string]float64{},
	}
	if v, ok := resolveCompound(bag, key); ok {
		t.Fatalf("all-non-finite chain must resolve absent, got %v", v)
	}
}

func TestResolveCompoundCrossesDomains(t *testing.T) {
	key := mustKey(t, "metric.market_cap|index.momentum")

	bag := EntityBag{
		Metrics: map[string]float64{"market_cap": math.NaN()},
		Indices: map[string]float64{"momentum": 0.7},
		Signals: map[string]float64{},
	}
	v, ok := resolveCompound(bag, key)
	if !ok || v != 0.7 {
		t.Fatalf("fallback should cross into the index domain, got %v ok=%v", v, ok)
	}
}

func TestResolveChainSkipsNonFiniteValues(t *testing.T) {
	chain := mustChain(t, "deal_value|strength")

	values := map[string]float64{"deal_value": math.NaN(), "strength": 0.4}
	v, ok := resolveChain(values, chain)
	if !ok || v != 0.4 {
		t.Fatalf("NaN primary should fall through to 0.4, got %v ok=%v", v, ok)
	}

	values = map[string]float64{"deal_value": math.Inf(1), "strength": math.NaN()}
	if v, ok := resolveChain(values, chain); ok {
		t.Fatalf("all-non-finite chain must resolve absent, got %v", v)
	}
}
