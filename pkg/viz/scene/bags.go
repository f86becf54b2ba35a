package scene

import (
	"math"

	"github.com/lumenintel/orrery/backend/pkg/viz/theme"
)

// EntityBag is one entity's merged attribute bag across the profile,
// metric, index and signal domains. The numeric maps may be empty but are
// never nil; an entity with no data still renders as an isolated node.
type EntityBag struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Kind     string             `json:"kind"`
	Industry string             `json:"industry"`
	Segment  string             `json:"segment"`
	Region   string             `json:"region"`
	IsOwn    bool               `json:"is_own"`
	Metrics  map[string]float64 `json:"metrics"`
	Indices  map[string]float64 `json:"indices"`
	Signals  map[string]float64 `json:"signals"`
}

// ConnectionBag is one connection's attribute bag. Values always carries
// strength and sentiment plus any free-form numeric attributes.
type ConnectionBag struct {
	Source string             `json:"source"`
	Target string             `json:"target"`
	Kind   string             `json:"kind"`
	Values map[string]float64 `json:"values"`
}

// resolveCompound walks the fallback chain and returns the first finite
// value. ok=false means absent; callers apply their channel default rather
// than plotting zero.
func resolveCompound(bag EntityBag, key theme.CompoundKey) (float64, bool) {
	for _, ref := range key {
		var v float64
		var present bool
		switch ref.Domain {
		case theme.DomainMetric:
			v, present = bag.Metrics[ref.Field]
		case theme.DomainIndex:
			v, present = bag.Indices[ref.Field]
		case theme.DomainSignal:
			v, present = bag.Signals[ref.Field]
		}
		if present && isFinite(v) {
			return v, true
		}
	}
	return 0, false
}

// resolveChain is the connection-side analogue over a flat value bag.
func resolveChain(values map[string]float64, chain theme.FieldChain) (float64, bool) {
	for _, field := range chain {
		if v, present := values[field]; present && isFinite(v) {
			return v, true
		}
	}
	return 0, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
