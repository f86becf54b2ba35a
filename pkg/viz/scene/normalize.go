package scene

import "math"

// thicknessMax is the assumed maximum raw value for logarithmic edge
// thickness. Free-form connection attributes (deal counts, overlap scores)
// land well under it; anything above clamps to full thickness.
const thicknessMax = 1000.0

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// span tracks the observed min/max of present values for one channel
// across the entity set.
type span struct {
	min, max float64
	seen     bool
}

func (s *span) observe(v float64) {
	if !s.seen {
		s.min, s.max, s.seen = v, v, true
		return
	}
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
}

// norm maps v into [0,1] relative to the observed span. A degenerate span
// (single value) centers everything at 0.5.
func (s *span) norm(v float64) float64 {
	if !s.seen || s.max == s.min {
		return 0.5
	}
	return clamp01((v - s.min) / (s.max - s.min))
}

// sizeCompress log-compresses an unbounded non-negative magnitude so size
// spans stay usable when raw inputs differ by orders of magnitude.
func sizeCompress(v float64) float64 {
	if v < 0 {
		v = 0
	}
	return math.Log10(1 + v)
}

// logThickness maps v through log10(1+v)/log10(1+K), clamped to [0,1].
// Monotonically non-decreasing in v.
func logThickness(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return clamp01(math.Log10(1+v) / math.Log10(1+thicknessMax))
}

// remapSentiment maps [-1,1] to [0,1].
func remapSentiment(s float64) float64 {
	return clamp01((s + 1) / 2)
}

func glowMultiplier(tier string) float64 {
	switch tier {
	case "med":
		return 0.65
	case "high":
		return 1.0
	default:
		return 0.35
	}
}
